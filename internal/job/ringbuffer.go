package job

// RingBuffer holds a job's captured output lines, bounded by both line
// count and total byte size. A push evicts from the front until both
// bounds hold; a single line that alone exceeds the byte bound is dropped
// entirely (spec.md §4.9).
type RingBuffer struct {
	maxLines int
	maxBytes int
	lines    []string
	bytes    int
}

// NewRingBuffer constructs a buffer bounded by maxLines and maxBytes.
func NewRingBuffer(maxLines, maxBytes int) *RingBuffer {
	return &RingBuffer{maxLines: maxLines, maxBytes: maxBytes}
}

// Push appends a line, evicting from the front as needed to restore both
// bounds. A line whose own byte length exceeds maxBytes is dropped.
func (r *RingBuffer) Push(line string) {
	if len(line) > r.maxBytes {
		return
	}
	r.lines = append(r.lines, line)
	r.bytes += len(line)

	for len(r.lines) > r.maxLines || r.bytes > r.maxBytes {
		evicted := r.lines[0]
		r.lines = r.lines[1:]
		r.bytes -= len(evicted)
	}
}

// Tail returns the last n lines, or all of them if n <= 0 or n exceeds the
// buffer's length.
func (r *RingBuffer) Tail(n int) []string {
	if n <= 0 || n >= len(r.lines) {
		out := make([]string, len(r.lines))
		copy(out, r.lines)
		return out
	}
	start := len(r.lines) - n
	out := make([]string, n)
	copy(out, r.lines[start:])
	return out
}

// Len returns the current number of retained lines.
func (r *RingBuffer) Len() int { return len(r.lines) }
