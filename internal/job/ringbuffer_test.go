package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBufferEvictsByLineCount(t *testing.T) {
	rb := NewRingBuffer(3, 1000)
	rb.Push("a")
	rb.Push("b")
	rb.Push("c")
	rb.Push("d")

	assert.Equal(t, []string{"b", "c", "d"}, rb.Tail(0))
}

func TestRingBufferEvictsByByteCount(t *testing.T) {
	rb := NewRingBuffer(100, 5)
	rb.Push("ab")
	rb.Push("cd")
	rb.Push("ef")

	assert.Equal(t, 2, rb.Len())
}

func TestRingBufferDropsOversizedLine(t *testing.T) {
	rb := NewRingBuffer(100, 5)
	rb.Push("this line is far too long")
	assert.Equal(t, 0, rb.Len())
}

func TestRingBufferTailN(t *testing.T) {
	rb := NewRingBuffer(100, 1000)
	for _, l := range []string{"1", "2", "3", "4", "5"} {
		rb.Push(l)
	}
	assert.Equal(t, []string{"4", "5"}, rb.Tail(2))
}
