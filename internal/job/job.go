// Package job implements the background job registry: task_start's capture
// window, the monitor goroutine that drains a backgrounded job's output,
// graceful stop escalation, and TTL-based garbage collection (spec.md
// §4.9).
package job

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is a job's lifecycle stage.
type State string

const (
	StateRunning State = "running"
	StateExited  State = "exited"
	StateFailed  State = "failed"
)

// Config tunes the job manager, per spec.md §4.9 defaults.
type Config struct {
	MaxConcurrentJobs  int
	MaxOutputLines     int
	MaxOutputBytes     int
	JobTTL             time.Duration
	GCInterval         time.Duration
	CaptureWindow      time.Duration
	GracefulIdleWindow time.Duration
}

// DefaultConfig returns the spec-mandated defaults; LoadConfig (config.go)
// overlays environment overrides on top of this.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs:  50,
		MaxOutputLines:     1000,
		MaxOutputBytes:     5 * 1 << 20,
		JobTTL:             3600 * time.Second,
		GCInterval:         300 * time.Second,
		CaptureWindow:      1 * time.Second,
		GracefulIdleWindow: 5 * time.Minute,
	}
}

// Metadata is the static information recorded about a job at spawn time.
type Metadata struct {
	PID        int
	UniqueName string
	Command    string
	StartTime  time.Time
	TraceID    string // correlation id for this task_start call, per spec.md §4.8
}

// Job is one spawned command, live or finished, tracked by the manager.
type Job struct {
	Metadata

	mu       sync.Mutex
	state    State
	exitCode int
	failMsg  string
	lastIO   time.Time

	output *RingBuffer
	cmd    *exec.Cmd

	capturingInitial bool
	initialStdout    []string
	initialStderr    []string
}

// State returns the job's current lifecycle stage and, when applicable,
// its exit code.
func (j *Job) State() (State, int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state, j.exitCode
}

// FailureMessage returns the recorded failure detail, if state is Failed.
func (j *Job) FailureMessage() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.failMsg
}

// Tail returns the last n output lines captured so far.
func (j *Job) Tail(n int) []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output.Tail(n)
}

// IdleSince returns the time this job last produced output or changed
// state — used by GC's idle-finished-job rule.
func (j *Job) IdleSince() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastIO
}

func (j *Job) setState(s State, exitCode int, failMsg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = s
	j.exitCode = exitCode
	j.failMsg = failMsg
	j.lastIO = time.Now()
}

func (j *Job) pushLine(stream string, line string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.output.Push(line)
	j.lastIO = time.Now()
	if !j.capturingInitial {
		return
	}
	switch stream {
	case "stdout":
		j.initialStdout = append(j.initialStdout, line)
	case "stderr":
		j.initialStderr = append(j.initialStderr, line)
	}
}

// finalizeInitialOutput snapshots whatever stdout/stderr has arrived so
// far into the single STDOUT:/STDERR:-labeled string task_start returns,
// then stops further accumulation — output produced after this point is
// only reachable via task_output's ring buffer tail, not InitialOutput
// (spec.md §4.9 Concrete Scenarios 3-4).
func (j *Job) finalizeInitialOutput() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.capturingInitial = false

	var combined strings.Builder
	if len(j.initialStdout) > 0 {
		combined.WriteString("STDOUT:\n")
		combined.WriteString(strings.Join(j.initialStdout, "\n"))
		combined.WriteString("\n")
	}
	if len(j.initialStderr) > 0 {
		if combined.Len() > 0 {
			combined.WriteString("\n")
		}
		combined.WriteString("STDERR:\n")
		combined.WriteString(strings.Join(j.initialStderr, "\n"))
		combined.WriteString("\n")
	}
	return combined.String()
}

// StartResult is returned synchronously from task_start.
type StartResult struct {
	State         State
	PID           int
	ExitCode      *int
	InitialOutput string
}

// SpawnSpec describes the command a caller wants started.
type SpawnSpec struct {
	UniqueName string
	Command    string
	Cwd        string
	Env        []string
}

// Manager owns the live job registry and the background GC loop.
type Manager struct {
	cfg Config

	mu   sync.RWMutex
	jobs map[int]*Job

	lastGC time.Time
}

// NewManager constructs a Manager with the given configuration and starts
// its background GC loop, which calls GC once per GCInterval.
func NewManager(cfg Config) *Manager {
	m := &Manager{cfg: cfg, jobs: make(map[int]*Job)}
	if cfg.GCInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.GCInterval)
			defer ticker.Stop()
			for now := range ticker.C {
				m.GC(now)
			}
		}()
	}
	return m
}

// Start implements the task_start protocol: spawn, capture output for up to
// CaptureWindow, and either return the exited result or background the job
// and hand back its running state (spec.md §4.9 steps 4-7).
func (m *Manager) Start(spec SpawnSpec) (StartResult, error) {
	m.mu.Lock()
	if len(m.jobs) >= m.cfg.MaxConcurrentJobs {
		m.mu.Unlock()
		return StartResult{}, fmt.Errorf("job manager: at capacity (%d concurrent jobs)", m.cfg.MaxConcurrentJobs)
	}
	m.mu.Unlock()

	cmd := exec.Command("sh", "-c", spec.Command)
	if spec.Cwd != "" {
		cmd.Dir = spec.Cwd
	}
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	cmd.SysProcAttr = procAttrs()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return StartResult{}, fmt.Errorf("job manager: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return StartResult{}, fmt.Errorf("job manager: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return StartResult{}, fmt.Errorf("job manager: spawn: %w", err)
	}

	j := &Job{
		Metadata: Metadata{
			PID:        cmd.Process.Pid,
			UniqueName: spec.UniqueName,
			Command:    spec.Command,
			StartTime:  time.Now(),
			TraceID:    uuid.New().String(),
		},
		state:            StateRunning,
		output:           NewRingBuffer(m.cfg.MaxOutputLines, m.cfg.MaxOutputBytes),
		lastIO:           time.Now(),
		cmd:              cmd,
		capturingInitial: true,
	}

	drain := func(stream string, r io.Reader) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			j.pushLine(stream, scanner.Text())
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); drain("stdout", stdout) }()
	go func() { defer wg.Done(); drain("stderr", stderr) }()

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	drainDone := make(chan struct{})
	go func() { wg.Wait(); close(drainDone) }()

	select {
	case err := <-exited:
		<-drainDone
		code := exitCodeOf(err)
		j.setState(StateExited, code, "")
		return StartResult{
			State:         StateExited,
			PID:           j.PID,
			ExitCode:      &code,
			InitialOutput: j.finalizeInitialOutput(),
		}, nil

	case <-time.After(m.cfg.CaptureWindow):
		m.mu.Lock()
		m.jobs[j.PID] = j
		m.mu.Unlock()

		go m.monitor(j, exited)

		return StartResult{
			State:         StateRunning,
			PID:           j.PID,
			InitialOutput: j.finalizeInitialOutput(),
		}, nil
	}
}

// monitor runs for the lifetime of a backgrounded job: the drain
// goroutines started in Start keep writing into the ring buffer directly,
// so this goroutine only needs to wait for exit and flip final state.
func (m *Manager) monitor(j *Job, exited <-chan error) {
	err := <-exited
	code := exitCodeOf(err)
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			j.setState(StateFailed, code, err.Error())
			return
		}
	}
	j.setState(StateExited, code, "")
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// Get returns the job registered under pid, if any.
func (m *Manager) Get(pid int) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[pid]
	return j, ok
}

// ByUniqueName returns every job — running or finished but not yet
// reclaimed — sharing the given unique_name.
func (m *Manager) ByUniqueName(name string) []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Job
	for _, j := range m.jobs {
		if j.UniqueName == name {
			out = append(out, j)
		}
	}
	return out
}

// Running lists every job currently live.
func (m *Manager) Running() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if st, _ := j.State(); st == StateRunning {
			out = append(out, j)
		}
	}
	return out
}

// StopResult is the outcome of a task_stop call.
type StopResult struct {
	Graceful bool
	ExitCode int
	Err      string
}

// Stop sends a terminate signal to the job's process group, waits up to
// gracePeriod, and escalates to a kill signal if it hasn't exited by then.
// "No such process" at any point is treated as an already-graceful exit,
// never a failure (spec.md §4.9, §7).
func (m *Manager) Stop(pid int, gracePeriod time.Duration) StopResult {
	if err := signalGroup(pid, syscall.SIGTERM); err != nil {
		return StopResult{Err: err.Error()}
	}

	// The Job handle may already have moved past the monitor and been
	// reclaimed, or this pid may have raced ahead of registration; either
	// way fall back to a raw liveness probe so the escalation loop below
	// still applies (spec.md §4.9's SIGTERM->SIGKILL guarantee holds
	// regardless of registry state).
	j, ok := m.Get(pid)
	exited := func() (bool, int) {
		if ok {
			st, code := j.State()
			return st != StateRunning, code
		}
		return !processAlive(pid), 0
	}

	deadline := time.After(gracePeriod)
	poll := time.NewTicker(25 * time.Millisecond)
	defer poll.Stop()
	for {
		select {
		case <-deadline:
			// A process that exited after the last poll would only make the
			// kill find no such process; report it as graceful instead.
			if done, code := exited(); done {
				return StopResult{Graceful: true, ExitCode: code}
			}
			if err := signalGroup(pid, syscall.SIGKILL); err != nil {
				return StopResult{Err: err.Error()}
			}
			return StopResult{Graceful: false}
		case <-poll.C:
			if done, code := exited(); done {
				return StopResult{Graceful: true, ExitCode: code}
			}
		}
	}
}

// GC removes jobs that are either finished and idle past the manager's
// idle window, or older than JobTTL regardless of state. It is rate
// limited by GCInterval; calls within the interval are no-ops.
func (m *Manager) GC(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastGC) < m.cfg.GCInterval {
		return
	}
	m.lastGC = now

	for pid, j := range m.jobs {
		st, _ := j.State()
		age := now.Sub(j.StartTime)
		idle := now.Sub(j.IdleSince())

		finishedIdle := st != StateRunning && idle > m.cfg.GracefulIdleWindow
		expired := age > m.cfg.JobTTL

		if finishedIdle || expired {
			delete(m.jobs, pid)
			logrus.WithFields(logrus.Fields{"pid": pid, "unique_name": j.UniqueName}).Debug("job reclaimed by gc")
		}
	}
}
