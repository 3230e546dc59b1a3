package job

import (
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CaptureWindow = 200 * time.Millisecond
	return cfg
}

func TestStartQuickExitReturnsExited(t *testing.T) {
	m := NewManager(testConfig())
	result, err := m.Start(SpawnSpec{UniqueName: "echo", Command: "echo hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateExited {
		t.Fatalf("expected exited state, got %v", result.State)
	}
	if result.ExitCode == nil || *result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %v", result.ExitCode)
	}
	if !strings.Contains(result.InitialOutput, "hello") {
		t.Fatalf("expected captured output, got %q", result.InitialOutput)
	}
}

func TestStartLongRunnerBackgrounds(t *testing.T) {
	m := NewManager(testConfig())
	result, err := m.Start(SpawnSpec{UniqueName: "sleeper", Command: "sleep 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateRunning {
		t.Fatalf("expected running state, got %v", result.State)
	}

	j, ok := m.Get(result.PID)
	if !ok {
		t.Fatalf("expected job registered under pid %d", result.PID)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if st, _ := j.State(); st == StateExited {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("expected backgrounded job to eventually exit")
}

func TestConcurrencyCapRejectsAtCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrentJobs = 1
	m := NewManager(cfg)

	result, err := m.Start(SpawnSpec{UniqueName: "sleeper", Command: "sleep 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateRunning {
		t.Fatalf("expected running state to occupy the single slot, got %v", result.State)
	}

	_, err = m.Start(SpawnSpec{UniqueName: "another", Command: "sleep 1"})
	if err == nil {
		t.Fatalf("expected rejection at capacity")
	}
}

func TestStopAlreadyExitedTreatedAsGraceful(t *testing.T) {
	m := NewManager(testConfig())
	res := m.Stop(999999, 1*time.Second)
	if !res.Graceful {
		t.Fatalf("expected stopping an unknown/already-gone pid to be graceful, got %+v", res)
	}
}
