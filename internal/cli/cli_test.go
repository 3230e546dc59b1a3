package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dela-run/dela/internal/task"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	old := globalCwd
	t.Cleanup(func() { globalCwd = old })
	globalCwd = "."
}

func TestRootHelp(t *testing.T) {
	resetGlobals(t)
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := buf.String()
	for _, sub := range []string{"list", "run", "allow-command", "get-command", "mcp"} {
		if !strings.Contains(out, sub) {
			t.Errorf("root --help output should mention %q subcommand", sub)
		}
	}
}

func TestResolveNotFound(t *testing.T) {
	discovered := task.DiscoveredTasks{}
	_, code, err := resolve(discovered, "missing")
	if err == nil {
		t.Fatalf("expected an error for a missing task")
	}
	if code != ExitNotFound {
		t.Fatalf("expected ExitNotFound, got %d", code)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	discovered := task.DiscoveredTasks{Tasks: []task.Task{
		{Name: "test", FilePath: "/p/Makefile", Runner: task.RunnerMake, DisambiguatedName: "test-m"},
		{Name: "test", FilePath: "/p/package.json", Runner: task.RunnerNodeNpm, DisambiguatedName: "test-n"},
	}}
	_, code, err := resolve(discovered, "test")
	if err == nil {
		t.Fatalf("expected an error for an ambiguous bare name")
	}
	if code != ExitAmbiguous {
		t.Fatalf("expected ExitAmbiguous, got %d", code)
	}
}

func TestResolveByUniqueName(t *testing.T) {
	discovered := task.DiscoveredTasks{Tasks: []task.Task{
		{Name: "test", FilePath: "/p/Makefile", Runner: task.RunnerMake, DisambiguatedName: "test-m"},
	}}
	got, code, err := resolve(discovered, "test-m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != ExitOK {
		t.Fatalf("expected ExitOK, got %d", code)
	}
	if got.UniqueName() != "test-m" {
		t.Fatalf("resolved wrong task: %+v", got)
	}
}

func TestGetCommandEmitsShellInvocation(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Makefile"), []byte("build:\n\techo hi\n"), 0o644); err != nil {
		t.Fatalf("failed to write Makefile: %v", err)
	}
	globalCwd = dir

	code := cmdGetCommand("build")
	if code != ExitOK {
		t.Fatalf("expected ExitOK, got %d", code)
	}
}
