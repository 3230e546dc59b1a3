package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dela-run/dela/internal/allowlist"
	"github.com/dela-run/dela/internal/task"
)

func testTask() task.Task {
	return task.Task{Name: "test-task", Description: "A test task", FilePath: "Makefile", Runner: task.RunnerMake, SourceName: "test-task"}
}

func TestForTaskChoices(t *testing.T) {
	cases := []struct {
		input string
		want  Decision
	}{
		{"1\n", Decision{Allow: true, Scope: allowlist.ScopeOnce}},
		{"2\n", Decision{Allow: true, Scope: allowlist.ScopeTask}},
		{"3\n", Decision{Allow: true, Scope: allowlist.ScopeFile}},
		{"4\n", Decision{Allow: true, Scope: allowlist.ScopeDirectory}},
		{"5\n", Decision{Allow: false, Scope: allowlist.ScopeDeny}},
	}

	for _, c := range cases {
		var out bytes.Buffer
		got, err := ForTask(strings.NewReader(c.input), &out, testTask())
		if err != nil {
			t.Fatalf("unexpected error for input %q: %v", c.input, err)
		}
		if got != c.want {
			t.Errorf("input %q: got %+v, want %+v", c.input, got, c.want)
		}
	}
}

func TestForTaskInvalidChoice(t *testing.T) {
	var out bytes.Buffer
	_, err := ForTask(strings.NewReader("9\n"), &out, testTask())
	if err == nil {
		t.Fatal("expected error for invalid choice")
	}
}

func TestApplyOnceDoesNotPersist(t *testing.T) {
	dir := t.TempDir()
	store, err := allowlist.LoadFrom(dir + "/allowlist.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tk := testTask()

	if err := Apply(store, tk, Decision{Allow: true, Scope: allowlist.ScopeOnce}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.IsAllowed(tk) != allowlist.Allowed {
		t.Fatal("expected once grant to allow within process")
	}
}
