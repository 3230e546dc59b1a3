package disambiguate

import (
	"testing"

	"github.com/dela-run/dela/internal/task"
)

func TestApplyDisambiguatesCollisions(t *testing.T) {
	tasks := []task.Task{
		{Name: "build", Runner: task.RunnerMake},
		{Name: "build", Runner: task.RunnerNodeNpm},
		{Name: "test", Runner: task.RunnerMake},
	}

	Apply(tasks)

	if tasks[0].DisambiguatedName != "build-m" {
		t.Errorf("expected build-m, got %q", tasks[0].DisambiguatedName)
	}
	if tasks[1].DisambiguatedName != "build-n" {
		t.Errorf("expected build-n, got %q", tasks[1].DisambiguatedName)
	}
	if tasks[2].DisambiguatedName != "" {
		t.Errorf("expected no disambiguation for unique name, got %q", tasks[2].DisambiguatedName)
	}
}

func TestApplyBreaksRunnerSuffixTies(t *testing.T) {
	tasks := []task.Task{
		{Name: "lint", Runner: task.RunnerMake},
		{Name: "lint", Runner: task.RunnerMake},
		{Name: "lint", Runner: task.RunnerMake},
	}

	Apply(tasks)

	if tasks[0].DisambiguatedName != "lint-m" {
		t.Errorf("expected lint-m, got %q", tasks[0].DisambiguatedName)
	}
	if tasks[1].DisambiguatedName != "lint-m-2" {
		t.Errorf("expected lint-m-2, got %q", tasks[1].DisambiguatedName)
	}
	if tasks[2].DisambiguatedName != "lint-m-3" {
		t.Errorf("expected lint-m-3, got %q", tasks[2].DisambiguatedName)
	}
}

func TestApplyInjectiveLookup(t *testing.T) {
	tasks := []task.Task{
		{Name: "run", Runner: task.RunnerMake},
		{Name: "run", Runner: task.RunnerJust},
	}
	Apply(tasks)

	seen := make(map[string]bool)
	for _, tk := range tasks {
		key := tk.UniqueName()
		if seen[key] {
			t.Fatalf("unique name %q collided", key)
		}
		seen[key] = true
	}
}
