package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dela-run/dela/internal/task"
)

func TestDiscoverMakefileAndMissingFiles(t *testing.T) {
	dir := t.TempDir()
	makefile := "build:\n\t@echo Building...\n\ntest:\n\t@echo Testing...\n"
	if err := os.WriteFile(filepath.Join(dir, "Makefile"), []byte(makefile), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result := Discover(dir)

	names := map[string]bool{}
	for _, tk := range result.Tasks {
		names[tk.Name] = true
	}
	if !names["build"] || !names["test"] {
		t.Fatalf("expected build and test tasks, got %+v", result.Tasks)
	}

	foundNotFound := false
	for _, d := range result.Definitions {
		if d.DefinitionType == task.PyprojectToml && d.Status == task.FileNotFound {
			foundNotFound = true
		}
	}
	if !foundNotFound {
		t.Fatalf("expected pyproject.toml to be reported NotFound")
	}
}

func TestDiscoverShellScripts(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "deploy.sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\necho hi\n"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result := Discover(dir)

	found := false
	for _, tk := range result.Tasks {
		if tk.Name == "deploy.sh" && tk.DefinitionType == task.ShellScript {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected deploy.sh discovered as a shell script task, got %+v", result.Tasks)
	}
}

func TestDiscoverDeterministicOrdering(t *testing.T) {
	dir := t.TempDir()
	makefile := "build:\n\t@echo Building...\n"
	if err := os.WriteFile(filepath.Join(dir, "Makefile"), []byte(makefile), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Justfile"), []byte("build:\n\techo hi\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	first := Discover(dir)
	second := Discover(dir)

	if len(first.Tasks) != len(second.Tasks) {
		t.Fatalf("expected stable task count across runs")
	}
	for i := range first.Tasks {
		if first.Tasks[i].Name != second.Tasks[i].Name || first.Tasks[i].DefinitionType != second.Tasks[i].DefinitionType {
			t.Fatalf("expected identical ordering across runs at index %d", i)
		}
	}
}
