package shadow

import (
	"errors"
	"testing"

	"github.com/dela-run/dela/internal/task"
)

func TestDetectShellBuiltinTakesPrecedence(t *testing.T) {
	t.Setenv("SHELL", "/bin/bash")
	orig := LookPath
	defer func() { LookPath = orig }()
	LookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }

	s := Detect("read")
	if s.Kind != task.ShadowShellBuiltin || s.Detail != "bash" {
		t.Fatalf("expected bash builtin shadow, got %+v", s)
	}
}

func TestDetectPathExecutable(t *testing.T) {
	t.Setenv("SHELL", "/bin/bash")
	orig := LookPath
	defer func() { LookPath = orig }()
	LookPath = func(name string) (string, error) {
		if name == "docker" {
			return "/usr/bin/docker", nil
		}
		return "", errors.New("not found")
	}

	s := Detect("docker")
	if s.Kind != task.ShadowPathExecutable || s.Detail != "/usr/bin/docker" {
		t.Fatalf("expected path executable shadow, got %+v", s)
	}
}

func TestDetectNone(t *testing.T) {
	t.Setenv("SHELL", "/bin/bash")
	orig := LookPath
	defer func() { LookPath = orig }()
	LookPath = func(name string) (string, error) { return "", errors.New("not found") }

	s := Detect("my-custom-task")
	if s.Kind != task.ShadowNone {
		t.Fatalf("expected no shadow, got %+v", s)
	}
	if s.IsShadowed() {
		t.Fatalf("expected IsShadowed false")
	}
}
