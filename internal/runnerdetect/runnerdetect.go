// Package runnerdetect resolves which concrete package-manager runner
// attaches to a package.json or pyproject.toml, by lockfile presence and
// PATH availability probing (spec.md §4.2).
package runnerdetect

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dela-run/dela/internal/task"
)

// LookPath is overridable in tests so probe order can be exercised without
// depending on the host's actual PATH contents.
var LookPath = exec.LookPath

// mockDisabled reports whether Node.js runner detection has been suppressed
// via MOCK_NO_PM, a test seam named explicitly in the environment-inputs
// section of the interface contract.
func mockDisabled() bool {
	return os.Getenv("MOCK_NO_PM") != ""
}

var nodeLockfiles = []struct {
	file   string
	runner task.Runner
}{
	{"package-lock.json", task.RunnerNodeNpm},
	{"yarn.lock", task.RunnerNodeYarn},
	{"pnpm-lock.yaml", task.RunnerNodePnpm},
	{"bun.lockb", task.RunnerNodeBun},
}

var nodeProbeOrder = []struct {
	bin    string
	runner task.Runner
}{
	{"bun", task.RunnerNodeBun},
	{"pnpm", task.RunnerNodePnpm},
	{"yarn", task.RunnerNodeYarn},
	{"npm", task.RunnerNodeNpm},
}

// DetectNode returns the Node.js runner for a package.json living in dir,
// or false if none can be determined (no lockfile and nothing on PATH).
func DetectNode(dir string) (task.Runner, bool) {
	if mockDisabled() {
		return "", false
	}
	for _, lf := range nodeLockfiles {
		if fileExists(filepath.Join(dir, lf.file)) {
			return lf.runner, true
		}
	}
	for _, p := range nodeProbeOrder {
		if _, err := LookPath(p.bin); err == nil {
			return p.runner, true
		}
	}
	return "", false
}

var pythonProbeOrder = []struct {
	bin    string
	runner task.Runner
}{
	{"poetry", task.RunnerPythonPoetry},
	{"uv", task.RunnerPythonUv},
	{"poe", task.RunnerPythonPoe},
}

// DetectPython returns the Python runner for a pyproject.toml living in dir.
// poetry.lock + poetry-on-PATH wins outright; failing that .venv/ + uv wins;
// otherwise the first available of poetry, uv, poe is used.
func DetectPython(dir string) (task.Runner, bool) {
	_, poetryErr := LookPath("poetry")
	if fileExists(filepath.Join(dir, "poetry.lock")) && poetryErr == nil {
		return task.RunnerPythonPoetry, true
	}
	_, uvErr := LookPath("uv")
	if dirExists(filepath.Join(dir, ".venv")) && uvErr == nil {
		return task.RunnerPythonUv, true
	}
	for _, p := range pythonProbeOrder {
		if _, err := LookPath(p.bin); err == nil {
			return p.runner, true
		}
	}
	return "", false
}

// Available reports whether a runner's executable is reachable via PATH.
// ShellScript and the JVM/CMake family of build-file runners don't run
// through a separate package-manager binary check here; callers probe
// those directly against their own tool name.
func Available(bin string) bool {
	_, err := LookPath(bin)
	return err == nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
