// Package discovery walks a project directory, drives every registered
// parser, attaches runner detection and shadow information, and assembles
// the resulting DiscoveredTasks aggregate (spec.md §4.4).
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dela-run/dela/internal/disambiguate"
	"github.com/dela-run/dela/internal/parsers"
	"github.com/dela-run/dela/internal/runnerdetect"
	"github.com/dela-run/dela/internal/shadow"
	"github.com/dela-run/dela/internal/task"
)

// DiscoverAndDisambiguate runs Discover and then assigns disambiguated
// names in one step — the combination every CLI and MCP call site needs
// (spec.md §4.8: "Runs discovery+disambiguation once per call").
func DiscoverAndDisambiguate(dir string) task.DiscoveredTasks {
	result := Discover(dir)
	disambiguate.Apply(result.Tasks)
	return result
}

// Discover probes dir for every known build-file format, parses whichever
// files are present and readable, and returns a deterministically ordered
// aggregate: files sorted alphabetically by definition type, tasks within a
// file preserved in parse order.
func Discover(dir string) task.DiscoveredTasks {
	var result task.DiscoveredTasks

	units := collectUnits(dir)
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].defType.SortIndex() < units[j].defType.SortIndex()
	})

	for _, u := range units {
		tasks, status := parseUnit(u)
		result.Definitions = append(result.Definitions, status)
		if status.Status == task.FileParseError {
			result.Errors = append(result.Errors, status.Message)
		}

		tasks = attachRunners(dir, u.defType, tasks)
		for i := range tasks {
			tasks[i].Shadow = shadow.Detect(tasks[i].Name)
		}
		result.Tasks = append(result.Tasks, tasks...)
	}

	shellTasks := discoverShellScripts(dir)
	for i := range shellTasks {
		shellTasks[i].Shadow = shadow.Detect(shellTasks[i].Name)
	}
	result.Tasks = append(result.Tasks, shellTasks...)
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].DefinitionType.SortIndex() < result.Tasks[j].DefinitionType.SortIndex()
	})

	return result
}

// unit is one candidate file this process will probe: either a parser's
// fixed CandidateFilenames, or (for GitHub Actions) one workflow file among
// potentially several under .github/workflows/.
type unit struct {
	parser  parsers.Parser
	defType task.DefinitionType
	path    string // resolved path, empty if none of the candidates exist
}

func collectUnits(dir string) []unit {
	var units []unit

	for _, p := range parsers.All() {
		if _, ok := p.(parsers.GitHubActionsParser); ok {
			for _, wf := range parsers.WorkflowFiles(dir) {
				units = append(units, unit{parser: p, defType: p.DefinitionType(), path: wf})
			}
			continue
		}

		path := firstExisting(dir, p.CandidateFilenames())
		units = append(units, unit{parser: p, defType: p.DefinitionType(), path: path})
	}

	return units
}

func firstExisting(dir string, candidates []string) string {
	for _, name := range candidates {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func parseUnit(u unit) ([]task.Task, task.FileStatus) {
	if u.path == "" {
		return nil, task.FileStatus{DefinitionType: u.defType, Status: task.FileNotFound}
	}

	tasks, err := u.parser.Parse(u.path)
	if err == nil {
		return tasks, task.FileStatus{Path: u.path, DefinitionType: u.defType, Status: task.FileParsed}
	}

	var notReadable *parsers.NotReadableError
	if asNotReadable(err, &notReadable) {
		return nil, task.FileStatus{
			Path: u.path, DefinitionType: u.defType,
			Status: task.FileNotReadable, Message: err.Error(),
		}
	}

	return nil, task.FileStatus{
		Path: u.path, DefinitionType: u.defType,
		Status: task.FileParseError, Message: err.Error(),
	}
}

func asNotReadable(err error, target **parsers.NotReadableError) bool {
	nr, ok := err.(*parsers.NotReadableError)
	if ok {
		*target = nr
	}
	return ok
}

// attachRunners fills in Runner for task families that admit more than one
// concrete tool, suppressing tasks entirely when no runner is available.
func attachRunners(dir string, defType task.DefinitionType, tasks []task.Task) []task.Task {
	switch defType {
	case task.PackageJson:
		runner, ok := runnerdetect.DetectNode(dir)
		if !ok {
			return nil
		}
		for i := range tasks {
			tasks[i].Runner = runner
		}
	case task.PyprojectToml:
		runner, ok := runnerdetect.DetectPython(dir)
		if !ok {
			return nil
		}
		// Poetry-scripts and project-scripts tasks already carry their own
		// runner from the parser (PythonPoetry / PythonUv); only override
		// tasks the parser left unset.
		for i := range tasks {
			if tasks[i].Runner == "" {
				tasks[i].Runner = runner
			}
		}
	}
	return tasks
}

// discoverShellScripts finds top-level executable files not claimed by any
// other parser and emits one ShellScript task per file (spec.md §4.1:
// "discovered but kept separate from build-file parsers").
func discoverShellScripts(dir string) []task.Task {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var tasks []task.Task
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		name := e.Name()
		if isKnownBuildFilename(name) {
			continue
		}
		tasks = append(tasks, task.Task{
			Name:           name,
			SourceName:     name,
			FilePath:       filepath.Join(dir, name),
			DefinitionType: task.ShellScript,
			Runner:         task.RunnerShellScript,
			Description:    fmt.Sprintf("Shell script: %s", name),
		})
	}
	return tasks
}

func isKnownBuildFilename(name string) bool {
	for _, p := range parsers.All() {
		for _, c := range p.CandidateFilenames() {
			if c == name {
				return true
			}
		}
	}
	return false
}
