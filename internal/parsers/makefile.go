package parsers

import (
	"strings"

	"github.com/dela-run/dela/internal/task"
)

// MakefileParser parses GNU Makefile rules into Tasks (spec.md §4.1).
type MakefileParser struct{}

func init() { register(MakefileParser{}) }

func (MakefileParser) Name() string                      { return "makefile" }
func (MakefileParser) DefinitionType() task.DefinitionType { return task.Makefile }
func (MakefileParser) CandidateFilenames() []string {
	return []string{"Makefile", "makefile", "GNUmakefile"}
}

// Parse scans a Makefile line by line: a line of the form "target: deps"
// (not starting with a tab or space, whose first ':' does not begin a
// ':=' assignment; a '::' double-colon rule counts) introduces a rule. Targets starting with '.' or
// containing '%' (pattern rules) are excluded. The description is mined
// from the first "@echo"/"echo" recipe line belonging to the rule.
func (p MakefileParser) Parse(path string) ([]task.Task, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	var tasks []task.Task

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "\t") || strings.HasPrefix(line, " ") {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		colonIdx := findRuleColon(trimmed)
		if colonIdx < 0 {
			continue
		}

		targetsPart := strings.TrimSpace(trimmed[:colonIdx])
		if targetsPart == "" {
			continue
		}
		targets := strings.Fields(targetsPart)
		if len(targets) == 0 {
			continue
		}
		target := targets[0]
		if strings.HasPrefix(target, ".") || strings.Contains(target, "%") {
			continue
		}

		description := extractMakeDescription(lines, i+1)

		tasks = append(tasks, task.Task{
			Name:           target,
			SourceName:     target,
			FilePath:       path,
			DefinitionType: task.Makefile,
			Runner:         task.RunnerMake,
			Description:    description,
		})
	}

	return tasks, nil
}

// findRuleColon finds the index of the ':' that introduces a rule,
// ignoring ':=' (simple variable assignment) and a second consecutive
// ':' (double-colon rules still count as a rule, so only the first is
// significant).
func findRuleColon(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ':' {
			continue
		}
		if i+1 < len(line) && line[i+1] == '=' {
			return -1 // variable assignment, e.g. "FOO := bar"
		}
		return i
	}
	return -1
}

// extractMakeDescription scans the recipe lines (consecutive
// tab/space-indented lines) following a rule header for the first
// echo/@echo command and strips its surrounding quotes.
func extractMakeDescription(lines []string, start int) string {
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, "\t") && !strings.HasPrefix(line, " ") {
			break
		}
		cmd := strings.TrimSpace(line)
		cmd = strings.TrimPrefix(cmd, "@")
		if !strings.HasPrefix(cmd, "echo") {
			continue
		}
		desc := strings.TrimSpace(strings.TrimPrefix(cmd, "echo"))
		desc = strings.Trim(desc, `"'`)
		if desc != "" {
			return desc
		}
	}
	return ""
}
