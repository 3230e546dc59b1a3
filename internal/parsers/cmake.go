package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dela-run/dela/internal/task"
)

// CMakeParser regex-locates add_custom_target(<name> ...) calls in a
// CMakeLists.txt and mines an optional COMMENT "..." within the matching
// parenthesis-balanced span (spec.md §4.1).
type CMakeParser struct{}

func init() { register(CMakeParser{}) }

func (CMakeParser) Name() string                      { return "CMakeLists.txt" }
func (CMakeParser) DefinitionType() task.DefinitionType { return task.CMake }
func (CMakeParser) CandidateFilenames() []string        { return []string{"CMakeLists.txt"} }

var (
	cmakeTargetRE  = regexp.MustCompile(`add_custom_target\s*\(\s*([a-zA-Z_][a-zA-Z0-9_-]*)`)
	cmakeCommentRE = regexp.MustCompile(`COMMENT\s+"([^"]*)"`)
)

func (p CMakeParser) Parse(path string) ([]task.Task, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	normalized := stripCMakeComments(string(data))

	var tasks []task.Task
	for _, m := range cmakeTargetRE.FindAllStringSubmatchIndex(normalized, -1) {
		name := normalized[m[2]:m[3]]
		start := m[0]
		end := findClosingParen(normalized, start)
		block := normalized
		if end > start && end <= len(normalized) {
			block = normalized[start:end]
		}

		description := fmt.Sprintf("CMake custom target: %s", name)
		if cm := cmakeCommentRE.FindStringSubmatch(block); cm != nil {
			description = cm[1]
		}

		tasks = append(tasks, task.Task{
			Name:           name,
			SourceName:     name,
			FilePath:       path,
			DefinitionType: task.CMake,
			Runner:         task.RunnerCMake,
			Description:    description,
		})
	}

	return tasks, nil
}

// stripCMakeComments removes '#'-introduced line comments.
func stripCMakeComments(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "#"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// findClosingParen returns the index just past the ')' that balances the
// first '(' found at or after start.
func findClosingParen(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}
