package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dela-run/dela/internal/task"
)

// JustfileParser parses `just` recipes (spec.md §4.1). Each recipe's
// body must use a single indentation style (all-spaces or all-tabs);
// mixed indentation within one recipe is a line-numbered ParseError.
// Different recipes in the same file may use different styles.
type JustfileParser struct{}

func init() { register(JustfileParser{}) }

func (JustfileParser) Name() string                      { return "Justfile" }
func (JustfileParser) DefinitionType() task.DefinitionType { return task.Justfile }
func (JustfileParser) CandidateFilenames() []string {
	return []string{"Justfile", "justfile", ".justfile"}
}

// recipeHeaderRE matches recipe headers of the form:
//
//	name:
//	name: # comment
//	name *args:
//	name: dependency # comment
//	name *args: dependency # comment
var recipeHeaderRE = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)(?:\s+\*[a-zA-Z_][a-zA-Z0-9_-]*)?:\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*\s+)?(?:#\s*(.+))?$`)

func (p JustfileParser) Parse(path string) ([]task.Task, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	var tasks []task.Task

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := recipeHeaderRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		description := strings.TrimSpace(m[2])

		if err := validateRecipeIndentation(lines, i+1); err != nil {
			return nil, &ParseError{File: path, Msg: err.Error()}
		}

		tasks = append(tasks, task.Task{
			Name:           name,
			SourceName:     name,
			FilePath:       path,
			DefinitionType: task.Justfile,
			Runner:         task.RunnerJust,
			Description:    description,
		})
	}

	return tasks, nil
}

type indentKind int

const (
	indentNone indentKind = iota
	indentSpaces
	indentTabs
	indentMixed
)

func lineIndentKind(line string) indentKind {
	var leading strings.Builder
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		leading.WriteRune(r)
	}
	s := leading.String()
	if s == "" {
		return indentNone
	}
	hasSpace := strings.ContainsRune(s, ' ')
	hasTab := strings.ContainsRune(s, '\t')
	switch {
	case hasSpace && hasTab:
		return indentMixed
	case hasSpace:
		return indentSpaces
	default:
		return indentTabs
	}
}

func isIndentedLine(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// validateRecipeIndentation walks the body lines following a recipe
// header (starting at 0-indexed bodyStart) and ensures every indented
// line uses the same indentation style as the first one.
func validateRecipeIndentation(lines []string, bodyStart int) error {
	type recipeLine struct {
		num  int
		text string
	}
	var body []recipeLine

	for i := bodyStart; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if isIndentedLine(line) {
			body = append(body, recipeLine{num: i + 1, text: line})
			continue
		}
		break
	}

	if len(body) == 0 {
		return nil
	}

	var first indentKind
	for i, bl := range body {
		kind := lineIndentKind(bl.text)
		if kind == indentMixed {
			return fmt.Errorf("line %d: mixed indentation in recipe - found both spaces and tabs", bl.num)
		}
		if i == 0 {
			first = kind
			continue
		}
		if kind != first {
			return fmt.Errorf("line %d: mixed indentation in recipe - found both spaces and tabs", bl.num)
		}
	}
	return nil
}
