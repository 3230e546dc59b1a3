package parsers

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/dela-run/dela/internal/task"
)

// PyprojectTomlParser parses the union of [tool.poetry.scripts] (runner
// PythonPoetry) and [project.scripts] (runner PythonUv) from
// pyproject.toml — both sets are emitted when present (spec.md §4.1).
type PyprojectTomlParser struct{}

func init() { register(PyprojectTomlParser{}) }

func (PyprojectTomlParser) Name() string                      { return "pyproject.toml" }
func (PyprojectTomlParser) DefinitionType() task.DefinitionType { return task.PyprojectToml }
func (PyprojectTomlParser) CandidateFilenames() []string        { return []string{"pyproject.toml"} }

func (p PyprojectTomlParser) Parse(path string) ([]task.Task, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, &ParseError{File: path, Msg: fmt.Sprintf("invalid TOML: %v", err)}
	}

	var tasks []task.Task

	// [tool.poetry.scripts] — ordered via MetaData.Keys(), which walks
	// the document in source order.
	poetryKey := toml.Key{"tool", "poetry", "scripts"}
	if scripts, ok := lookupTable(doc, poetryKey); ok {
		tasks = append(tasks, tasksFromScriptTable(meta, poetryKey, scripts, path, task.RunnerPythonPoetry)...)
	}

	projectKey := toml.Key{"project", "scripts"}
	if scripts, ok := lookupTable(doc, projectKey); ok {
		tasks = append(tasks, tasksFromScriptTable(meta, projectKey, scripts, path, task.RunnerPythonUv)...)
	}

	return tasks, nil
}

func lookupTable(doc map[string]interface{}, key toml.Key) (map[string]interface{}, bool) {
	var cur interface{} = doc
	for _, part := range key {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	table, ok := cur.(map[string]interface{})
	return table, ok
}

func tasksFromScriptTable(meta toml.MetaData, prefix toml.Key, scripts map[string]interface{}, path string, runner task.Runner) []task.Task {
	names := orderedTableKeys(meta, prefix, scripts)

	tasks := make([]task.Task, 0, len(names))
	for _, name := range names {
		value := scripts[name]
		description := scriptDescription(value, runner)
		tasks = append(tasks, task.Task{
			Name:           name,
			SourceName:     name,
			FilePath:       path,
			DefinitionType: task.PyprojectToml,
			Runner:         runner,
			Description:    description,
		})
	}
	return tasks
}

// orderedTableKeys returns the member keys of the table at prefix in
// the order they appeared in the source document.
func orderedTableKeys(meta toml.MetaData, prefix toml.Key, table map[string]interface{}) []string {
	seen := make(map[string]bool, len(table))
	var ordered []string
	for _, k := range meta.Keys() {
		if len(k) != len(prefix)+1 {
			continue
		}
		isChild := true
		for i, p := range prefix {
			if k[i] != p {
				isChild = false
				break
			}
		}
		if !isChild {
			continue
		}
		name := k[len(k)-1]
		if _, ok := table[name]; ok && !seen[name] {
			seen[name] = true
			ordered = append(ordered, name)
		}
	}
	if len(ordered) == len(table) {
		return ordered
	}
	// Fallback for any key meta-data couldn't resolve (inline tables).
	for name := range table {
		if !seen[name] {
			ordered = append(ordered, name)
		}
	}
	return ordered
}

func scriptDescription(value interface{}, runner task.Runner) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("python script: %s", v)
	case map[string]interface{}:
		if d, ok := v["description"].(string); ok {
			return d
		}
	}
	return ""
}
