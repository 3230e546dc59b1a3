package parsers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dela-run/dela/internal/task"
)

// TaskfileParser parses the top-level "tasks" map of a go-task
// Taskfile.yml (spec.md §4.1).
type TaskfileParser struct{}

func init() { register(TaskfileParser{}) }

func (TaskfileParser) Name() string                      { return "Taskfile.yml" }
func (TaskfileParser) DefinitionType() task.DefinitionType { return task.Taskfile }
func (TaskfileParser) CandidateFilenames() []string {
	return []string{"Taskfile.yml", "Taskfile.yaml"}
}

type taskfileEntry struct {
	Desc string   `yaml:"desc"`
	Cmds []string `yaml:"cmds"`
	Deps []string `yaml:"deps"`
}

func (p TaskfileParser) Parse(path string) ([]task.Task, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{File: path, Msg: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	tasksNode := mappingValue(root.Content[0], "tasks")
	if tasksNode == nil {
		return nil, nil
	}

	var tasks []task.Task
	for i := 0; i+1 < len(tasksNode.Content); i += 2 {
		nameNode := tasksNode.Content[i]
		defNode := tasksNode.Content[i+1]

		var entry taskfileEntry
		if err := defNode.Decode(&entry); err != nil {
			return nil, &ParseError{File: path, Line: defNode.Line, Msg: fmt.Sprintf("invalid task %q: %v", nameNode.Value, err)}
		}

		description := entry.Desc
		if description == "" && len(entry.Cmds) > 0 {
			if len(entry.Cmds) == 1 {
				description = fmt.Sprintf("command: %s", entry.Cmds[0])
			} else {
				description = fmt.Sprintf("multiple commands: %d", len(entry.Cmds))
			}
		}

		tasks = append(tasks, task.Task{
			Name:           nameNode.Value,
			SourceName:     nameNode.Value,
			FilePath:       path,
			DefinitionType: task.Taskfile,
			Runner:         task.RunnerTask,
			Description:    description,
		})
	}

	return tasks, nil
}

// mappingValue looks up a key within a YAML mapping node, returning its
// value node or nil if absent. Works directly on the raw node tree so
// source order of sibling keys is always preserved.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
