package parsers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dela-run/dela/internal/task"
)

// TravisCiParser emits one task per entry under "jobs:", falling back to
// "matrix.include" entries, and finally a single "travis" placeholder when
// neither section is present. Travis tasks are discoverable but not
// executable locally (spec.md §4.1, §4.7).
type TravisCiParser struct{}

func init() { register(TravisCiParser{}) }

func (TravisCiParser) Name() string                      { return ".travis.yml" }
func (TravisCiParser) DefinitionType() task.DefinitionType { return task.TravisCi }
func (TravisCiParser) CandidateFilenames() []string        { return []string{".travis.yml"} }

func (p TravisCiParser) Parse(path string) ([]task.Task, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return []task.Task{travisPlaceholderTask(path)}, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{File: path, Msg: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if len(root.Content) == 0 {
		return []task.Task{travisPlaceholderTask(path)}, nil
	}
	doc := root.Content[0]

	if jobsNode := mappingValue(doc, "jobs"); jobsNode != nil && jobsNode.Kind == yaml.MappingNode {
		var tasks []task.Task
		for i := 0; i+1 < len(jobsNode.Content); i += 2 {
			name := jobsNode.Content[i].Value
			description := travisJobDescription(jobsNode.Content[i+1])
			tasks = append(tasks, travisTask(path, name, name, description))
		}
		if len(tasks) > 0 {
			return tasks, nil
		}
	}

	if matrixNode := mappingValue(doc, "matrix"); matrixNode != nil {
		if includeNode := mappingValue(matrixNode, "include"); includeNode != nil && includeNode.Kind == yaml.SequenceNode {
			var tasks []task.Task
			for i, item := range includeNode.Content {
				if item.Kind != yaml.MappingNode {
					continue
				}
				if nameNode := mappingValue(item, "name"); nameNode != nil && nameNode.Value != "" {
					name := nameNode.Value
					tasks = append(tasks, travisTask(path, name, name, travisJobDescription(item)))
					continue
				}
				name := fmt.Sprintf("matrix-job-%d", i)
				tasks = append(tasks, travisTask(path, name, name, "Matrix job from Travis CI"))
			}
			if len(tasks) > 0 {
				return tasks, nil
			}
		}
	}

	return []task.Task{travisPlaceholderTask(path)}, nil
}

func travisTask(path, name, sourceName, description string) task.Task {
	return task.Task{
		Name:           name,
		SourceName:     sourceName,
		FilePath:       path,
		DefinitionType: task.TravisCi,
		Runner:         task.RunnerTravisCi,
		Description:    description,
	}
}

func travisPlaceholderTask(path string) task.Task {
	return travisTask(path, "travis", "travis", "Travis CI configuration")
}

// travisJobDescription mirrors the original's name/stage/language fallback
// chain, defaulting to a generic "Travis CI job" label.
func travisJobDescription(jobNode *yaml.Node) string {
	if jobNode == nil {
		return "Travis CI job"
	}
	if jobNode.Kind == yaml.ScalarNode {
		return fmt.Sprintf("Travis CI job: %s", jobNode.Value)
	}
	if jobNode.Kind != yaml.MappingNode {
		return "Travis CI job"
	}
	if n := mappingValue(jobNode, "name"); n != nil && n.Value != "" {
		return fmt.Sprintf("Travis CI job: %s", n.Value)
	}
	if n := mappingValue(jobNode, "stage"); n != nil && n.Value != "" {
		return fmt.Sprintf("Travis CI job in stage: %s", n.Value)
	}
	if n := mappingValue(jobNode, "language"); n != nil && n.Value != "" {
		return fmt.Sprintf("Travis CI %s job", n.Value)
	}
	return "Travis CI job"
}
