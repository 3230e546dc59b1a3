package parsers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dela-run/dela/internal/task"
)

// DockerComposeParser emits one task per top-level service
// (spec.md §4.1).
type DockerComposeParser struct{}

func init() { register(DockerComposeParser{}) }

func (DockerComposeParser) Name() string                      { return "docker-compose.yml" }
func (DockerComposeParser) DefinitionType() task.DefinitionType { return task.DockerCompose }
func (DockerComposeParser) CandidateFilenames() []string {
	return []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"}
}

type composeService struct {
	Image string    `yaml:"image"`
	Build yaml.Node `yaml:"build"`
}

func (p DockerComposeParser) Parse(path string) ([]task.Task, error) {
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

	servicesNode := mappingValue(root.Content[0], "services")
	if servicesNode == nil {
		return nil, nil
	}

	var tasks []task.Task
	for i := 0; i+1 < len(servicesNode.Content); i += 2 {
		nameNode := servicesNode.Content[i]
		defNode := servicesNode.Content[i+1]

		var svc composeService
		_ = defNode.Decode(&svc)

		description := "Docker service"
		switch {
		case svc.Image != "":
			description = fmt.Sprintf("Docker service using image: %s", svc.Image)
		case svc.Build.Kind != 0:
			description = "Docker service with custom build"
		}

		tasks = append(tasks, task.Task{
			Name:           nameNode.Value,
			SourceName:     nameNode.Value,
			FilePath:       path,
			DefinitionType: task.DockerCompose,
			Runner:         task.RunnerDockerCompose,
			Description:    description,
		})
	}

	return tasks, nil
}
