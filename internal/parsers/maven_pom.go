package parsers

import (
	"encoding/xml"
	"fmt"

	"github.com/dela-run/dela/internal/task"
)

// MavenPomParser seeds the default Maven lifecycle phases, then adds
// "profile:<id>" for each declared profile and "<artifactId>:<goal>"
// for each plugin-execution goal (spec.md §4.1). Uses the standard
// library's encoding/xml — see DESIGN.md for why no third-party XML
// library was wired here.
type MavenPomParser struct{}

func init() { register(MavenPomParser{}) }

func (MavenPomParser) Name() string                      { return "pom.xml" }
func (MavenPomParser) DefinitionType() task.DefinitionType { return task.MavenPom }
func (MavenPomParser) CandidateFilenames() []string        { return []string{"pom.xml"} }

var defaultMavenGoals = []string{
	"clean", "validate", "compile", "test", "package", "verify", "install", "deploy", "site",
}

type pomProject struct {
	Profiles struct {
		Profile []struct {
			ID string `xml:"id"`
		} `xml:"profile"`
	} `xml:"profiles"`
	Build struct {
		Plugins struct {
			Plugin []pomPlugin `xml:"plugin"`
		} `xml:"plugins"`
	} `xml:"build"`
}

type pomPlugin struct {
	ArtifactID string `xml:"artifactId"`
	Executions struct {
		Execution []struct {
			ID    string `xml:"id"`
			Goals struct {
				Goal []string `xml:"goal"`
			} `xml:"goals"`
		} `xml:"execution"`
	} `xml:"executions"`
}

func (p MavenPomParser) Parse(path string) ([]task.Task, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var project pomProject
	if err := xml.Unmarshal(data, &project); err != nil {
		return nil, &ParseError{File: path, Msg: fmt.Sprintf("invalid XML: %v", err)}
	}

	var tasks []task.Task
	for _, goal := range defaultMavenGoals {
		tasks = append(tasks, task.Task{
			Name: goal, SourceName: goal, FilePath: path,
			DefinitionType: task.MavenPom, Runner: task.RunnerMaven,
			Description: fmt.Sprintf("Maven %s phase", goal),
		})
	}

	for _, profile := range project.Profiles.Profile {
		id := profile.ID
		if id == "" {
			id = "unknown"
		}
		name := fmt.Sprintf("profile:%s", id)
		tasks = append(tasks, task.Task{
			Name: name, SourceName: id, FilePath: path,
			DefinitionType: task.MavenPom, Runner: task.RunnerMaven,
			Description: fmt.Sprintf("Maven profile %s", id),
		})
	}

	for _, plugin := range project.Build.Plugins.Plugin {
		artifactID := plugin.ArtifactID
		if artifactID == "" {
			artifactID = "unknown"
		}
		for _, execution := range plugin.Executions.Execution {
			execID := execution.ID
			if execID == "" {
				execID = "default"
			}
			for _, goal := range execution.Goals.Goal {
				name := fmt.Sprintf("%s:%s", artifactID, goal)
				tasks = append(tasks, task.Task{
					Name: name, SourceName: name, FilePath: path,
					DefinitionType: task.MavenPom, Runner: task.RunnerMaven,
					Description: fmt.Sprintf("Maven plugin goal %s (execution: %s)", goal, execID),
				})
			}
		}
	}

	return tasks, nil
}
