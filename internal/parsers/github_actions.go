package parsers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dela-run/dela/internal/task"
)

// GitHubActionsParser emits one task per job id under "jobs:" in a
// workflow file; description combines the workflow name and job name
// (spec.md §4.1). Candidate files live under .github/workflows/*.yml,
// so this parser implements its own directory scan rather than a fixed
// filename list.
type GitHubActionsParser struct{}

func init() { register(GitHubActionsParser{}) }

func (GitHubActionsParser) Name() string                      { return "GitHub Actions" }
func (GitHubActionsParser) DefinitionType() task.DefinitionType { return task.GitHubActions }

// CandidateFilenames returns nothing: workflow files live in a
// subdirectory and are discovered via WorkflowFiles, not a fixed name.
func (GitHubActionsParser) CandidateFilenames() []string { return nil }

// WorkflowFiles returns the sorted list of *.yml/*.yaml files under
// .github/workflows within dir, for the orchestrator to probe directly.
func WorkflowFiles(dir string) []string {
	wfDir := filepath.Join(dir, ".github", "workflows")
	entries, err := os.ReadDir(wfDir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
			files = append(files, filepath.Join(wfDir, name))
		}
	}
	sort.Strings(files)
	return files
}

func (p GitHubActionsParser) Parse(path string) ([]task.Task, error) {
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
	doc := root.Content[0]

	workflowName := ""
	if n := mappingValue(doc, "name"); n != nil {
		workflowName = n.Value
	}

	jobsNode := mappingValue(doc, "jobs")
	if jobsNode == nil {
		return nil, &ParseError{File: path, Msg: "no jobs found in workflow file"}
	}

	var tasks []task.Task
	for i := 0; i+1 < len(jobsNode.Content); i += 2 {
		jobID := jobsNode.Content[i].Value
		jobNode := jobsNode.Content[i+1]

		jobDesc := ""
		if n := mappingValue(jobNode, "name"); n != nil {
			jobDesc = n.Value
		}

		description := combineWorkflowJobDescription(workflowName, jobDesc)

		tasks = append(tasks, task.Task{
			Name:           jobID,
			SourceName:     jobID,
			FilePath:       path,
			DefinitionType: task.GitHubActions,
			Runner:         task.RunnerAct,
			Description:    description,
		})
	}

	return tasks, nil
}

func combineWorkflowJobDescription(workflowName, jobDesc string) string {
	switch {
	case workflowName != "" && jobDesc != "":
		return fmt.Sprintf("%s - %s", workflowName, jobDesc)
	case workflowName != "":
		return workflowName
	default:
		return jobDesc
	}
}
