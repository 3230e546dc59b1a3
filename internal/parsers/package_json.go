package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dela-run/dela/internal/task"
)

// PackageJSONParser parses the "scripts" map of a package.json file.
// Runner assignment is deferred to internal/runnerdetect (spec.md §4.2);
// tasks are emitted with an empty Runner that discovery fills in.
type PackageJSONParser struct{}

func init() { register(PackageJSONParser{}) }

func (PackageJSONParser) Name() string                      { return "package.json" }
func (PackageJSONParser) DefinitionType() task.DefinitionType { return task.PackageJson }
func (PackageJSONParser) CandidateFilenames() []string        { return []string{"package.json"} }

type packageJSON struct {
	Scripts map[string]string `json:"scripts"`
}

func (p PackageJSONParser) Parse(path string) ([]task.Task, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, &ParseError{File: path, Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if len(pkg.Scripts) == 0 {
		return nil, nil
	}

	// json.Unmarshal into a map loses declaration order; re-read keys in
	// their original textual order so task order matches the file.
	names, err := orderedObjectKeys(data, "scripts")
	if err != nil || len(names) != len(pkg.Scripts) {
		names = nil
		for name := range pkg.Scripts {
			names = append(names, name)
		}
	}

	tasks := make([]task.Task, 0, len(names))
	for _, name := range names {
		cmd := pkg.Scripts[name]
		tasks = append(tasks, task.Task{
			Name:           name,
			SourceName:     name,
			FilePath:       path,
			DefinitionType: task.PackageJson,
			Description:    cmd,
		})
	}
	return tasks, nil
}

// orderedObjectKeys walks a raw JSON document looking for a top-level
// object key and returns the member keys of its object value in
// declaration order, using json.Decoder's token stream (which does
// preserve source order, unlike Unmarshal into a map).
func orderedObjectKeys(data []byte, topKey string) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0
	inTarget := false
	var names []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 1 {
					inTarget = false
				}
			}
		case string:
			if depth == 1 && !inTarget && t == topKey {
				inTarget = true
				continue
			}
			if depth == 2 && inTarget {
				names = append(names, t)
				// skip the value token
				var raw json.RawMessage
				if err := dec.Decode(&raw); err != nil {
					return names, err
				}
			}
		}
	}
	return names, nil
}
