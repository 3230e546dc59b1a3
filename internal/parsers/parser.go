// Package parsers implements one pure-function parser per build-file
// format (spec.md §4.1). Each parser is registered under its candidate
// filename(s) so the discovery orchestrator can probe a directory
// without knowing format-specific detail.
package parsers

import (
	"fmt"
	"os"

	"github.com/dela-run/dela/internal/task"
)

// ParseError wraps a malformed-file failure with the file and, where
// available, a line number — spec.md §4.1 "malformed (ParseError with
// message)".
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// NotReadableError wraps an unreadable-file failure.
type NotReadableError struct {
	File string
	Err  error
}

func (e *NotReadableError) Error() string {
	return fmt.Sprintf("%s: not readable: %v", e.File, e.Err)
}

func (e *NotReadableError) Unwrap() error { return e.Err }

// Parser is the contract every build-file format implements: a pure
// function from an absolute path to a sequence of Task records.
type Parser interface {
	// Name identifies the parser for logging/registration purposes.
	Name() string
	// DefinitionType is the DefinitionType this parser produces.
	DefinitionType() task.DefinitionType
	// CandidateFilenames lists the file names (relative to a project
	// directory) this parser should be tried against, in the order they
	// should be probed.
	CandidateFilenames() []string
	// Parse reads and parses the file at path, returning its tasks.
	// Most parsers return (nil, nil) for a well-formed file that defines
	// no tasks; Gradle and Maven still emit their seeded default tasks,
	// Travis CI emits its "travis" placeholder, and a GitHub Actions
	// workflow without a jobs section is a ParseError.
	Parse(path string) ([]task.Task, error)
}

// registry is the ordered list of known parsers; discovery iterates it
// directly, so registration order does not affect output order (tasks
// are re-sorted by DefinitionType.SortIndex() downstream).
var registry []Parser

func register(p Parser) {
	registry = append(registry, p)
}

// All returns every registered parser.
func All() []Parser {
	out := make([]Parser, len(registry))
	copy(out, registry)
	return out
}

// readFile centralizes the NotReadable classification every parser needs.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &NotReadableError{File: path, Err: err}
	}
	return data, nil
}
