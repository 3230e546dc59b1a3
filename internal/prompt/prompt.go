// Package prompt converts an unresolved task into an interactive scope
// decision for the allowlist (spec.md §4.6, Design Notes menu freeze).
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dela-run/dela/internal/allowlist"
	"github.com/dela-run/dela/internal/task"
)

// Decision is the user's answer: either a scope to allow under, or a deny.
type Decision struct {
	Allow bool
	Scope allowlist.Scope
}

// ForTask prints the approval menu to out and reads a single line from in,
// mapping choices 1..5 to Once/Task/File/Directory/Deny.
func ForTask(in io.Reader, out io.Writer, t task.Task) (Decision, error) {
	fmt.Fprintf(out, "\nTask '%s' from '%s' requires approval.\n", t.Name, t.FilePath)
	if t.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", t.Description)
	}
	fmt.Fprintln(out, "\nHow would you like to proceed?")
	fmt.Fprintln(out, "1) Allow once (this time only)")
	fmt.Fprintln(out, "2) Allow this task (remember for this task)")
	fmt.Fprintln(out, "3) Allow file (remember for all tasks in this file)")
	fmt.Fprintln(out, "4) Allow directory (remember for all tasks in this directory)")
	fmt.Fprintln(out, "5) Deny (don't run this task)")
	fmt.Fprint(out, "\nEnter your choice (1-5): ")

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return Decision{}, fmt.Errorf("read choice: %w", err)
	}

	switch strings.TrimSpace(line) {
	case "1":
		return Decision{Allow: true, Scope: allowlist.ScopeOnce}, nil
	case "2":
		return Decision{Allow: true, Scope: allowlist.ScopeTask}, nil
	case "3":
		return Decision{Allow: true, Scope: allowlist.ScopeFile}, nil
	case "4":
		return Decision{Allow: true, Scope: allowlist.ScopeDirectory}, nil
	case "5":
		return Decision{Allow: false, Scope: allowlist.ScopeDeny}, nil
	default:
		return Decision{}, fmt.Errorf("invalid choice: please enter a number between 1 and 5")
	}
}

// Apply records the decision in store, honoring Once's process-local-only
// semantics for the given task.
func Apply(store *allowlist.Store, t task.Task, d Decision) error {
	if !d.Allow {
		return store.Grant(allowlist.Entry{Path: t.FilePath, Scope: allowlist.ScopeDeny})
	}
	if d.Scope == allowlist.ScopeOnce {
		store.GrantOnce(t)
		return nil
	}
	entry := allowlist.Entry{Scope: d.Scope}
	switch d.Scope {
	case allowlist.ScopeTask:
		entry.Path = t.FilePath
		entry.Tasks = []string{t.Name}
	case allowlist.ScopeFile:
		entry.Path = t.FilePath
	case allowlist.ScopeDirectory:
		entry.Path = filepath.Dir(t.FilePath)
	}
	return store.Grant(entry)
}
