// Package allowlist persists per-path/per-task execution grants and decides
// whether a task may run without prompting (spec.md §4.6).
package allowlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/dela-run/dela/internal/dirs"
	"github.com/dela-run/dela/internal/task"
)

// Scope is the granularity at which a grant applies.
type Scope string

const (
	ScopeOnce      Scope = "Once"
	ScopeTask      Scope = "Task"
	ScopeFile      Scope = "File"
	ScopeDirectory Scope = "Directory"
	ScopeDeny      Scope = "Deny"
)

// Entry is one persisted (or, for Once, process-local) grant.
type Entry struct {
	Path  string   `toml:"path"`
	Scope Scope    `toml:"scope"`
	Tasks []string `toml:"tasks,omitempty"`
}

// Decision is the outcome of evaluating a task against the store.
type Decision int

const (
	Denied Decision = iota
	Allowed
	Undecided
)

type allowlistFile struct {
	Entries []Entry `toml:"entries"`
}

// Store holds the persisted entries plus any Once grants made by the
// current process, which are never written to disk.
type Store struct {
	path    string
	entries []Entry
	onceKey map[string]bool
}

// Load reads the allowlist from disk, returning an empty store if the file
// does not exist. A read failure is treated as empty and logged, matching
// the fail-open read policy; parse failures are returned so callers can
// refuse to proceed (fail closed).
func Load() (*Store, error) {
	path, err := dirs.AllowlistPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads a store from an explicit path, useful for tests.
func LoadFrom(path string) (*Store, error) {
	s := &Store{path: path, onceKey: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		logrus.WithError(err).WithField("path", path).Warn("allowlist read failed, treating as empty")
		return s, nil
	}

	var doc allowlistFile
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("parse allowlist %s: %w", path, err)
	}
	s.entries = doc.Entries
	return s, nil
}

// IsAllowed evaluates a task against the store per the two-pass precedence
// rule: any matching Deny wins outright, then the first matching
// Directory/File/Task/Once entry (Once only within this process) decides.
func (s *Store) IsAllowed(t task.Task) Decision {
	for _, e := range s.entries {
		if e.Scope == ScopeDeny && pathUnder(t.FilePath, e.Path) {
			return Denied
		}
	}

	for _, e := range s.entries {
		switch e.Scope {
		case ScopeDirectory:
			if pathUnder(t.FilePath, e.Path) {
				return Allowed
			}
		case ScopeFile:
			if t.FilePath == e.Path {
				return Allowed
			}
		case ScopeTask:
			if t.FilePath == e.Path && containsString(e.Tasks, t.Name) {
				return Allowed
			}
		}
	}

	if s.onceKey[onceKey(t)] {
		return Allowed
	}

	return Undecided
}

// Grant appends a decision to the store. Every scope but Once is appended
// and the file rewritten atomically; Once is rejected here since it must
// carry the specific task it applies to (use GrantOnce).
func (s *Store) Grant(e Entry) error {
	if e.Scope == ScopeOnce {
		return fmt.Errorf("allowlist: Once scope must be granted via GrantOnce")
	}
	s.entries = append(s.entries, e)
	return s.save()
}

// GrantOnce records a process-local grant for exactly one task. It is
// never persisted to disk and does not survive process restart.
func (s *Store) GrantOnce(t task.Task) {
	s.onceKey[onceKey(t)] = true
}

func onceKey(t task.Task) string {
	return t.FilePath + "\x00" + t.Name
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create allowlist dir: %w", err)
	}

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(allowlistFile{Entries: s.entries}); err != nil {
		return fmt.Errorf("encode allowlist: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write allowlist: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename allowlist: %w", err)
	}
	return nil
}

// pathUnder reports whether file is equal to or a path-component-aligned
// descendant of reference.
func pathUnder(file, reference string) bool {
	file = filepath.Clean(file)
	reference = filepath.Clean(reference)
	if file == reference {
		return true
	}
	rel, err := filepath.Rel(reference, file)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
