package allowlist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dela-run/dela/internal/task"
)

func TestIsAllowedDenyWinsRegardlessOfPosition(t *testing.T) {
	s := &Store{
		entries: []Entry{
			{Path: "/proj", Scope: ScopeDirectory},
			{Path: "/proj", Scope: ScopeDeny},
		},
		onceKey: map[string]bool{},
	}

	assert.Equal(t, Denied, s.IsAllowed(task.Task{FilePath: "/proj/Makefile", Name: "build"}))
}

func TestIsAllowedDirectoryPrefixMatch(t *testing.T) {
	s := &Store{
		entries: []Entry{{Path: "/proj", Scope: ScopeDirectory}},
		onceKey: map[string]bool{},
	}

	assert.Equal(t, Allowed, s.IsAllowed(task.Task{FilePath: "/proj/sub/Makefile", Name: "x"}))
	assert.NotEqual(t, Allowed, s.IsAllowed(task.Task{FilePath: "/projects-other/Makefile", Name: "x"}),
		"expected path-component-aligned match, not simple prefix")
}

func TestIsAllowedTaskScopeRequiresNameMatch(t *testing.T) {
	s := &Store{
		entries: []Entry{{Path: "/proj/Makefile", Scope: ScopeTask, Tasks: []string{"build"}}},
		onceKey: map[string]bool{},
	}

	assert.Equal(t, Allowed, s.IsAllowed(task.Task{FilePath: "/proj/Makefile", Name: "build"}))
	assert.Equal(t, Undecided, s.IsAllowed(task.Task{FilePath: "/proj/Makefile", Name: "clean"}))
}

func TestIsAllowedUndecidedByDefault(t *testing.T) {
	s := &Store{onceKey: map[string]bool{}}
	assert.Equal(t, Undecided, s.IsAllowed(task.Task{FilePath: "/proj/Makefile", Name: "build"}))
}

func TestGrantOnceIsNotPersisted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.toml")
	s, err := LoadFrom(path)
	require.NoError(t, err)

	tk := task.Task{FilePath: "/proj/Makefile", Name: "build"}
	s.GrantOnce(tk)
	assert.Equal(t, Allowed, s.IsAllowed(tk))

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, Undecided, reloaded.IsAllowed(tk), "expected Once grant to not survive reload")
}

func TestGrantDirectoryPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.toml")
	s, err := LoadFrom(path)
	require.NoError(t, err)

	require.NoError(t, s.Grant(Entry{Path: "/proj", Scope: ScopeDirectory}))

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, Allowed, reloaded.IsAllowed(task.Task{FilePath: "/proj/Makefile", Name: "build"}))
}
