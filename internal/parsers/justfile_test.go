package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJustfile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "Justfile")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestJustfileParserRecipes(t *testing.T) {
	dir := t.TempDir()
	content := "build:\n\techo building\n\ntest: # runs the tests\n\techo testing\n"
	path := writeJustfile(t, dir, content)

	tasks, err := JustfileParser{}.Parse(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "build", tasks[0].Name)
	assert.Equal(t, "test", tasks[1].Name)
	assert.Equal(t, "runs the tests", tasks[1].Description)
}

func TestJustfileParserMixedIndentationAcrossLines(t *testing.T) {
	dir := t.TempDir()
	content := "build:\n\techo one\n    echo two\n"
	path := writeJustfile(t, dir, content)

	_, err := JustfileParser{}.Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

// A recipe with exactly one body line that itself mixes tabs and spaces
// must still be flagged, per spec.md's "mixed spaces+tabs in one recipe"
// boundary case (§8).
func TestJustfileParserMixedIndentationSingleLine(t *testing.T) {
	dir := t.TempDir()
	content := "build:\n\t echo mixed\n"
	path := writeJustfile(t, dir, content)

	_, err := JustfileParser{}.Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestJustfileParserDifferentRecipesCanDifferInStyle(t *testing.T) {
	dir := t.TempDir()
	content := "build:\n\techo tabs\n\ntest:\n    echo spaces\n"
	path := writeJustfile(t, dir, content)

	tasks, err := JustfileParser{}.Parse(path)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
