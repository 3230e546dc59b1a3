package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTravisFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".travis.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTravisCiParserJobs(t *testing.T) {
	dir := t.TempDir()
	content := `
language: node_js
node_js:
  - "18"
  - "20"

jobs:
  test:
    name: "Test"
    stage: test
  build:
    name: "Build"
    stage: build
`
	path := writeTravisFile(t, dir, content)

	tasks, err := TravisCiParser{}.Parse(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "test", tasks[0].Name)
	assert.Equal(t, "Travis CI job: Test", tasks[0].Description)
	assert.Equal(t, "build", tasks[1].Name)
	assert.Equal(t, "Travis CI job: Build", tasks[1].Description)
}

func TestTravisCiParserMatrixInclude(t *testing.T) {
	dir := t.TempDir()
	content := `
matrix:
  include:
    - name: "Lint"
      stage: lint
    - stage: deploy
`
	path := writeTravisFile(t, dir, content)

	tasks, err := TravisCiParser{}.Parse(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Lint", tasks[0].Name)
	assert.Equal(t, "matrix-job-1", tasks[1].Name)
}

func TestTravisCiParserFallbackPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeTravisFile(t, dir, "language: go\n")

	tasks, err := TravisCiParser{}.Parse(path)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "travis", tasks[0].Name)
}

func TestTravisCiParserEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTravisFile(t, dir, "")

	tasks, err := TravisCiParser{}.Parse(path)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "travis", tasks[0].Name)
}
