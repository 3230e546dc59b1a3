package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dela-run/dela/internal/task"
)

func TestForPerRunner(t *testing.T) {
	cases := []struct {
		runner task.Runner
		source string
		want   string
	}{
		{task.RunnerMake, "build", "make build"},
		{task.RunnerNodeNpm, "test", "npm run test"},
		{task.RunnerNodeYarn, "test", "yarn run test"},
		{task.RunnerNodePnpm, "test", "pnpm run test"},
		{task.RunnerNodeBun, "test", "bun run test"},
		{task.RunnerPythonUv, "lint", "uv run lint"},
		{task.RunnerPythonPoetry, "lint", "poetry run lint"},
		{task.RunnerPythonPoe, "lint", "poe lint"},
		{task.RunnerTask, "build", "task build --"},
		{task.RunnerJust, "build", "just build"},
		{task.RunnerGradle, "build", "gradle build"},
		{task.RunnerMaven, "test", "mvn test"},
		{task.RunnerAct, "ci", "act ci"},
		{task.RunnerShellScript, "deploy.sh", "./deploy.sh"},
	}

	for _, c := range cases {
		got, err := For(task.Task{Runner: c.runner, SourceName: c.source})
		require.NoError(t, err, "runner %s", c.runner)
		assert.Equal(t, c.want, got, "runner %s", c.runner)
	}
}

func TestForCMake(t *testing.T) {
	got, err := For(task.Task{Runner: task.RunnerCMake, SourceName: "docs"})
	require.NoError(t, err)
	assert.Equal(t, "cmake -S . -B build && cmake --build build --target docs", got)
}

func TestForDockerComposeLifecycleVsRun(t *testing.T) {
	up, err := For(task.Task{Runner: task.RunnerDockerCompose, SourceName: "up"})
	require.NoError(t, err)
	assert.Equal(t, "docker compose up", up)

	run, err := For(task.Task{Runner: task.RunnerDockerCompose, SourceName: "web"})
	require.NoError(t, err)
	assert.Equal(t, "docker compose run web", run)
}

func TestForTravisCiNotExecutable(t *testing.T) {
	_, err := For(task.Task{Runner: task.RunnerTravisCi, SourceName: "test"})
	require.Error(t, err)
	assert.IsType(t, &NotExecutableError{}, err)
}

func TestWithArgsQuotesSpecialCharacters(t *testing.T) {
	got := WithArgs("npm run test", []string{"--flag", "value with space", ""})
	assert.Equal(t, "npm run test --flag 'value with space' ''", got)
}
