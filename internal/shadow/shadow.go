// Package shadow determines whether a task name would be intercepted by a
// shell builtin or a PATH executable before it ever reaches a runner
// (spec.md §4.3).
package shadow

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dela-run/dela/internal/task"
)

// LookPath is overridable in tests.
var LookPath = exec.LookPath

var zshBuiltins = builtinSet(
	"cd", "echo", "pwd", "export", "alias", "bg", "bindkey", "builtin", "command",
	"declare", "dirs", "disable", "disown", "enable", "eval", "exec", "exit", "fg",
	"getopts", "hash", "jobs", "kill", "let", "local", "popd", "print", "pushd",
	"read", "readonly", "return", "set", "setopt", "shift", "source", "suspend",
	"test", "times", "trap", "type", "typeset", "ulimit", "umask", "unalias",
	"unfunction", "unhash", "unset", "unsetopt", "wait", "whence", "where",
	"which", ".", ":", "[", "ls",
)

var bashBuiltins = builtinSet(
	"cd", "echo", "pwd", "export", "alias", "bg", "bind", "break", "builtin",
	"caller", "command", "compgen", "complete", "continue", "declare", "dirs",
	"disown", "enable", "eval", "exec", "exit", "fc", "fg", "getopts", "hash",
	"help", "history", "jobs", "kill", "let", "local", "logout", "mapfile",
	"popd", "printf", "pushd", "read", "readarray", "readonly", "return", "set",
	"shift", "shopt", "source", "suspend", "test", "times", "trap", "type",
	"typeset", "ulimit", "umask", "unalias", "unset", "wait", ".", ":", "[", "ls",
)

var fishBuiltins = builtinSet(
	"cd", "echo", "pwd", "export", "alias", "bg", "bind", "block", "breakpoint",
	"builtin", "case", "command", "commandline", "complete", "contains", "count",
	"dirh", "dirs", "disown", "emit", "eval", "exec", "exit", "fg", "fish_config",
	"fish_update_completions", "funced", "funcsave", "functions", "help",
	"history", "isatty", "jobs", "math", "nextd", "open", "popd", "prevd",
	"printf", "pushd", "random", "read", "realpath", "set", "set_color",
	"source", "status", "string", "test", "time", "trap", "type", "ulimit",
	"umask", "vared", ".", ":", "[", "ls",
)

var pwshBuiltins = builtinSet(
	"cd", "echo", "pwd", "export", "alias", "clear", "copy", "del", "dir",
	"exit", "get", "help", "history", "kill", "mkdir", "move", "popd", "pushd",
	"read", "remove", "rename", "set", "start", "test", "type", "wait", "where",
	"write", "ls", "rm", "cp", "mv", "cat", "sleep", "sort", "tee",
)

func builtinSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var shellBuiltins = map[string]map[string]bool{
	"zsh":  zshBuiltins,
	"bash": bashBuiltins,
	"fish": fishBuiltins,
	"pwsh": pwshBuiltins,
}

// Detect reports whether name is shadowed, first by the current $SHELL's
// builtin table, then by a PATH executable. Builtins win over PATH.
func Detect(name string) task.Shadow {
	if s, ok := checkShellBuiltin(name); ok {
		return s
	}
	if s, ok := checkPathExecutable(name); ok {
		return s
	}
	return task.Shadow{Kind: task.ShadowNone}
}

func checkShellBuiltin(name string) (task.Shadow, bool) {
	shellPath := os.Getenv("SHELL")
	if shellPath == "" {
		return task.Shadow{}, false
	}
	shellName := filepath.Base(shellPath)
	builtins, ok := shellBuiltins[shellName]
	if !ok {
		return task.Shadow{}, false
	}
	if builtins[name] {
		return task.Shadow{Kind: task.ShadowShellBuiltin, Detail: shellName}, true
	}
	return task.Shadow{}, false
}

func checkPathExecutable(name string) (task.Shadow, bool) {
	path, err := LookPath(name)
	if err != nil {
		return task.Shadow{}, false
	}
	return task.Shadow{Kind: task.ShadowPathExecutable, Detail: path}, true
}
