package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/dela-run/dela/internal/allowlist"
	"github.com/dela-run/dela/internal/command"
	"github.com/dela-run/dela/internal/prompt"
)

// exitCodeFromRunError extracts the child process's own exit code so run
// propagates it verbatim, per spec.md §6 ("nonzero = command's own exit").
func exitCodeFromRunError(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "run <task> [args...]",
		Short:              "Resolve, allowlist-gate, and execute a task",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(os.Stderr, "Usage: dela run <task> [args...]")
				return &exitError{code: ExitGeneric}
			}
			if code := cmdRun(args[0], args[1:]); code != ExitOK {
				return &exitError{code: code}
			}
			return nil
		},
	}
}

func cmdRun(name string, extraArgs []string) int {
	discovered := discoverTasks()

	t, code, err := resolve(discovered, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return code
	}

	store, err := loadStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneric
	}

	decision := store.IsAllowed(t)
	if decision == allowlist.Denied {
		fmt.Fprintf(os.Stderr, "Error: task %q is denied by the allowlist\n", t.UniqueName())
		return ExitDenied
	}
	if decision == allowlist.Undecided {
		d, err := prompt.ForTask(os.Stdin, os.Stderr, t)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitGeneric
		}
		if err := prompt.Apply(store, t, d); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitGeneric
		}
		if !d.Allow {
			return ExitDenied
		}
	}

	cmdStr, err := command.For(t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitRunnerMissing
	}
	cmdStr = command.WithArgs(cmdStr, extraArgs)

	if err := command.Run(cmdStr, command.RunOptions{Cwd: globalCwd}); err != nil {
		if exitCode, ok := exitCodeFromRunError(err); ok {
			return exitCode
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneric
	}
	return ExitOK
}
