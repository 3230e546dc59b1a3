package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dela-run/dela/internal/command"
)

func newGetCommandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-command <task>",
		Short: "Emit the literal shell command for a task, for shell integration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := cmdGetCommand(args[0]); code != ExitOK {
				return &exitError{code: code}
			}
			return nil
		},
	}
}

func cmdGetCommand(name string) int {
	discovered := discoverTasks()

	t, code, err := resolve(discovered, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return code
	}

	cmdStr, err := command.For(t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitRunnerMissing
	}

	fmt.Println(cmdStr)
	return ExitOK
}
