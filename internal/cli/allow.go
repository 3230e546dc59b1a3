package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dela-run/dela/internal/prompt"
)

func newAllowCommandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allow-command <task>",
		Short: "Prompt for an allowlist scope decision on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := cmdAllowCommand(args[0]); code != ExitOK {
				return &exitError{code: code}
			}
			return nil
		},
	}
}

func cmdAllowCommand(name string) int {
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
		fmt.Fprintf(os.Stderr, "%s denied.\n", t.UniqueName())
		return ExitOK
	}
	fmt.Fprintf(os.Stderr, "%s allowed (%s).\n", t.UniqueName(), d.Scope)
	return ExitOK
}
