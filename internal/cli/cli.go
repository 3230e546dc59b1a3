// Package cli wires the dela command tree: list, run, allow-command,
// get-command, and mcp. Resolution errors map to dedicated exit codes the
// way the teacher's exitError sentinel carries a code out of RunE without
// calling os.Exit directly mid-command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dela-run/dela/internal/allowlist"
	"github.com/dela-run/dela/internal/discovery"
	"github.com/dela-run/dela/internal/job"
	"github.com/dela-run/dela/internal/mcpserver"
	"github.com/dela-run/dela/internal/task"
)

// Exit codes for run's resolution taxonomy (spec.md §6, §7).
const (
	ExitOK            = 0
	ExitGeneric       = 1
	ExitNotFound      = 2
	ExitAmbiguous     = 3
	ExitRunnerMissing = 4
	ExitDenied        = 5
)

// exitError carries a specific process exit code out of a RunE function.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

var globalCwd string

// newRootCmd builds the full command tree. Separated from Execute so tests
// can construct a fresh command per case.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dela",
		Short:         "Discover and run project tasks across build-file formats",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&globalCwd, "cwd", ".", "Project directory to discover tasks from")

	root.AddCommand(newListCmd(), newRunCmd(), newAllowCommandCmd(), newGetCommandCmd(), newMCPCmd())
	return root
}

// Execute runs the dela command tree and translates exitError into a
// process exit code.
func Execute() {
	globalCwd = "."

	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		var exitErr *exitError
		if as(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneric)
	}
}

func as(err error, target **exitError) bool {
	if e, ok := err.(*exitError); ok {
		*target = e
		return true
	}
	return false
}

// resolve finds the single task matching name (unique_name first, then
// bare name). It returns ExitNotFound when nothing matches and
// ExitAmbiguous when the bare name still collides after disambiguation.
func resolve(discovered task.DiscoveredTasks, name string) (task.Task, int, error) {
	if t, ok := discovered.ByUniqueName(name); ok {
		return t, ExitOK, nil
	}
	matches := discovered.ByName(name)
	switch len(matches) {
	case 0:
		return task.Task{}, ExitNotFound, fmt.Errorf("task not found: %s", name)
	case 1:
		return matches[0], ExitOK, nil
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.UniqueName())
		}
		return task.Task{}, ExitAmbiguous, fmt.Errorf("ambiguous task name %q; candidates: %v", name, names)
	}
}

func loadStore() (*allowlist.Store, error) {
	return allowlist.Load()
}

func discoverTasks() task.DiscoveredTasks {
	return discovery.DiscoverAndDisambiguate(globalCwd)
}

// sharedJobManager backs the mcp subcommand; run executes tasks
// synchronously via command.Run and get-command only prints the command,
// so neither goes through the job registry.
func sharedJobManager() *job.Manager {
	return job.NewManager(job.LoadConfig())
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp [cwd]",
		Short: "Launch the MCP stdio server rooted at cwd (default .)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd := "."
			if len(args) == 1 {
				cwd = args[0]
			}

			store, err := loadStore()
			if err != nil {
				return err
			}

			srv := mcpserver.New(cwd, store, sharedJobManager())
			return srv.Serve()
		},
	}
}
