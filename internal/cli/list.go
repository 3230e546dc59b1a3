package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dela-run/dela/internal/allowlist"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdList()
		},
	}
}

// cmdList always exits 0 on success, even when no tasks are discovered
// (spec.md §6).
func cmdList() error {
	discovered := discoverTasks()

	store, err := loadStore()
	if err != nil {
		return err
	}

	if len(discovered.Tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks discovered.")
		return nil
	}

	byName := map[string]int{}
	names := make([]string, 0, len(discovered.Tasks))
	for i, t := range discovered.Tasks {
		byName[t.UniqueName()] = i
		names = append(names, t.UniqueName())
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "UNIQUE_NAME\tRUNNER\tFILE\tALLOWED\tDESCRIPTION\n")
	for _, name := range names {
		t := discovered.Tasks[byName[name]]
		allowed := store.IsAllowed(t) == allowlist.Allowed
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", t.UniqueName(), t.Runner, t.FilePath, allowed, t.Description)
	}
	w.Flush()

	if len(discovered.Errors) > 0 {
		fmt.Fprintln(os.Stderr, "\nDiscovery errors:")
		for _, e := range discovered.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
	}

	return nil
}
