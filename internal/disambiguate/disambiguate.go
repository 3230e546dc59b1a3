// Package disambiguate assigns a DisambiguatedName to every task whose bare
// Name collides with another task's, so that lookups by unique name are
// always injective (spec.md §4.5).
package disambiguate

import (
	"fmt"

	"github.com/dela-run/dela/internal/task"
)

// Apply mutates tasks in place, setting DisambiguatedName on every task
// whose Name is not unique across the slice. Non-colliding tasks are left
// with an empty DisambiguatedName.
func Apply(tasks []task.Task) {
	counts := make(map[string]int, len(tasks))
	for _, t := range tasks {
		counts[t.Name]++
	}

	seenSuffix := make(map[string]int)
	for i := range tasks {
		name := tasks[i].Name
		if counts[name] <= 1 {
			continue
		}
		suffix := tasks[i].Runner.ShortSuffix()
		key := name + "-" + suffix
		seenSuffix[key]++
		n := seenSuffix[key]

		if n == 1 {
			tasks[i].DisambiguatedName = key
			continue
		}
		// Same name AND same runner suffix collide again: break the tie
		// with a running integer so uniqueness still holds.
		tasks[i].DisambiguatedName = fmt.Sprintf("%s-%d", key, n)
	}
}
