package scheduler

import (
	"github.com/Iron-Ham/cook/internal/plan"
	"github.com/Iron-Ham/cook/internal/session"
)

// readyItems returns the indexes, in plan order, of pending items whose
// predecessor stage is drained. A stage is drained when at least one item
// carries it and all such items are terminal, so a missing or circular
// predecessor is never satisfied.
func readyItems(items []session.Item) []int {
	present := make(map[int]bool)
	open := make(map[int]bool)
	for _, it := range items {
		present[it.Stage.Index] = true
		if !it.Status.IsTerminal() {
			open[it.Stage.Index] = true
		}
	}

	var ready []int
	for i, it := range items {
		if it.Status != session.ItemPending {
			continue
		}
		after := it.Stage.After
		if after == plan.NoStage || (present[after] && !open[after]) {
			ready = append(ready, i)
		}
	}
	return ready
}

func pendingAgents(items []session.Item) []string {
	var names []string
	for _, it := range items {
		if it.Status == session.ItemPending {
			names = append(names, it.Agent)
		}
	}
	return names
}
