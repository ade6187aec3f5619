package cook

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Iron-Ham/cook/internal/plan"
)

// SimulatedTask stands in for real agents: it waits for Delay (longer for
// deep items, shorter for quick ones) and returns a canned result. Agents
// listed in Fail always fail.
type SimulatedTask struct {
	Delay time.Duration
	Fail  []string
}

// Execute implements scheduler.Task.
func (t SimulatedTask) Execute(ctx context.Context, item plan.WorkItem) (string, error) {
	d := t.Delay
	switch item.Depth {
	case plan.DepthQuick:
		d /= 2
	case plan.DepthDeep:
		d *= 2
	}

	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if slices.Contains(t.Fail, item.Agent) {
		return "", fmt.Errorf("%s: simulated failure", item.Agent)
	}
	return fmt.Sprintf("%s finished a %s pass (%s priority): %s",
		item.Agent, item.Depth, priorityOrDefault(string(item.Priority)), strings.TrimSpace(item.Task)), nil
}

func priorityOrDefault(p string) string {
	if p == "" {
		return "medium"
	}
	return p
}
