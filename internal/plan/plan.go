// Package plan expands a parsed Command into the ordered work items the
// scheduler runs.
package plan

import (
	"github.com/Iron-Ham/cook/internal/command"
)

// Depth tells an agent how thorough to be.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// NoStage is the After value of a stage with no predecessor.
const NoStage = -1

// Stage positions a WorkItem in the dependency order. Items sharing an
// Index may run together; a stage becomes eligible only once every item
// of stage After has finished.
type Stage struct {
	Index int
	Group string // parallel group id, empty for a sequential step
	After int    // predecessor stage index, NoStage for none
}

// IsParallel reports whether the stage belongs to a parallel group.
func (s Stage) IsParallel() bool {
	return s.Group != ""
}

// WorkItem is one agent invocation derived from a Command.
type WorkItem struct {
	Agent    string
	Role     AgentRole
	Task     string
	Stage    Stage
	Depth    Depth
	Priority command.Priority
}

// Plan is the output of Builder.Build.
type Plan struct {
	Template string // Name of the template used, empty for a default role set
	Items    []WorkItem
}

// StageCount returns the number of distinct stage indexes in the plan.
func (p Plan) StageCount() int {
	seen := make(map[int]struct{})
	for _, it := range p.Items {
		seen[it.Stage.Index] = struct{}{}
	}
	return len(seen)
}

// Agents returns the agent names in plan order.
func (p Plan) Agents() []string {
	names := make([]string, len(p.Items))
	for i, it := range p.Items {
		names[i] = it.Agent
	}
	return names
}
