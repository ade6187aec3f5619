package templates

import "github.com/Iron-Ham/cook/internal/plan"

// builtins never share a name with a request type, so a plain
// "/cook architecture ..." still uses the default role set.
var builtins = []plan.Template{
	{
		Name:        "api-design",
		Description: "Design an API surface, then review it from several angles",
		Sequential: []plan.Step{
			{Agent: "system-architect", Task: "Outline the system boundaries for: [task]"},
			{Agent: "api-designer", Task: "Design endpoints and contracts for: [task]"},
		},
		Parallel: [][]plan.Step{{
			{Agent: "security-reviewer"},
			{Agent: "performance-analyst"},
			{Agent: "api-documenter"},
		}},
	},
	{
		Name:        "full-stack-feature",
		Description: "Model data, build both tiers in parallel, then test and review",
		Sequential: []plan.Step{
			{Agent: "data-modeler"},
		},
		Parallel: [][]plan.Step{
			{{Agent: "backend-engineer"}, {Agent: "frontend-engineer"}, {Agent: "database-engineer"}},
			{{Agent: "test-engineer"}, {Agent: "code-reviewer"}},
		},
	},
	{
		Name:        "test-suite",
		Description: "Plan a test strategy and write every layer of tests",
		Sequential: []plan.Step{
			{Agent: "test-strategist"},
		},
		Parallel: [][]plan.Step{
			{{Agent: "unit-tester"}, {Agent: "integration-tester"}, {Agent: "e2e-tester"}},
			{{Agent: "qa-reviewer"}},
		},
	},
	{
		Name:        "docs-refresh",
		Description: "Rewrite documentation and have it reviewed",
		Parallel: [][]plan.Step{
			{{Agent: "technical-writer"}, {Agent: "api-documenter"}, {Agent: "tutorial-author"}},
			{{Agent: "docs-reviewer"}},
		},
	},
	{
		Name:        "performance-audit",
		Description: "Profile first, then attack hot spots in parallel",
		Sequential: []plan.Step{
			{Agent: "performance-profiler", Task: "Profile and rank the hot paths of: [task]"},
		},
		Parallel: [][]plan.Step{
			{{Agent: "query-optimizer"}, {Agent: "cache-strategist"}, {Agent: "load-tester"}},
		},
	},
}

// Builtins returns a registry of the templates shipped with cook.
func Builtins() *Registry {
	return NewRegistry(builtins...)
}
