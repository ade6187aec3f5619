package plan

import "github.com/Iron-Ham/cook/internal/command"

// AgentRole is the closed set of built-in agent capabilities. Agent names
// outside this set resolve to RoleCustom.
type AgentRole int

const (
	RoleCustom AgentRole = iota

	// architecture
	RoleSystemArchitect
	RoleAPIDesigner
	RoleDataModeler
	RoleSecurityReviewer
	RolePerformanceAnalyst

	// implementation
	RoleBackendEngineer
	RoleFrontendEngineer
	RoleDatabaseEngineer
	RoleTestEngineer
	RoleCodeReviewer

	// testing
	RoleTestStrategist
	RoleUnitTester
	RoleIntegrationTester
	RoleE2ETester
	RoleQAReviewer

	// documentation
	RoleTechnicalWriter
	RoleAPIDocumenter
	RoleTutorialAuthor
	RoleDiagramDesigner
	RoleDocsReviewer

	// optimization
	RolePerformanceProfiler
	RoleQueryOptimizer
	RoleCacheStrategist
	RoleLoadTester
	RoleOptimizationReviewer

	// custom request fallback
	RoleGeneralist
	RoleResearcher
	RoleReviewer
)

type roleInfo struct {
	name string
	task string
}

// TaskPlaceholder is replaced by the command's task description.
const TaskPlaceholder = "[task]"

var roles = map[AgentRole]roleInfo{
	RoleCustom: {"custom", "Apply your expertise to: [task]"},

	RoleSystemArchitect:    {"system-architect", "Design the overall system architecture for: [task]"},
	RoleAPIDesigner:        {"api-designer", "Design the API surface and contracts for: [task]"},
	RoleDataModeler:        {"data-modeler", "Model the data entities and relationships for: [task]"},
	RoleSecurityReviewer:   {"security-reviewer", "Identify security risks and mitigations for: [task]"},
	RolePerformanceAnalyst: {"performance-analyst", "Assess scalability and performance characteristics of: [task]"},

	RoleBackendEngineer:  {"backend-engineer", "Implement the server-side logic for: [task]"},
	RoleFrontendEngineer: {"frontend-engineer", "Implement the user-facing components for: [task]"},
	RoleDatabaseEngineer: {"database-engineer", "Implement schema and data access for: [task]"},
	RoleTestEngineer:     {"test-engineer", "Write tests covering the implementation of: [task]"},
	RoleCodeReviewer:     {"code-reviewer", "Review the implementation of: [task]"},

	RoleTestStrategist:    {"test-strategist", "Define the test strategy for: [task]"},
	RoleUnitTester:        {"unit-tester", "Write unit tests for: [task]"},
	RoleIntegrationTester: {"integration-tester", "Write integration tests for: [task]"},
	RoleE2ETester:         {"e2e-tester", "Write end-to-end scenarios for: [task]"},
	RoleQAReviewer:        {"qa-reviewer", "Review test coverage and quality for: [task]"},

	RoleTechnicalWriter: {"technical-writer", "Write the technical documentation for: [task]"},
	RoleAPIDocumenter:   {"api-documenter", "Document the API reference for: [task]"},
	RoleTutorialAuthor:  {"tutorial-author", "Write a getting-started tutorial for: [task]"},
	RoleDiagramDesigner: {"diagram-designer", "Produce architecture and flow diagrams for: [task]"},
	RoleDocsReviewer:    {"docs-reviewer", "Review documentation accuracy for: [task]"},

	RolePerformanceProfiler:  {"performance-profiler", "Profile hot paths in: [task]"},
	RoleQueryOptimizer:       {"query-optimizer", "Optimize data queries in: [task]"},
	RoleCacheStrategist:      {"cache-strategist", "Design a caching strategy for: [task]"},
	RoleLoadTester:           {"load-tester", "Load test and report limits of: [task]"},
	RoleOptimizationReviewer: {"optimization-reviewer", "Review proposed optimizations for: [task]"},

	RoleGeneralist: {"generalist", "Work on: [task]"},
	RoleResearcher: {"researcher", "Research prior art and constraints for: [task]"},
	RoleReviewer:   {"reviewer", "Review the outcome of: [task]"},
}

var rolesByName = func() map[string]AgentRole {
	m := make(map[string]AgentRole, len(roles))
	for r, info := range roles {
		if r != RoleCustom {
			m[info.name] = r
		}
	}
	return m
}()

// RoleFor returns the built-in role named name, or RoleCustom.
func RoleFor(name string) AgentRole {
	if r, ok := rolesByName[name]; ok {
		return r
	}
	return RoleCustom
}

// String returns the role's agent name.
func (r AgentRole) String() string {
	if info, ok := roles[r]; ok {
		return info.name
	}
	return roles[RoleCustom].name
}

// TaskText returns the role's task text with TaskPlaceholder unexpanded.
func (r AgentRole) TaskText() string {
	if info, ok := roles[r]; ok {
		return info.task
	}
	return roles[RoleCustom].task
}

// IsBuiltin reports whether r is one of the named built-in roles.
func (r AgentRole) IsBuiltin() bool {
	_, ok := roles[r]
	return ok && r != RoleCustom
}

var defaultRoles = map[command.RequestType][]AgentRole{
	command.RequestArchitecture: {
		RoleSystemArchitect, RoleAPIDesigner, RoleDataModeler, RoleSecurityReviewer, RolePerformanceAnalyst,
	},
	command.RequestImplementation: {
		RoleBackendEngineer, RoleFrontendEngineer, RoleDatabaseEngineer, RoleTestEngineer, RoleCodeReviewer,
	},
	command.RequestTesting: {
		RoleTestStrategist, RoleUnitTester, RoleIntegrationTester, RoleE2ETester, RoleQAReviewer,
	},
	command.RequestDocumentation: {
		RoleTechnicalWriter, RoleAPIDocumenter, RoleTutorialAuthor, RoleDiagramDesigner, RoleDocsReviewer,
	},
	command.RequestOptimization: {
		RolePerformanceProfiler, RoleQueryOptimizer, RoleCacheStrategist, RoleLoadTester, RoleOptimizationReviewer,
	},
	command.RequestCustom: {
		RoleGeneralist, RoleResearcher, RoleReviewer,
	},
}

// DefaultRoles returns the built-in role set for a request type. Unknown
// types get the custom set.
func DefaultRoles(rt command.RequestType) []AgentRole {
	set, ok := defaultRoles[rt]
	if !ok {
		set = defaultRoles[command.RequestCustom]
	}
	out := make([]AgentRole, len(set))
	copy(out, set)
	return out
}
