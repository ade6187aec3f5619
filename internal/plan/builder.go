package plan

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/cook/internal/command"
	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/logging"
)

// defaultGroup is the group id shared by every item of a default role plan.
const defaultGroup = "default"

// Builder turns Commands into Plans. It is safe for concurrent use as long
// as its TemplateProvider is.
type Builder struct {
	templates TemplateProvider
	logger    *logging.Logger
}

// NewBuilder returns a Builder. templates may be nil, in which case only
// default role sets and --agents are available.
func NewBuilder(templates TemplateProvider, logger *logging.Logger) *Builder {
	return &Builder{
		templates: templates,
		logger:    logging.OrNop(logger),
	}
}

// Build expands cmd into a Plan. Template selection, in order: an explicit
// --template, an explicit --agents list, a template registered under the
// request type, then the request type's default roles.
func (b *Builder) Build(cmd command.Command) (Plan, error) {
	if cmd.IsHelp() || cmd.IsList() {
		return Plan{}, errors.NewPlanError("help and list commands have no plan", errors.ErrInvalidInput)
	}

	if name := cmd.Options.Template; name != "" {
		tmpl, ok := b.resolve(name)
		if !ok {
			return Plan{}, errors.NewPlanError("cannot build plan", errors.ErrTemplateNotFound).
				WithRequestType(string(cmd.RequestType)).
				WithTemplate(name)
		}
		return b.fromTemplate(cmd, tmpl)
	}

	if len(cmd.Options.Agents) > 0 {
		roles := make([]string, len(cmd.Options.Agents))
		copy(roles, cmd.Options.Agents)
		return b.fromAgents(cmd, roles), nil
	}

	if tmpl, ok := b.resolve(string(cmd.RequestType)); ok {
		return b.fromTemplate(cmd, tmpl)
	}

	if cmd.Options.Team == command.TeamCustom {
		return Plan{}, errors.NewPlanError("team custom requires --agents", errors.ErrNoAgents).
			WithRequestType(string(cmd.RequestType))
	}

	// The team size never trims the default set; only custom changes it.
	defaults := DefaultRoles(cmd.RequestType)
	names := make([]string, len(defaults))
	for i, r := range defaults {
		names[i] = r.String()
	}
	return b.fromAgents(cmd, names), nil
}

func (b *Builder) resolve(name string) (Template, bool) {
	if b.templates == nil {
		return Template{}, false
	}
	return b.templates.Resolve(name)
}

// fromAgents builds a single fully parallel stage.
func (b *Builder) fromAgents(cmd command.Command, agents []string) Plan {
	stage := Stage{Index: 0, Group: defaultGroup, After: NoStage}
	items := make([]WorkItem, 0, len(agents))
	for _, name := range agents {
		role := RoleFor(name)
		items = append(items, b.item(cmd, name, role, role.TaskText(), stage))
	}

	b.logger.Debug("built default plan",
		"request_type", string(cmd.RequestType),
		"agents", strings.Join(agents, ","))
	return Plan{Items: items}
}

// fromTemplate emits sequential steps with increasing stage indexes, then
// each parallel group at the next index. With --parallel every step shares
// one stage.
func (b *Builder) fromTemplate(cmd command.Command, tmpl Template) (Plan, error) {
	if tmpl.StepCount() == 0 {
		return Plan{}, errors.NewPlanError("template has no steps", errors.ErrEmptyTemplate).
			WithRequestType(string(cmd.RequestType)).
			WithTemplate(tmpl.Name)
	}

	var items []WorkItem
	next := 0
	add := func(step Step, stage Stage) {
		role := RoleFor(step.Agent)
		task := step.Task
		if strings.TrimSpace(task) == "" {
			task = role.TaskText()
		}
		items = append(items, b.item(cmd, step.Agent, role, task, stage))
	}

	if cmd.Options.Parallel {
		stage := Stage{Index: 0, Group: "parallel-1", After: NoStage}
		for _, s := range tmpl.Sequential {
			add(s, stage)
		}
		for _, g := range tmpl.Parallel {
			for _, s := range g {
				add(s, stage)
			}
		}
	} else {
		for _, s := range tmpl.Sequential {
			add(s, Stage{Index: next, After: next - 1})
			next++
		}
		group := 0
		for _, g := range tmpl.Parallel {
			if len(g) == 0 {
				continue
			}
			group++
			stage := Stage{Index: next, Group: fmt.Sprintf("parallel-%d", group), After: next - 1}
			for _, s := range g {
				add(s, stage)
			}
			next++
		}
	}

	b.logger.Debug("built template plan",
		"request_type", string(cmd.RequestType),
		"template", tmpl.Name,
		"items", len(items))
	return Plan{Template: tmpl.Name, Items: items}, nil
}

func (b *Builder) item(cmd command.Command, agent string, role AgentRole, task string, stage Stage) WorkItem {
	return WorkItem{
		Agent:    agent,
		Role:     role,
		Task:     strings.ReplaceAll(task, TaskPlaceholder, cmd.TaskDescription),
		Stage:    stage,
		Depth:    depthOf(cmd.Options),
		Priority: cmd.Options.Priority,
	}
}

// depthOf maps --quick / --deep; --deep wins when both are given.
func depthOf(o command.Options) Depth {
	switch {
	case o.Deep:
		return DepthDeep
	case o.Quick:
		return DepthQuick
	default:
		return DepthStandard
	}
}
