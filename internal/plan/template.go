package plan

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/cook/internal/errors"
)

// Step is one agent invocation in a Template.
type Step struct {
	Agent string `yaml:"agent"`
	Task  string `yaml:"task"`
}

// Template is a named outline of sequential steps followed by parallel
// groups. Task texts may contain TaskPlaceholder.
type Template struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Sequential  []Step   `yaml:"sequential,omitempty"`
	Parallel    [][]Step `yaml:"parallel,omitempty"`
}

// TemplateProvider resolves a template by name or request type.
type TemplateProvider interface {
	Resolve(name string) (Template, bool)
}

// StepCount returns the total number of steps across all sections.
func (t Template) StepCount() int {
	n := len(t.Sequential)
	for _, g := range t.Parallel {
		n += len(g)
	}
	return n
}

// Validate checks that the template is usable. It reports the first problem.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.NewValidationError("template has no name").WithField("name")
	}
	if t.StepCount() == 0 {
		return errors.NewValidationError("template has no steps").WithField("name").WithValue(t.Name).
			WithCause(errors.ErrEmptyTemplate)
	}
	for i, s := range t.Sequential {
		if strings.TrimSpace(s.Agent) == "" {
			return errors.NewValidationError("step has no agent").WithField(fmt.Sprintf("sequential[%d].agent", i))
		}
	}
	for g, group := range t.Parallel {
		for i, s := range group {
			if strings.TrimSpace(s.Agent) == "" {
				return errors.NewValidationError("step has no agent").
					WithField(fmt.Sprintf("parallel[%d][%d].agent", g, i))
			}
		}
	}
	return nil
}

// ProviderFunc adapts a function to TemplateProvider.
type ProviderFunc func(name string) (Template, bool)

// Resolve calls f.
func (f ProviderFunc) Resolve(name string) (Template, bool) {
	return f(name)
}
