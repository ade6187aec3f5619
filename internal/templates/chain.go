package templates

import (
	"sort"

	"github.com/Iron-Ham/cook/internal/plan"
)

// Chain resolves templates from several providers, first match wins.
type Chain []plan.TemplateProvider

// Resolve implements plan.TemplateProvider.
func (c Chain) Resolve(name string) (plan.Template, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if t, ok := p.Resolve(name); ok {
			return t, true
		}
	}
	return plan.Template{}, false
}

// Names returns the union of names from providers that implement Lister.
func (c Chain) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range c {
		l, ok := p.(Lister)
		if !ok {
			continue
		}
		for _, n := range l.Names() {
			if !seen[key(n)] {
				seen[key(n)] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}
