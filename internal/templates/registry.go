// Package templates provides plan.TemplateProvider implementations.
//
// A Registry holds an in-memory set of templates keyed by lower-cased name.
// Builtins returns the templates compiled into the binary, DirProvider loads
// YAML files from a directory (optionally reloading them when the directory
// changes), and Chain consults several providers in order.
package templates

import (
	"sort"
	"strings"
	"sync"

	"github.com/Iron-Ham/cook/internal/plan"
)

// Lister is implemented by providers that can enumerate their templates.
type Lister interface {
	Names() []string
}

// Registry is a concurrency-safe set of templates.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]plan.Template
}

// NewRegistry returns a registry holding the given templates. Later entries
// replace earlier ones with the same name.
func NewRegistry(tmpls ...plan.Template) *Registry {
	r := &Registry{templates: make(map[string]plan.Template, len(tmpls))}
	for _, t := range tmpls {
		r.templates[key(t.Name)] = t
	}
	return r
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve implements plan.TemplateProvider. Names are matched
// case-insensitively.
func (r *Registry) Resolve(name string) (plan.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[key(name)]
	return t, ok
}

// Add registers t, replacing any template with the same name. The template
// is validated first.
func (r *Registry) Add(t plan.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[key(t.Name)] = t
	return nil
}

// Replace swaps the whole set atomically.
func (r *Registry) Replace(tmpls []plan.Template) {
	next := make(map[string]plan.Template, len(tmpls))
	for _, t := range tmpls {
		next[key(t.Name)] = t
	}
	r.mu.Lock()
	r.templates = next
	r.mu.Unlock()
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for _, t := range r.templates {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}
