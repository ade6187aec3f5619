package cook

import (
	"github.com/Iron-Ham/cook/internal/config"
	"github.com/Iron-Ham/cook/internal/event"
	"github.com/Iron-Ham/cook/internal/logging"
	"github.com/Iron-Ham/cook/internal/plan"
	"github.com/Iron-Ham/cook/internal/templates"
)

// LoadTemplates builds the template provider described by cfg: templates
// from cfg.Dir (when set) layered over the built-ins. When cfg.Watch is on
// the directory is reloaded on change. The returned stop function ends the
// watch and is always non-nil.
func LoadTemplates(cfg config.TemplatesConfig, bus *event.Bus, logger *logging.Logger) (plan.TemplateProvider, func(), error) {
	builtins := templates.Builtins()
	if cfg.Dir == "" {
		return builtins, func() {}, nil
	}

	dir, err := templates.NewDirProvider(cfg.Dir, bus, logger)
	if err != nil {
		return nil, func() {}, err
	}
	if cfg.Watch {
		if err := dir.Watch(); err != nil {
			return nil, func() {}, err
		}
		return templates.Chain{dir, builtins}, dir.Stop, nil
	}
	return templates.Chain{dir, builtins}, func() {}, nil
}
