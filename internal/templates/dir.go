package templates

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/cook/internal/event"
	"github.com/Iron-Ham/cook/internal/logging"
	"github.com/Iron-Ham/cook/internal/plan"
)

// DefaultDebounce is how long the watcher waits for a burst of filesystem
// events to settle before reloading.
const DefaultDebounce = 100 * time.Millisecond

// DirProvider serves templates loaded from a directory. After Watch it
// reloads whenever a YAML file there is written, created, renamed or
// removed. A failed reload keeps the previous set.
type DirProvider struct {
	dir      string
	registry *Registry
	bus      *event.Bus
	logger   *logging.Logger
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewDirProvider loads dir and returns a provider for it. bus may be nil.
func NewDirProvider(dir string, bus *event.Bus, logger *logging.Logger) (*DirProvider, error) {
	tmpls, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	d := &DirProvider{
		dir:      dir,
		registry: NewRegistry(tmpls...),
		bus:      bus,
		logger:   logging.OrNop(logger).With("templates_dir", dir),
		debounce: DefaultDebounce,
	}
	d.logger.Info("templates loaded", "count", len(tmpls))
	return d, nil
}

// Dir returns the watched directory.
func (d *DirProvider) Dir() string {
	return d.dir
}

// Resolve implements plan.TemplateProvider.
func (d *DirProvider) Resolve(name string) (plan.Template, bool) {
	return d.registry.Resolve(name)
}

// Names implements Lister.
func (d *DirProvider) Names() []string {
	return d.registry.Names()
}

// Reload re-reads the directory and publishes a TemplatesReloadedEvent.
func (d *DirProvider) Reload() error {
	tmpls, err := LoadDir(d.dir)
	if err != nil {
		d.logger.Warn("template reload failed, keeping previous set", "error", err.Error())
		d.publish(nil, err)
		return err
	}
	d.registry.Replace(tmpls)
	d.logger.Info("templates reloaded", "count", len(tmpls))
	d.publish(d.registry.Names(), nil)
	return nil
}

func (d *DirProvider) publish(names []string, err error) {
	if d.bus == nil {
		return
	}
	d.bus.Publish(event.NewTemplatesReloadedEvent(d.dir, names, err))
}

// Watch starts reloading on filesystem changes. It is an error to call
// Watch twice without Stop.
func (d *DirProvider) Watch() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.watcher != nil {
		return fmt.Errorf("already watching %s", d.dir)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(d.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", d.dir, err)
	}

	d.watcher = w
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	go d.watchLoop(w, d.stopCh, d.doneCh)
	return nil
}

// Stop ends watching and waits for the watch loop to exit. Safe to call
// when not watching.
func (d *DirProvider) Stop() {
	d.mu.Lock()
	w, stopCh, doneCh := d.watcher, d.stopCh, d.doneCh
	d.watcher = nil
	d.mu.Unlock()

	if w == nil {
		return
	}
	close(stopCh)
	_ = w.Close()
	<-doneCh
}

func (d *DirProvider) watchLoop(w *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	// Editors often emit several events for one save.
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C
	defer debounceTimer.Stop()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-stopCh:
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&relevant == 0 || !isTemplateFile(filepath.Base(ev.Name)) {
				continue
			}
			d.logger.Debug("template change detected", "file", ev.Name, "op", ev.Op.String())
			debounceTimer.Reset(d.debounce)

		case <-debounceTimer.C:
			_ = d.Reload()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			d.logger.Warn("template watcher error", "error", err.Error())
		}
	}
}
