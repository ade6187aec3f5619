package cmd

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Iron-Ham/cook/internal/audit"
	"github.com/Iron-Ham/cook/internal/config"
	"github.com/Iron-Ham/cook/internal/cook"
	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/event"
	"github.com/Iron-Ham/cook/internal/logging"
	"github.com/Iron-Ham/cook/internal/scheduler"
	"github.com/Iron-Ham/cook/internal/tui/styles"
)

// app bundles what a command needs to talk to the engine.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	bus      *event.Bus
	cook     *cook.Cook
	recorder *audit.Recorder
	stops    []func()
}

// newApp loads configuration and wires logging, templates, the audit
// trail and the engine. Call close when done.
func newApp(task scheduler.Task) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	a.logger, err = newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	a.bus = event.NewBus(a.logger)

	provider, stop, err := cook.LoadTemplates(cfg.Templates, a.bus, a.logger)
	if err != nil {
		a.close()
		return nil, errors.Wrap(err, "failed to load templates")
	}
	a.stops = append(a.stops, stop)

	if cfg.Audit.Enabled {
		a.recorder, err = audit.Open(cfg.Audit.DBPath, a.logger)
		if err != nil {
			a.close()
			return nil, err
		}
		a.recorder.Attach(a.bus)
	}

	a.cook = cook.New(cfg, task,
		cook.WithBus(a.bus),
		cook.WithLogger(a.logger),
		cook.WithTemplates(provider))
	return a, nil
}

func newLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	if !cfg.Enabled {
		return logging.NopLogger(), nil
	}
	if cfg.Dir == "" {
		// Keep stderr for warnings only so command output stays readable.
		return logging.NewLogger("", logging.LevelWarn)
	}
	return logging.NewLoggerWithRotation(cfg.Dir, cfg.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	})
}

func (a *app) close() {
	for _, stop := range a.stops {
		stop()
	}
	if a.recorder != nil {
		_ = a.recorder.Close()
	}
	_ = a.logger.Close()
}

// isTTY reports whether stdout is a terminal.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// termWidth returns the terminal width, or fallback when unknown.
func termWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

// colorize styles the status values of a rendered report.
func colorize(report string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(report, "\n") {
		if rest, ok := strings.CutPrefix(line, "Status:     "); ok {
			status := strings.TrimRight(rest, "\n")
			name, detail, _ := strings.Cut(status, " ")
			styled := lipgloss.NewStyle().Foreground(styles.StatusColor(name)).Bold(true).Render(name)
			if detail != "" {
				styled += " " + styles.Muted.Render(detail)
			}
			b.WriteString("Status:     " + styled)
			if strings.HasSuffix(line, "\n") {
				b.WriteString("\n")
			}
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}
