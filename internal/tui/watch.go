// Package tui renders a live view of one running session for
// "cook run --watch".
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/event"
	"github.com/Iron-Ham/cook/internal/session"
	"github.com/Iron-Ham/cook/internal/tui/styles"
)

const (
	defaultWidth = 80
	maxBarWidth  = 60
	logLines     = 8
)

// progressMsg delivers a scheduler progress event to the model.
type progressMsg event.SessionProgressEvent

// finishedMsg delivers the session's completion event.
type finishedMsg event.SessionFinishedEvent

// Model is the bubbletea model of the watch view.
type Model struct {
	sessionID string
	command   string

	progress progress.Model
	spinner  spinner.Model
	percent  int
	status   session.Status
	agents   string
	lines    []string
	width    int

	cancel          func() bool
	cancelRequested bool
	done            bool
}

// NewModel creates a model seeded from snap. cancel, when non-nil, is
// invoked by the "c" key.
func NewModel(snap session.Snapshot, cancel func() bool) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Primary))
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth))

	m := Model{
		sessionID: snap.ID,
		command:   snap.Command.Raw,
		progress:  bar,
		spinner:   sp,
		percent:   snap.Progress,
		status:    snap.Status,
		width:     defaultWidth,
		cancel:    cancel,
		done:      snap.Status.IsTerminal(),
	}
	for _, e := range snap.LogTail(logLines) {
		m.lines = append(m.lines, e.Message)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.done {
		return tea.Quit
	}
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "c":
			if m.cancel != nil && !m.cancelRequested && !m.done {
				m.cancelRequested = m.cancel()
				if m.cancelRequested {
					m.addLine("cancel requested; waiting for the current round")
				}
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(min(msg.Width-4, maxBarWidth), 10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		if msg.SessionID != m.sessionID {
			return m, nil
		}
		m.percent = max(m.percent, msg.ProgressPercent)
		m.status = session.Status(msg.Status)
		if msg.CurrentAgent != "" {
			m.agents = msg.CurrentAgent
		}
		m.addLine(msg.Message)
		if m.status.IsTerminal() {
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case finishedMsg:
		if msg.SessionID != m.sessionID {
			return m, nil
		}
		m.status = session.Status(msg.Status)
		m.done = true
		if m.status == session.StatusCompleted {
			m.percent = 100
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) addLine(s string) {
	if s == "" {
		return
	}
	m.lines = append(m.lines, s)
	if len(m.lines) > logLines {
		m.lines = m.lines[len(m.lines)-logLines:]
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	indicator := m.spinner.View()
	if m.done {
		indicator = styles.StatusIcon(string(m.status))
	}
	b.WriteString(styles.Title.Render("cook") + " " + styles.Muted.Render(m.sessionID) + "\n")
	if m.command != "" {
		b.WriteString(styles.Subtitle.Render(styles.Fit(m.command, m.width)) + "\n")
	}
	b.WriteString("\n")

	status := lipgloss.NewStyle().Foreground(styles.StatusColor(string(m.status))).Render(string(m.status))
	fmt.Fprintf(&b, "%s %s  %d%%\n", indicator, status, m.percent)
	b.WriteString(m.progress.ViewAs(float64(m.percent)/100) + "\n\n")

	if m.agents != "" && !m.done {
		b.WriteString(styles.Label.Render("Agents") + styles.Fit(m.agents, m.width-11) + "\n\n")
	}

	if len(m.lines) > 0 {
		lines := make([]string, len(m.lines))
		for i, l := range m.lines {
			lines[i] = styles.Fit(l, m.width-4)
		}
		b.WriteString(styles.Box.Render(strings.Join(lines, "\n")) + "\n")
	}

	if !m.done {
		b.WriteString(styles.Help.Render("c cancel session • q leave view (session keeps running)"))
		b.WriteString("\n")
	}
	return b.String()
}

// Done reports whether the session reached a terminal status.
func (m Model) Done() bool {
	return m.done
}

// Run shows the watch view for sess until it finishes or the user leaves.
// Events are taken from bus; cancel is bound to the "c" key.
func Run(ctx context.Context, bus *event.Bus, sess *session.Session, cancel func() bool, opts ...tea.ProgramOption) error {
	id := sess.ID()
	ready := make(chan struct{})
	var p *tea.Program

	forward := func(msg tea.Msg) {
		<-ready
		p.Send(msg)
	}
	progressSub := bus.Subscribe(event.TypeSessionProgress, func(e event.Event) {
		if ev, ok := e.(event.SessionProgressEvent); ok && ev.SessionID == id {
			forward(progressMsg(ev))
		}
	})
	finishedSub := bus.Subscribe(event.TypeSessionFinished, func(e event.Event) {
		if ev, ok := e.(event.SessionFinishedEvent); ok && ev.SessionID == id {
			forward(finishedMsg(ev))
		}
	})
	defer bus.Unsubscribe(progressSub)
	defer bus.Unsubscribe(finishedSub)

	// Snapshot after subscribing so a terminal transition is never missed.
	model := NewModel(sess.Snapshot(), cancel)
	p = tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	close(ready)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("watch view: %w", err)
	}
	return nil
}
