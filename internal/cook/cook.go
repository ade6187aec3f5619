// Package cook is the entry point to the /cook engine. It parses a raw
// command, builds its execution plan, runs the plan on the scheduler and
// renders a report once the session reaches a terminal status.
package cook

import (
	"context"
	"sync"

	"github.com/Iron-Ham/cook/internal/command"
	"github.com/Iron-Ham/cook/internal/config"
	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/event"
	"github.com/Iron-Ham/cook/internal/logging"
	"github.com/Iron-Ham/cook/internal/plan"
	"github.com/Iron-Ham/cook/internal/report"
	"github.com/Iron-Ham/cook/internal/scheduler"
	"github.com/Iron-Ham/cook/internal/session"
	"github.com/Iron-Ham/cook/internal/templates"
)

// Cook wires the parser, plan builder, scheduler and session store
// together. It is safe for concurrent use.
type Cook struct {
	cfg       *config.Config
	parser    *command.Parser
	templates plan.TemplateProvider
	builder   *plan.Builder
	scheduler *scheduler.Scheduler
	store     *session.Store
	bus       *event.Bus
	logger    *logging.Logger
	sinks     []scheduler.ProgressSink

	// finished holds one channel per started session, closed after the
	// SessionFinishedEvent for it has been published.
	mu       sync.Mutex
	finished map[string]chan struct{}
}

// Option configures a Cook.
type Option func(*Cook)

// WithTemplates sets the template provider. The default is the built-in
// registry.
func WithTemplates(p plan.TemplateProvider) Option {
	return func(c *Cook) { c.templates = p }
}

// WithBus sets the event bus sessions publish to.
func WithBus(bus *event.Bus) Option {
	return func(c *Cook) { c.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Cook) { c.logger = l }
}

// WithStore sets the session store.
func WithStore(st *session.Store) Option {
	return func(c *Cook) { c.store = st }
}

// WithSinks adds progress sinks next to the bus.
func WithSinks(sinks ...scheduler.ProgressSink) Option {
	return func(c *Cook) { c.sinks = append(c.sinks, sinks...) }
}

// New creates a Cook executing work items with task. A nil cfg uses
// config.Default().
func New(cfg *config.Config, task scheduler.Task, opts ...Option) *Cook {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Cook{
		cfg:      cfg,
		finished: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = logging.OrNop(c.logger)
	if c.bus == nil {
		c.bus = event.NewBus(c.logger)
	}
	if c.templates == nil {
		c.templates = templates.Builtins()
	}
	if c.store == nil {
		c.store = session.NewStore(cfg.Sessions.TTL, cfg.Sessions.MaxSessions, c.logger)
	}

	c.parser = command.NewParser(cfg.Command.Prefix)
	c.builder = plan.NewBuilder(c.templates, c.logger)
	sinks := append([]scheduler.ProgressSink{event.NewBusSink(c.bus)}, c.sinks...)
	c.scheduler = scheduler.New(task, cfg.Scheduler, c.logger, sinks...)
	return c
}

// Bus returns the event bus sessions publish to.
func (c *Cook) Bus() *event.Bus { return c.bus }

// Scheduler returns the underlying scheduler.
func (c *Cook) Scheduler() *scheduler.Scheduler { return c.scheduler }

// Templates returns the template provider in use.
func (c *Cook) Templates() plan.TemplateProvider { return c.templates }

// Parse parses input with the configured prefix.
func (c *Cook) Parse(input string) (command.Command, error) {
	return c.parser.Parse(input)
}

// Plan parses input and builds its plan without running anything.
func (c *Cook) Plan(input string) (command.Command, plan.Plan, error) {
	cmd, err := c.parser.Parse(input)
	if err != nil {
		return cmd, plan.Plan{}, err
	}
	p, err := c.builder.Build(cmd)
	return cmd, p, err
}

// Result is the outcome of Execute. Help and list commands carry only
// Command and Report.
type Result struct {
	Command  command.Command
	Snapshot session.Snapshot
	Report   string
}

// Failed reports whether the session ended in a status other than
// completed. Item failures inside a completed session do not count.
func (r *Result) Failed() bool {
	return r.Snapshot.Status != "" && r.Snapshot.Status != session.StatusCompleted
}

// Execute runs input to completion and returns its report. Parse and plan
// errors are returned directly; a session that fails or deadlocks still
// yields a Result, with the session error on Snapshot.Err.
//
// Cancelling ctx cancels the session cooperatively: the running round
// finishes and no further rounds start.
func (c *Cook) Execute(ctx context.Context, input string) (*Result, error) {
	cmd, err := c.parser.Parse(input)
	if err != nil {
		return nil, err
	}
	switch {
	case cmd.IsHelp():
		return &Result{Command: cmd, Report: c.HelpText()}, nil
	case cmd.IsList():
		return &Result{Command: cmd, Report: c.ListText()}, nil
	}

	sess, err := c.prepare(cmd)
	if err != nil {
		return nil, err
	}
	c.run(ctx, sess)

	snap := sess.Snapshot()
	text, err := c.Report(snap, "")
	if err != nil {
		return nil, err
	}
	return &Result{Command: cmd, Snapshot: snap, Report: text}, nil
}

// Start parses input, builds its plan and runs it in the background. Use
// Wait to block until it finishes. Help and list are rejected; use Execute
// for those.
func (c *Cook) Start(ctx context.Context, input string) (*session.Session, error) {
	cmd, err := c.parser.Parse(input)
	if err != nil {
		return nil, err
	}
	if cmd.IsHelp() || cmd.IsList() {
		return nil, errors.NewValidationError("help and list run synchronously; use Execute").
			WithField("input").WithValue(cmd.Raw)
	}
	sess, err := c.prepare(cmd)
	if err != nil {
		return nil, err
	}
	if err := c.scheduler.Start(ctx, sess); err != nil {
		return nil, err
	}
	go func() {
		<-sess.Done()
		c.publishFinished(sess)
	}()
	return sess, nil
}

func (c *Cook) prepare(cmd command.Command) (*session.Session, error) {
	p, err := c.builder.Build(cmd)
	if err != nil {
		return nil, err
	}

	sess := session.New(cmd, p)
	c.store.Put(sess)
	c.mu.Lock()
	c.finished[sess.ID()] = make(chan struct{})
	c.mu.Unlock()

	c.logger.WithSession(sess.ID()).Info("session created",
		"request_type", string(cmd.RequestType),
		"template", p.Template,
		"items", len(p.Items),
		"stages", p.StageCount())
	c.bus.Publish(event.NewSessionStartedEvent(sess.ID(), cmd.Raw, string(cmd.RequestType), p.Template, len(p.Items)))
	return sess, nil
}

// run executes sess synchronously. A deadlock is also recorded on the
// session and shows up in its report.
func (c *Cook) run(ctx context.Context, sess *session.Session) {
	if err := c.scheduler.Run(ctx, sess); err != nil {
		c.logger.WithSession(sess.ID()).Error("session failed",
			"error", err.Error(),
			"severity", errors.GetSeverity(err).String())
	}
	c.publishFinished(sess)
}

func (c *Cook) publishFinished(sess *session.Session) {
	c.bus.Publish(event.NewSessionFinishedEvent(sess.Snapshot()))

	c.mu.Lock()
	ch, ok := c.finished[sess.ID()]
	delete(c.finished, sess.ID())
	c.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Wait blocks until the session has finished and its completion event has
// been published, or until ctx is done.
func (c *Cook) Wait(ctx context.Context, id string) (session.Snapshot, error) {
	sess, ok := c.store.Get(id)
	if !ok {
		return session.Snapshot{}, errors.NewNotFoundError("session", id).WithCause(errors.ErrSessionNotFound)
	}

	var ch <-chan struct{}
	c.mu.Lock()
	if fin, ok := c.finished[id]; ok {
		ch = fin
	}
	c.mu.Unlock()
	if ch == nil {
		ch = sess.Done()
	}

	select {
	case <-ch:
		return sess.Snapshot(), nil
	case <-ctx.Done():
		return sess.Snapshot(), ctx.Err()
	}
}

// Cancel requests cooperative cancellation of a running session: the
// current round drains, later rounds are never dispatched and progress
// stays where it was. It reports whether the session was running.
func (c *Cook) Cancel(id string) bool {
	ok := c.store.Cancel(id)
	if ok {
		c.logger.WithSession(id).Info("session cancel requested")
	}
	return ok
}

// Status returns a snapshot of the session.
func (c *Cook) Status(id string) (session.Snapshot, error) {
	sess, ok := c.store.Get(id)
	if !ok {
		return session.Snapshot{}, errors.NewNotFoundError("session", id).WithCause(errors.ErrSessionNotFound)
	}
	return sess.Snapshot(), nil
}

// Sessions returns snapshots of every stored session in creation order.
func (c *Cook) Sessions() []session.Snapshot {
	list := c.store.List()
	out := make([]session.Snapshot, len(list))
	for i, s := range list {
		out[i] = s.Snapshot()
	}
	return out
}

// Report renders snap. An empty format uses the command's --output choice.
func (c *Cook) Report(snap session.Snapshot, format command.OutputFormat) (string, error) {
	if format == "" {
		format = snap.Command.Options.OutputOrDefault()
	}
	return report.String(snap, format, c.cfg.Report.LogTail)
}
