package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Veraticus/payrank/internal/engine"
)

// Planner produces and commits allocation runs.
type Planner interface {
	Plan(ctx context.Context) (*engine.Run, error)
	Commit(ctx context.Context, run *engine.Run) (int, error)
}

// Parser accepts standard five-field cron expressions plus descriptors
// such as @daily.
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSpec validates a cron expression.
func ParseSpec(spec string) (cron.Schedule, error) {
	sched, err := Parser.Parse(strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Watcher re-plans the payment run on a cron schedule.
type Watcher struct {
	planner    Planner
	cron       *cron.Cron
	logger     *slog.Logger
	onRun      func(*engine.Run)
	now        func() time.Time
	spec       string
	mu         sync.Mutex
	entry      cron.EntryID
	autoCommit bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithAutoCommit writes statuses back when a tick lands on a payment run day.
func WithAutoCommit(enabled bool) WatcherOption {
	return func(w *Watcher) {
		w.autoCommit = enabled
	}
}

// WithOnRun registers a callback invoked after every successful plan.
func WithOnRun(fn func(*engine.Run)) WatcherOption {
	return func(w *Watcher) {
		w.onRun = fn
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithWatcherClock overrides the clock used to detect payment run days.
func WithWatcherClock(now func() time.Time) WatcherOption {
	return func(w *Watcher) {
		w.now = now
	}
}

// NewWatcher creates a watcher for spec. It does not start until Start.
func NewWatcher(planner Planner, spec string, opts ...WatcherOption) (*Watcher, error) {
	if planner == nil {
		return nil, fmt.Errorf("planner cannot be nil")
	}
	if _, err := ParseSpec(spec); err != nil {
		return nil, err
	}

	w := &Watcher{
		planner: planner,
		spec:    strings.TrimSpace(spec),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "schedule")

	cronLogger := slogAdapter{logger: w.logger}
	w.cron = cron.New(
		cron.WithParser(Parser),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	return w, nil
}

// RunOnce plans immediately, committing when auto-commit is on and today is
// a payment run day.
func (w *Watcher) RunOnce(ctx context.Context) (*engine.Run, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	run, err := w.planner.Plan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to plan payment run: %w", err)
	}

	s := run.Summary
	w.logger.Info("Payment run planned",
		"approved", s.ApprovedCount,
		"held", s.HeldCount,
		"approved_total", s.ApprovedTotal,
		"held_total", s.HeldTotal,
		"cash", s.AvailableCash,
		"utilization", s.Utilization,
		"danger", s.IsDanger())

	if w.autoCommit && IsPaymentRunDay(w.now()) {
		changed, err := w.planner.Commit(ctx, run)
		if err != nil {
			return run, fmt.Errorf("failed to commit payment run: %w", err)
		}
		w.logger.Info("Payment run committed", "changed", changed)
	}

	if w.onRun != nil {
		w.onRun(run)
	}
	return run, nil
}

// Start schedules the job and starts the cron loop. Jobs run with ctx until
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	id, err := w.cron.AddFunc(w.spec, func() {
		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.Error("Scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %q: %w", w.spec, err)
	}
	w.entry = id
	w.cron.Start()

	w.logger.Info("Watching payment run", "schedule", w.spec, "next", w.Next().Format(time.RFC3339))
	return nil
}

// Next returns the next scheduled tick, or the zero time before Start.
func (w *Watcher) Next() time.Time {
	if w.entry == 0 {
		return time.Time{}
	}
	return w.cron.Entry(w.entry).Next
}

// Stop halts scheduling and waits for a running job to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
}

// slogAdapter satisfies cron.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
