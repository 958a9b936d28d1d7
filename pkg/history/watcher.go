package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/reportview/pkg/logger"
	"github.com/raykavin/reportview/pkg/report"
	"github.com/raykavin/reportview/pkg/storage"
	"github.com/robfig/cron/v3"
)

// Watcher defaults
const (
	DefaultSchedule    = "@every 30s"
	DefaultMaxAttempts = 3
)

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithSchedule sets the cron spec of periodic rescans
func WithSchedule(spec string) WatcherOption {
	return func(w *Watcher) {
		w.schedule = spec
	}
}

// WithBackoff sets the delay bounds between failed scan attempts
func WithBackoff(minDelay, maxDelay time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.backoff = &backoff.Backoff{Min: minDelay, Max: maxDelay, Factor: 2}
	}
}

// WithMaxAttempts bounds the scan attempts of one refresh
func WithMaxAttempts(attempts int) WatcherOption {
	return func(w *Watcher) {
		w.maxAttempts = max(attempts, 1)
	}
}

// WithWatcherLogger sets the watcher logger
func WithWatcherLogger(log logger.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = log
	}
}

// Watcher keeps a RunStorage in sync with the runs on disk
type Watcher struct {
	mu          sync.Mutex
	collect     func() ([]report.HistoryRun, error)
	store       storage.RunStorage
	schedule    string
	backoff     *backoff.Backoff
	maxAttempts int
	log         logger.Logger
	cron        *cron.Cron
}

// NewWatcher creates a watcher publishing scanner results to store
func NewWatcher(scanner *Scanner, store storage.RunStorage, options ...WatcherOption) *Watcher {
	w := &Watcher{
		collect:     scanner.Collect,
		store:       store,
		schedule:    DefaultSchedule,
		backoff:     &backoff.Backoff{Min: 100 * time.Millisecond, Max: 2 * time.Second, Factor: 2},
		maxAttempts: DefaultMaxAttempts,
		log:         logger.Nop(),
	}

	for _, option := range options {
		option(w)
	}

	return w
}

// Refresh rescans the runs and replaces the stored index. A failing scan
// is retried with exponential backoff up to the attempt limit.
func (w *Watcher) Refresh(ctx context.Context) ([]report.HistoryRun, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer w.backoff.Reset()

	var (
		runs []report.HistoryRun
		err  error
	)
	for attempt := 1; ; attempt++ {
		runs, err = w.collect()
		if err == nil {
			break
		}
		if attempt >= w.maxAttempts {
			return nil, fmt.Errorf("scan history after %d attempts: %w", attempt, err)
		}

		delay := w.backoff.Duration()
		w.log.WithError(err).Warnf("history: scan failed, retrying in %s", delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err := w.store.ReplaceRuns(runs); err != nil {
		return nil, fmt.Errorf("store history: %w", err)
	}

	w.log.Debugf("history: indexed %d runs", len(runs))
	return runs, nil
}

// Start refreshes once and then on every scheduled tick until ctx is done
// or Stop is called
func (w *Watcher) Start(ctx context.Context) error {
	if _, err := w.Refresh(ctx); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() {
		if _, err := w.Refresh(ctx); err != nil {
			w.log.WithError(err).Error("history: scheduled refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("register refresh schedule %q: %w", w.schedule, err)
	}

	w.mu.Lock()
	w.cron = c
	w.mu.Unlock()
	c.Start()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

// Stop halts scheduled refreshes and waits for a running one
func (w *Watcher) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
