package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/socialsphere/guide/internal/logging"
)

// DefaultInterval is how often the dashboard checks for new posts.
const DefaultInterval = 5 * time.Second

// Event reports that the live post count grew between two polls.
type Event struct {
	Previous int
	Current  int
	Posts    []Post // Live posts, newest first
}

// Watcher polls a Source and fires OnPublished when new posts go live.
type Watcher struct {
	source   Source
	platform string
	interval time.Duration
	logger   *slog.Logger

	onPublished func(context.Context, Event)
	onPoll      func(error)

	// baseline is nil until the first successful poll.
	baseline *int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithPlatform overrides DefaultPlatform.
func WithPlatform(platform string) Option {
	return func(w *Watcher) {
		w.platform = platform
	}
}

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithLogger configures a logger for poll failures and notifications.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// OnPublished registers the callback for count increases.
func OnPublished(fn func(context.Context, Event)) Option {
	return func(w *Watcher) {
		w.onPublished = fn
	}
}

// OnPoll registers a callback invoked after every poll with its error, if any.
func OnPoll(fn func(error)) Option {
	return func(w *Watcher) {
		w.onPoll = fn
	}
}

// NewWatcher creates a Watcher over source.
func NewWatcher(source Source, opts ...Option) *Watcher {
	w := &Watcher{
		source:   source,
		platform: DefaultPlatform,
		interval: DefaultInterval,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls every interval until ctx is done. The first poll happens after one
// interval. Fetch errors are logged and polling continues. Run returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll performs a single check. It is not safe to call concurrently with Run.
func (w *Watcher) Poll(ctx context.Context) {
	posts, err := w.source.Fetch(ctx)
	if w.onPoll != nil {
		w.onPoll(err)
	}
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("Polling error", "platform", w.platform, "err", err)
		}
		return
	}

	live := Published(posts, w.platform)
	current := len(live)

	if w.baseline == nil {
		w.baseline = &current
		w.logger.Debug("Feed baseline set", "platform", w.platform, "count", current)
		return
	}

	// The baseline also follows the count down, so a deletion followed by a
	// publish still notifies. A raise-only baseline would swallow that publish.
	previous := *w.baseline
	*w.baseline = current
	if current <= previous {
		return
	}

	w.logger.Info("New posts published", "platform", w.platform, "previous", previous, "current", current)
	if w.onPublished != nil {
		w.onPublished(ctx, Event{Previous: previous, Current: current, Posts: live})
	}
}

// Baseline returns the last observed count and whether one has been recorded.
func (w *Watcher) Baseline() (int, bool) {
	if w.baseline == nil {
		return 0, false
	}
	return *w.baseline, true
}
