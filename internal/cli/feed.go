package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/socialsphere/guide/internal/config"
	"github.com/socialsphere/guide/internal/metrics"
	"github.com/socialsphere/guide/pkg/feed"
)

// NewFeedWatcher builds a watcher over the configured dashboard API. Notifications
// are written to out, and poll results are recorded in m when it is non-nil.
func NewFeedWatcher(cfg config.Config, out io.Writer, m *metrics.Metrics, logger *slog.Logger) (*feed.Watcher, error) {
	if cfg.Feed.BaseURL == "" {
		return nil, fmt.Errorf("feed base URL is not configured")
	}
	return NewWatcherFor(feed.NewHTTPSource(cfg.Feed.BaseURL, cfg.Feed.Token), cfg, out, m, logger), nil
}

// NewWatcherFor wires src into a watcher using the feed settings of cfg.
func NewWatcherFor(src feed.Source, cfg config.Config, out io.Writer, m *metrics.Metrics, logger *slog.Logger) *feed.Watcher {
	opts := []feed.Option{
		feed.WithInterval(cfg.Feed.Interval),
		feed.WithLogger(logger),
		feed.OnPublished(func(_ context.Context, e feed.Event) {
			added := e.Current - e.Previous
			if m != nil {
				m.RecordPublished(added)
			}
			latest := ""
			if len(e.Posts) > 0 {
				latest = e.Posts[0].Content
			}
			printSystemMessage(out, fmt.Sprintf("A new post was published! (%d live) %s", e.Current, latest))
		}),
	}
	if cfg.Feed.Platform != "" {
		opts = append(opts, feed.WithPlatform(cfg.Feed.Platform))
	}
	if m != nil {
		opts = append(opts, feed.OnPoll(m.RecordPoll))
	}
	return feed.NewWatcher(src, opts...)
}
