package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithSessionID sets the conversation to drive. Empty means a fresh anonymous session.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithHandler configures the IO handler.
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithoutMenu skips printing the menu on start, e.g. when resuming a session.
func WithoutMenu() Option {
	return func(r *Runner) {
		r.skipMenu = true
	}
}
