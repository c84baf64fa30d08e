package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/socialsphere/guide"
	"github.com/socialsphere/guide/internal/logging"
)

// Responder is the part of guide.Engine the runner needs.
type Responder interface {
	Respond(ctx context.Context, sessionID, text string) (guide.Reply, error)
	Menu() string
}

// IOHandler abstracts how the runner talks to the user.
type IOHandler interface {
	Output(ctx context.Context, text string) error
	Input(ctx context.Context) (string, error)
}

// Runner is the interactive chat loop.
type Runner struct {
	SessionID string
	Handler   IOHandler
	Logger    *slog.Logger

	engine   Responder
	skipMenu bool
}

// New creates a Runner over engine. Without WithHandler it uses stdin and stdout.
func New(engine Responder, opts ...Option) *Runner {
	r := &Runner{engine: engine}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// IsExitCommand reports whether the line ends the chat.
func IsExitCommand(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "exit", "quit":
		return true
	}
	return false
}

// Run loops until the user exits, input ends or ctx is cancelled.
// End of input and exit commands return nil; cancellation returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	if !r.skipMenu {
		if err := r.Handler.Output(ctx, r.engine.Menu()); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	for {
		text, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if text == "" {
			continue
		}
		if IsExitCommand(text) {
			r.Logger.Debug("Chat ended by user", "session_id", r.SessionID)
			return nil
		}

		reply, err := r.engine.Respond(ctx, r.SessionID, text)
		if err != nil {
			return err
		}
		// Keep anonymous sessions stable across turns.
		r.SessionID = reply.SessionID

		if err := r.Handler.Output(ctx, reply.Text); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}
