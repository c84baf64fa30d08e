package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/socialsphere/guide/internal/presentation/tui"
	"github.com/socialsphere/guide/pkg/runner"
)

// ChatOptions configures an interactive session.
type ChatOptions struct {
	SessionID string
	In        io.Reader
	Out       io.Writer
	// Rich enables the banner and markdown rendering.
	Rich   bool
	Logger *slog.Logger
}

// RunChat drives engine from In/Out until the user exits or ctx is cancelled.
func RunChat(ctx context.Context, engine runner.Responder, opts ChatOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	var handlerOpts []runner.TextHandlerOption
	if opts.Rich {
		tui.PrintBanner(opts.Out)
		render, err := tui.NewRenderer(tui.Width(os.Stdout, 80))
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(render))
	}

	runOpts := []runner.Option{
		runner.WithHandler(runner.NewTextHandler(opts.In, opts.Out, handlerOpts...)),
		runner.WithSessionID(opts.SessionID),
	}
	if opts.Logger != nil {
		runOpts = append(runOpts, runner.WithLogger(opts.Logger))
	}
	r := runner.New(engine, runOpts...)

	err := r.Run(ctx)
	if err != nil && ctx.Err() != nil {
		printSystemMessage(opts.Out, "Goodbye.")
		return nil
	}
	if err == nil && r.SessionID != "" {
		printSystemMessage(opts.Out, fmt.Sprintf("Session %s saved. Resume with --session %s", r.SessionID, r.SessionID))
	}
	return err
}

func printSystemMessage(w io.Writer, msg string) {
	fmt.Fprintf(w, "\n[guide] %s\n", msg)
}
