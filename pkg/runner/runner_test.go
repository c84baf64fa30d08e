package runner_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/socialsphere/guide"
	"github.com/socialsphere/guide/pkg/dialogue"
	"github.com/socialsphere/guide/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *guide.Engine {
	t.Helper()
	eng, err := guide.New()
	require.NoError(t, err)
	return eng
}

func TestRunner_Run_BasicFlow(t *testing.T) {
	eng := newEngine(t)
	out := &bytes.Buffer{}
	in := strings.NewReader("scheduling\nbest practices\nexit\nmenu\n")

	r := runner.New(eng,
		runner.WithSessionID("cli"),
		runner.WithHandler(runner.NewTextHandler(in, out)),
	)
	require.NoError(t, r.Run(context.Background()))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, dialogue.MenuHeader), "menu is shown first")
	assert.Contains(t, got, "⏰ Scheduling")
	assert.Contains(t, got, "💡 Best Practices")
	assert.Equal(t, 1, strings.Count(got, dialogue.MenuHeader), "input after exit is never processed")

	conv, err := eng.Session(context.Background(), "cli")
	require.NoError(t, err)
	assert.Equal(t, 2, conv.Turns)
}

func TestRunner_Run_EOFEndsCleanly(t *testing.T) {
	out := &bytes.Buffer{}
	r := runner.New(newEngine(t),
		runner.WithHandler(runner.NewTextHandler(strings.NewReader("creator\n\n"), out)),
		runner.WithoutMenu(),
	)
	require.NoError(t, r.Run(context.Background()))
	assert.NotContains(t, out.String(), dialogue.MenuHeader)
	assert.Contains(t, out.String(), "🎥 For Creators")
	assert.NotEmpty(t, r.SessionID, "anonymous session gets an ID")
}

func TestRunner_Run_RejectedInputIsRetried(t *testing.T) {
	out := &bytes.Buffer{}
	r := runner.New(newEngine(t),
		runner.WithHandler(runner.NewTextHandler(strings.NewReader("help\xff\nhelp\nquit\n"), out)),
		runner.WithoutMenu(),
	)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "Please try again")
	assert.Contains(t, out.String(), "💡 Help Section")
}

func TestRunner_Run_ContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	r := runner.New(newEngine(t),
		runner.WithHandler(runner.NewTextHandler(pr, io.Discard)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on cancel")
	}
}

func TestRunner_Run_RendererApplied(t *testing.T) {
	out := &bytes.Buffer{}
	upper := func(s string) (string, error) { return strings.ToUpper(s), nil }
	r := runner.New(newEngine(t),
		runner.WithHandler(runner.NewTextHandler(strings.NewReader(""), out, runner.WithTextHandlerRenderer(upper))),
	)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "MAIN MENU")
}

type failingEngine struct{}

func (failingEngine) Respond(context.Context, string, string) (guide.Reply, error) {
	return guide.Reply{}, errors.New("store down")
}

func (failingEngine) Menu() string { return "menu" }

func TestRunner_Run_EngineError(t *testing.T) {
	r := runner.New(failingEngine{},
		runner.WithHandler(runner.NewTextHandler(strings.NewReader("hi\n"), io.Discard)),
	)
	assert.EqualError(t, r.Run(context.Background()), "store down")
}

func TestIsExitCommand(t *testing.T) {
	assert.True(t, runner.IsExitCommand(" EXIT "))
	assert.True(t, runner.IsExitCommand("quit"))
	assert.False(t, runner.IsExitCommand("menu"))
}
