package guide

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/socialsphere/guide/internal/logging"
	"github.com/socialsphere/guide/pkg/adapters/memory"
	"github.com/socialsphere/guide/pkg/content"
	"github.com/socialsphere/guide/pkg/dialogue"
	"github.com/socialsphere/guide/pkg/domain"
	"github.com/socialsphere/guide/pkg/ports"
	"github.com/socialsphere/guide/pkg/session"
)

// Engine is the high-level entry point of the guide.
// It is safe for concurrent use; turns for the same session are serialized.
type Engine struct {
	machine  *dialogue.Machine
	sessions *session.Manager

	table   *domain.Table
	store   ports.ConversationStore
	locker  ports.DistributedLocker
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	newID   func() string
	now     func() time.Time
	lockTTL time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTable replaces the built-in SocialSphere content. The table is validated by New.
func WithTable(table domain.Table) Option {
	return func(e *Engine) {
		e.table = &table
	}
}

// WithStore sets the conversation store (default: in-memory).
func WithStore(store ports.ConversationStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL sets the distributed lock lease.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithIDGenerator replaces the uuid generator used for anonymous sessions.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// Reply is the outcome of one turn.
type Reply struct {
	SessionID string      `json:"session_id"`
	Text      string      `json:"response"`
	Step      domain.Step `json:"step"`
	Domain    string      `json:"domain,omitempty"`
	Turn      int         `json:"turn"`
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}

	table := content.Default()
	if eng.table != nil {
		table = *eng.table
		if err := table.Validate(); err != nil {
			return nil, err
		}
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	sessionOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithLockTTL(eng.lockTTL),
	}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}

	eng.machine = dialogue.New(table)
	eng.sessions = session.NewManager(eng.store, sessionOpts...)
	return eng, nil
}

// Respond runs one turn for sessionID. An empty sessionID starts a new anonymous
// session whose generated ID is returned in the Reply. Errors come only from
// storage and locking; unrecognized input is answered in-band.
func (e *Engine) Respond(ctx context.Context, sessionID, text string) (Reply, error) {
	if sessionID == "" {
		sessionID = e.newID()
	}

	var ev domain.TurnEvent
	conv, err := e.sessions.Update(ctx, sessionID, func(c *domain.Conversation) error {
		ev = e.machine.Step(c, text)
		return nil
	})
	if err != nil {
		e.logger.Error("Turn failed", "session_id", sessionID, "err", err)
		return Reply{}, fmt.Errorf("respond: %w", err)
	}

	ev.Timestamp = e.now().UTC()
	ev.SessionID = sessionID
	e.emit(ctx, &ev)

	e.logger.Debug("Turn",
		"session_id", sessionID,
		"from", ev.From,
		"to", ev.To,
		"outcome", ev.Outcome,
		"matched", ev.Matched,
	)

	return Reply{
		SessionID: sessionID,
		Text:      ev.Response,
		Step:      conv.Step,
		Domain:    conv.Domain,
		Turn:      conv.Turns,
	}, nil
}

func (e *Engine) emit(ctx context.Context, ev *domain.TurnEvent) {
	if e.hooks.OnTurn != nil {
		e.hooks.OnTurn(ctx, ev)
	}
	if ev.Outcome == domain.OutcomeReset && e.hooks.OnReset != nil {
		e.hooks.OnReset(ctx, ev)
	}
}

// Menu returns the main menu listing.
func (e *Engine) Menu() string {
	return e.machine.Menu()
}

// Table returns the help content in use.
func (e *Engine) Table() domain.Table {
	return e.machine.Table()
}

// Session returns the stored conversation, or domain.ErrSessionNotFound.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Start loads a session or creates it at the main menu.
// The boolean reports whether the session already existed.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.Conversation, bool, error) {
	if sessionID == "" {
		sessionID = e.newID()
	}
	return e.sessions.LoadOrStart(ctx, sessionID)
}

// Reset returns a session to the main menu, same as the user typing "menu".
func (e *Engine) Reset(ctx context.Context, sessionID string) (Reply, error) {
	return e.Respond(ctx, sessionID, "menu")
}

// Sessions lists stored session IDs.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Forget deletes a session.
func (e *Engine) Forget(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}
