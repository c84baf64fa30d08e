// Package cli wires configuration into engines, stores and hosts for cmd/guide.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/socialsphere/guide"
	"github.com/socialsphere/guide/internal/config"
	"github.com/socialsphere/guide/internal/logging"
	"github.com/socialsphere/guide/pkg/adapters/file"
	"github.com/socialsphere/guide/pkg/adapters/memory"
	"github.com/socialsphere/guide/pkg/adapters/redis"
	"github.com/socialsphere/guide/pkg/content"
	"github.com/socialsphere/guide/pkg/domain"
	"github.com/socialsphere/guide/pkg/persistence/middleware"
	"github.com/socialsphere/guide/pkg/ports"
)

// LockPrefix namespaces distributed session locks in Redis.
const LockPrefix = "guide:"

// Backend is a configured store plus its optional locker.
type Backend struct {
	Store  ports.ConversationStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases connections held by the backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend creates the store selected by cfg.Store.Driver, sealed with
// cfg.Store.EncryptionKey when one is set. Redis connectivity is checked with a ping.
func OpenBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Store.EncryptionKey == "" {
		return b, nil
	}
	mw, err := encryption(cfg.Store)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, mw)
	return b, nil
}

func encryption(cfg config.Store) (middleware.Middleware, error) {
	active, err := middleware.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, s := range cfg.FallbackKeys {
		key, err := middleware.DecodeKey(s)
		if err != nil {
			return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(enc)
}

func openBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory, "":
		return &Backend{Store: memory.NewStore()}, nil
	case config.DriverFile:
		return &Backend{Store: file.New(cfg.Store.Dir)}, nil
	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		b := &Backend{Store: store, close: store.Close}
		if cfg.Redis.Lock {
			b.Locker = redis.NewLocker(store.Client(), LockPrefix)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// LoadTable returns the table at path, or the built-in content when path is empty.
func LoadTable(path string) (domain.Table, error) {
	if path == "" {
		return content.Default(), nil
	}
	table, err := content.LoadFile(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to load content %s: %w", path, err)
	}
	return table, nil
}

// NewLogger builds the process logger from cfg. debug forces the debug level.
func NewLogger(cfg config.Config, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(os.Stderr, level, cfg.Log.Format), nil
}

// BuildEngine creates an engine over backend with the configured content.
func BuildEngine(cfg config.Config, backend *Backend, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*guide.Engine, error) {
	table, err := LoadTable(cfg.Content)
	if err != nil {
		return nil, err
	}

	opts := []guide.Option{
		guide.WithTable(table),
		guide.WithStore(backend.Store),
		guide.WithLogger(logger),
		guide.WithLifecycleHooks(debugHooks(logger)),
	}
	if backend.Locker != nil {
		opts = append(opts, guide.WithLocker(backend.Locker), guide.WithLockTTL(cfg.Redis.LockTTL))
	}
	for _, h := range hooks {
		opts = append(opts, guide.WithLifecycleHooks(h))
	}

	eng, err := guide.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing guide: %w", err)
	}
	return eng, nil
}

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReset: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "Returned to main menu", "session_id", e.SessionID, "from", e.From)
		},
	}
}
