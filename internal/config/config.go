// Package config loads guide settings from defaults, an optional YAML file and
// GUIDE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GUIDE_"

// DefaultFile is read when no explicit path is given and it exists.
const DefaultFile = "guide.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the full runtime configuration.
type Config struct {
	Log     Log    `mapstructure:"log" yaml:"log"`
	Content string `mapstructure:"content" yaml:"content"`
	Store   Store  `mapstructure:"store" yaml:"store"`
	Redis   Redis  `mapstructure:"redis" yaml:"redis"`
	HTTP    HTTP   `mapstructure:"http" yaml:"http"`
	Feed    Feed   `mapstructure:"feed" yaml:"feed"`
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type Store struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Dir    string `mapstructure:"dir" yaml:"dir"`
	// EncryptionKey is a base64 AES-256 key. When set, conversations are sealed at rest.
	EncryptionKey string   `mapstructure:"encryption_key" yaml:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
}

type Redis struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Lock     bool          `mapstructure:"lock" yaml:"lock"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

type HTTP struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	RateLimit       float64       `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second, 0 disables
	RateBurst       int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigin      string        `mapstructure:"cors_origin" yaml:"cors_origin"`
}

type Feed struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	Token    string        `mapstructure:"token" yaml:"token"`
	Platform string        `mapstructure:"platform" yaml:"platform"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:   Log{Level: "info", Format: "text"},
		Store: Store{Driver: DriverMemory, Dir: ".guide/sessions"},
		Redis: Redis{
			Addr:    "localhost:6379",
			Prefix:  "guide:session:",
			LockTTL: 30 * time.Second,
		},
		HTTP: HTTP{
			Addr:            ":8080",
			RateLimit:       20,
			RateBurst:       40,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigin:      "*",
		},
		Feed: Feed{
			Platform: "instaclone",
			Interval: 5 * time.Second,
		},
	}
}

// Load builds a Config. An empty path falls back to DefaultFile when present.
func Load(path string) (Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileMap map[string]any
		if err := yaml.Unmarshal(raw, &fileMap); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if err := decode(fileMap, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := decode(envMap(environ), &cfg); err != nil {
		return cfg, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func decode(input map[string]any, cfg *Config) error {
	if len(input) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// envMap turns GUIDE_HTTP_RATE_LIMIT=5 into {"http": {"rate_limit": "5"}}.
// The first segment after the prefix names the section; the rest is the key.
func envMap(environ []string) map[string]any {
	sections := sectionNames()
	out := make(map[string]any)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		section, field, nested := strings.Cut(name, "_")
		if !nested || !sections[section] {
			out[name] = value
			continue
		}
		m, _ := out[section].(map[string]any)
		if m == nil {
			m = make(map[string]any)
			out[section] = m
		}
		m[field] = value
	}
	return out
}

func sectionNames() map[string]bool {
	names := make(map[string]bool)
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Struct {
			names[f.Tag.Get("mapstructure")] = true
		}
	}
	return names
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverMemory, DriverRedis:
	case DriverFile:
		if c.Store.Dir == "" {
			errs = append(errs, errors.New("store.dir is required for the file driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if len(c.Store.FallbackKeys) > 0 && c.Store.EncryptionKey == "" {
		errs = append(errs, errors.New("store.fallback_keys requires store.encryption_key"))
	}
	if c.Store.Driver == DriverRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required for the redis driver"))
	}
	if c.Redis.TTL < 0 || c.Redis.LockTTL < 0 {
		errs = append(errs, errors.New("redis ttl values must not be negative"))
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0 {
		errs = append(errs, errors.New("http rate limit must not be negative"))
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst == 0 {
		errs = append(errs, errors.New("http.rate_burst must be positive when rate limiting"))
	}
	if c.Feed.Interval <= 0 {
		errs = append(errs, errors.New("feed.interval must be positive"))
	}
	if c.Feed.Enabled && c.Feed.BaseURL == "" {
		errs = append(errs, errors.New("feed.base_url is required when the feed is enabled"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
