// Package http serves the guide over a JSON HTTP API.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/socialsphere/guide"
	"github.com/socialsphere/guide/internal/logging"
	"github.com/socialsphere/guide/pkg/domain"
	"github.com/socialsphere/guide/pkg/runner"
)

// DefaultMaxBodyBytes bounds request bodies. It leaves room for JSON framing
// around the largest message the sanitizer accepts.
const DefaultMaxBodyBytes = 64 << 10

//go:embed openapi.yaml
var openAPISpec []byte

// Engine is the part of guide.Engine the API exposes.
type Engine interface {
	Respond(ctx context.Context, sessionID, text string) (guide.Reply, error)
	Menu() string
	Table() domain.Table
	Session(ctx context.Context, sessionID string) (*domain.Conversation, error)
	Sessions(ctx context.Context) ([]string, error)
	Forget(ctx context.Context, sessionID string) error
}

// Server holds the handlers of the API.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Logger  *slog.Logger

	apiVersion string
	metrics    http.Handler
	rateLimit  float64
	rateBurst  int
	origin     string
	maxBody    int64
}

// Option configures the handler built by NewHandler.
type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks feed the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithRateLimit enables a process-wide token bucket. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateLimit = rps
		s.rateBurst = burst
	}
}

// WithCORSOrigin sets Access-Control-Allow-Origin (default "*").
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		s.origin = origin
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes. n <= 0 keeps the default.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewHandler creates the HTTP handler for engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	s := &Server{
		Engine: engine,
		Logger: logging.NewNop(),
		origin:  "*",
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}

	doc, err := loadSpec(openAPISpec)
	if err != nil {
		return nil, err
	}
	s.apiVersion = doc.Info.Version
	validate, err := requestValidator(doc, s.Logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(cors(s.origin))
	if s.rateLimit > 0 {
		r.Use(rateLimit(s.rateLimit, s.rateBurst, s.Logger))
	}
	r.Use(bodyLimit(s.maxBody, s.Logger))
	r.Use(validate)

	r.Post("/chat", s.Chat)
	r.Get("/menu", s.GetMenu)
	r.Get("/sessions", s.ListSessions)
	r.Get("/sessions/{id}", s.GetSession)
	r.Delete("/sessions/{id}", s.DeleteSession)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openAPISpec)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r, nil
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.Logger.Warn("Chat: Invalid request body", "err", err)
		return
	}

	message, err := runner.SanitizeInput(body.Message)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid input: %v", err))
		s.Logger.Warn("Chat: Input rejected", "err", err, "size", len(body.Message))
		return
	}

	reply, err := s.Engine.Respond(r.Context(), body.SessionID, message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process message")
		s.Logger.Error("Chat failed", "session_id", body.SessionID, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type menuDomain struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// GetMenu handles GET /menu.
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	table := s.Engine.Table()
	domains := make([]menuDomain, 0, len(table.Domains))
	for _, d := range table.Domains {
		domains = append(domains, menuDomain{Key: d.Key, Title: d.DisplayTitle()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"menu":    s.Engine.Menu(),
		"domains": domains,
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Sessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		s.Logger.Error("List sessions failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.Engine.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load session")
		s.Logger.Error("Get session failed", "session_id", id, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Engine.Forget(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		s.Logger.Error("Delete session failed", "session_id", id, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "guide-http",
		"version":     strings.TrimSpace(guide.Version),
		"api_version": s.apiVersion,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
