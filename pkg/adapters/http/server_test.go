package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/socialsphere/guide"
	"github.com/socialsphere/guide/internal/metrics"
	"github.com/socialsphere/guide/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) (http.Handler, *guide.Engine) {
	t.Helper()
	streams := NewStreamManager(nil)
	eng, err := guide.New(guide.WithLifecycleHooks(streams.Hooks()))
	require.NoError(t, err)

	h, err := NewHandler(eng, append([]Option{WithStreams(streams)}, opts...)...)
	require.NoError(t, err)
	return h, eng
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := do(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := do(t, h, http.MethodGet, "/info", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "guide-http", resp["app"])
	assert.Equal(t, guide.Version, resp["version"])
	assert.Equal(t, "1.0.0", resp["api_version"])
}

func TestChat_Conversation(t *testing.T) {
	h, eng := newTestHandler(t)

	rr := do(t, h, http.MethodPost, "/chat", `{"session_id":"web-1","message":"instagram"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var reply guide.Reply
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))
	assert.Equal(t, "web-1", reply.SessionID)
	assert.Equal(t, domain.StepClarifying, reply.Step)
	assert.Equal(t, "instagram", reply.Domain)
	assert.Contains(t, reply.Text, "Instagram Integration")

	rr = do(t, h, http.MethodPost, "/chat", `{"session_id":"web-1","message":"analytics please"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))
	assert.Equal(t, domain.StepAnswering, reply.Step)
	assert.Contains(t, reply.Text, "Instagram Analytics")
	assert.Equal(t, 2, reply.Turn)

	conv, err := eng.Session(context.Background(), "web-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepAnswering, conv.Step)
}

func TestChat_AnonymousSession(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := do(t, h, http.MethodPost, "/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var reply guide.Reply
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, domain.StepMenu, reply.Step)
}

func TestChat_Rejected(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"session_id":"a"}`},
		{"bad session id", `{"session_id":"no spaces","message":"hi"}`},
		{"wrong type", `{"message":42}`},
		{"too large", `{"message":"` + strings.Repeat("a", 5000) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestChat_BodyLimit(t *testing.T) {
	h, eng := newTestHandler(t, WithMaxBodyBytes(128))

	rr := do(t, h, http.MethodPost, "/chat", `{"session_id":"big","message":"`+strings.Repeat("a", 200)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "128 bytes")

	_, err := eng.Session(context.Background(), "big")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "an oversized body must not reach the engine")

	rr = do(t, h, http.MethodPost, "/chat", `{"session_id":"small","message":"help"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Help Section")
}

func TestChat_DefaultBodyLimit(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := do(t, h, http.MethodPost, "/chat", `{"message":"`+strings.Repeat("a", DefaultMaxBodyBytes)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestGetMenu(t *testing.T) {
	h, eng := newTestHandler(t)
	rr := do(t, h, http.MethodGet, "/menu", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Menu    string `json:"menu"`
		Domains []struct {
			Key   string `json:"key"`
			Title string `json:"title"`
		} `json:"domains"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, eng.Menu(), resp.Menu)
	require.Len(t, resp.Domains, 6)
	assert.Equal(t, "features", resp.Domains[0].Key)
	assert.Equal(t, "help", resp.Domains[5].Key)
}

func TestSessions_CRUD(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"sessions":[]}`, rr.Body.String())

	do(t, h, http.MethodPost, "/chat", `{"session_id":"s1","message":"creator"}`)

	rr = do(t, h, http.MethodGet, "/sessions", "")
	assert.JSONEq(t, `{"sessions":["s1"]}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/sessions/s1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var conv domain.Conversation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &conv))
	assert.Equal(t, "creator", conv.Domain)
	assert.Equal(t, 1, conv.Turns)

	rr = do(t, h, http.MethodDelete, "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodGet, "/sessions/-bad", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEvents_RequiresSession(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := do(t, h, http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEvents_StreamTurns(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?session_id=live", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readData := func() string {
		for lines.Scan() {
			if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
				return data
			}
		}
		return ""
	}
	require.Equal(t, "connected", readData())

	chat, err := http.Post(srv.URL+"/chat", "application/json", bytes.NewBufferString(`{"session_id":"live","message":"help"}`))
	require.NoError(t, err)
	chat.Body.Close()
	require.Equal(t, http.StatusOK, chat.StatusCode)

	var ev domain.TurnEvent
	require.NoError(t, json.Unmarshal([]byte(readData()), &ev))
	assert.Equal(t, "live", ev.SessionID)
	assert.Equal(t, domain.StepMenu, ev.From)
	assert.Equal(t, domain.StepClarifying, ev.To)
	assert.Equal(t, domain.OutcomeMatched, ev.Outcome)
}

func TestRateLimit(t *testing.T) {
	h, _ := newTestHandler(t, WithRateLimit(0.001, 2))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)

	rr := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}

func TestCORS(t *testing.T) {
	h, _ := newTestHandler(t, WithCORSOrigin("https://app.socialsphere.io"))

	rr := do(t, h, http.MethodOptions, "/chat", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://app.socialsphere.io", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsAndSpec(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	eng, err := guide.New(guide.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)
	h, err := NewHandler(eng, WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	require.NoError(t, err)

	do(t, h, http.MethodPost, "/chat", `{"session_id":"m","message":"menu"}`)

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `guide_turns_total{from="menu",outcome="reset",to="menu"} 1`)
	assert.Contains(t, rr.Body.String(), "guide_resets_total 1")

	rr = do(t, h, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "openapi: 3.0.3")
}

func TestStreamManager_SubscribeBroadcast(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("a")
	assert.Equal(t, 1, sm.Subscribers("a"))

	sm.Broadcast("a", "one")
	sm.Broadcast("b", "ignored")
	assert.Equal(t, "one", <-ch)

	for i := 0; i < subscriberBuffer+5; i++ {
		sm.Broadcast("a", "flood")
	}
	assert.Len(t, ch, subscriberBuffer, "excess messages are dropped")

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("a"))
}
