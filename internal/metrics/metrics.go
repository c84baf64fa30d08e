// Package metrics exposes Prometheus collectors for dialogue turns and feed polling.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/socialsphere/guide/pkg/domain"
)

// Poll results recorded by RecordPoll.
const (
	PollOK    = "ok"
	PollError = "error"
)

// Metrics groups the guide's collectors.
type Metrics struct {
	Turns     *prometheus.CounterVec
	Resets    prometheus.Counter
	FeedPolls *prometheus.CounterVec
	Published prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guide_turns_total",
				Help: "Total number of dialogue turns processed",
			},
			[]string{"from", "to", "outcome"},
		),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guide_resets_total",
			Help: "Total number of returns to the main menu",
		}),
		FeedPolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guide_feed_polls_total",
				Help: "Total number of published-post polls",
			},
			[]string{"result"},
		),
		Published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guide_feed_published_total",
			Help: "Total number of newly published posts observed",
		}),
	}
	reg.MustRegister(m.Turns, m.Resets, m.FeedPolls, m.Published)
	return m
}

// Hooks returns lifecycle hooks that record turn metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(stepLabel(e.From), stepLabel(e.To), string(e.Outcome)).Inc()
		},
		OnReset: func(_ context.Context, _ *domain.TurnEvent) {
			m.Resets.Inc()
		},
	}
}

// RecordPoll counts one feed poll.
func (m *Metrics) RecordPoll(err error) {
	if err != nil {
		m.FeedPolls.WithLabelValues(PollError).Inc()
		return
	}
	m.FeedPolls.WithLabelValues(PollOK).Inc()
}

// RecordPublished adds n newly published posts.
func (m *Metrics) RecordPublished(n int) {
	if n > 0 {
		m.Published.Add(float64(n))
	}
}

func stepLabel(s domain.Step) string {
	if s == "" {
		return string(domain.StepMenu)
	}
	return string(s)
}
