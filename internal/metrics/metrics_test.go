package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/socialsphere/guide"
	"github.com/socialsphere/guide/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_CountTurnsAndResets(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	eng, err := guide.New(guide.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)
	ctx := context.Background()

	for _, msg := range []string{"help", "support", "menu", "gibberish"} {
		_, err := eng.Respond(ctx, "m1", msg)
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("menu", "clarifying", "matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("clarifying", "answering", "matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("answering", "menu", "reset")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("menu", "menu", "unrecognized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resets))
}

func TestRecordPoll(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.RecordPoll(nil)
	m.RecordPoll(nil)
	m.RecordPoll(errors.New("boom"))
	m.RecordPublished(3)
	m.RecordPublished(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedPolls.WithLabelValues(metrics.PollOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedPolls.WithLabelValues(metrics.PollError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Published))
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}
