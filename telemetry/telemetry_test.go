package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseTags(t *testing.T) {
	tags := BaseTags("prompt-prompter", "prod")
	assert.Equal(t, []string{"service:prompt-prompter", "env:prod"}, tags)
}

func TestWithCopiesTags(t *testing.T) {
	base := make([]string, 2, 8)
	base[0] = "service:x"
	base[1] = "env:y"

	a := With(base, "reason:rate_limit")
	b := With(base, "reason:transient")

	assert.Equal(t, []string{"service:x", "env:y", "reason:rate_limit"}, a)
	assert.Equal(t, []string{"service:x", "env:y", "reason:transient"}, b)
	assert.Equal(t, []string{"service:x", "env:y"}, base, "base tags must stay untouched")
}

func TestNopSink(t *testing.T) {
	var sink Sink = NopSink{}
	sink.Gauge("g", 1, nil)
	sink.Incr("i", nil)
	sink.Count("c", 2, nil)
	sink.Timing("t", time.Second, nil)
	sink.Event("title", "text", AlertInfo, nil)
}

func TestRecorderCaptures(t *testing.T) {
	r := NewRecorder()
	r.Gauge("prompt.accuracy", 0.9, []string{"env:test"})
	r.Incr("prompt.requests", nil)
	r.Count("prompt.tokens", 150, nil)
	r.Timing("prompt.latency_ms", 1500*time.Millisecond, nil)
	r.Event("Service Started", "up", AlertInfo, nil)

	gauges := r.MetricsNamed("prompt.accuracy")
	require.Len(t, gauges, 1)
	assert.Equal(t, "gauge", gauges[0].Kind)
	assert.Equal(t, 0.9, gauges[0].Value)

	timings := r.MetricsNamed("prompt.latency_ms")
	require.Len(t, timings, 1)
	assert.Equal(t, 1500.0, timings[0].Value)

	assert.Len(t, r.EventsTitled("Service Started"), 1)
	assert.Empty(t, r.EventsTitled("missing"))
	assert.Empty(t, r.MetricsNamed("missing"))
}

func TestStatsdAlertTypeMapping(t *testing.T) {
	assert.NotEqual(t, statsdAlertType(AlertWarning), statsdAlertType(AlertError))
	assert.Equal(t, statsdAlertType("bogus"), statsdAlertType(AlertInfo))
}
