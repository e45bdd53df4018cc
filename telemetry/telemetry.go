// Package telemetry sends gauges, counters, timings and alert events to an
// observability backend. Emission is fire-and-forget: a sink failure is never
// allowed to affect an analysis result.
package telemetry

import (
	"fmt"
	"time"
)

// Alert severity for Event emissions.
const (
	AlertInfo    = "info"
	AlertWarning = "warning"
	AlertError   = "error"
)

// Sink receives metrics and discrete events. Implementations must be safe
// for concurrent use and must never propagate emission failures.
type Sink interface {
	Gauge(name string, value float64, tags []string)
	Incr(name string, tags []string)
	Count(name string, value int64, tags []string)
	Timing(name string, value time.Duration, tags []string)
	Event(title, text, alertType string, tags []string)
}

// BaseTags builds the service/env tag pair carried on every emission.
func BaseTags(service, env string) []string {
	return []string{
		fmt.Sprintf("service:%s", service),
		fmt.Sprintf("env:%s", env),
	}
}

// With returns a copy of tags with extras appended, leaving the original
// slice untouched so shared base tags stay safe under concurrency.
func With(tags []string, extras ...string) []string {
	out := make([]string, 0, len(tags)+len(extras))
	out = append(out, tags...)
	out = append(out, extras...)
	return out
}

// NopSink discards everything. Used when no telemetry backend is configured.
type NopSink struct{}

func (NopSink) Gauge(string, float64, []string)        {}
func (NopSink) Incr(string, []string)                  {}
func (NopSink) Count(string, int64, []string)          {}
func (NopSink) Timing(string, time.Duration, []string) {}
func (NopSink) Event(string, string, string, []string) {}
