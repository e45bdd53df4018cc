package telemetry

import (
	"sync"
	"time"
)

// RecordedMetric is one captured emission.
type RecordedMetric struct {
	Kind  string // "gauge", "incr", "count", "timing"
	Name  string
	Value float64
	Tags  []string
}

// RecordedEvent is one captured alert-style event.
type RecordedEvent struct {
	Title     string
	Text      string
	AlertType string
	Tags      []string
}

// Recorder is a Sink that captures emissions in memory for assertions.
type Recorder struct {
	mu      sync.Mutex
	Metrics []RecordedMetric
	Events  []RecordedEvent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Gauge(name string, value float64, tags []string) {
	r.record(RecordedMetric{Kind: "gauge", Name: name, Value: value, Tags: tags})
}

func (r *Recorder) Incr(name string, tags []string) {
	r.record(RecordedMetric{Kind: "incr", Name: name, Value: 1, Tags: tags})
}

func (r *Recorder) Count(name string, value int64, tags []string) {
	r.record(RecordedMetric{Kind: "count", Name: name, Value: float64(value), Tags: tags})
}

func (r *Recorder) Timing(name string, value time.Duration, tags []string) {
	r.record(RecordedMetric{Kind: "timing", Name: name, Value: float64(value.Milliseconds()), Tags: tags})
}

func (r *Recorder) Event(title, text, alertType string, tags []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, RecordedEvent{Title: title, Text: text, AlertType: alertType, Tags: tags})
}

func (r *Recorder) record(m RecordedMetric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Metrics = append(r.Metrics, m)
}

// MetricsNamed returns every captured metric with the given name.
func (r *Recorder) MetricsNamed(name string) []RecordedMetric {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RecordedMetric
	for _, m := range r.Metrics {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// EventsTitled returns every captured event with the given title.
func (r *Recorder) EventsTitled(title string) []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RecordedEvent
	for _, e := range r.Events {
		if e.Title == title {
			out = append(out, e)
		}
	}
	return out
}
