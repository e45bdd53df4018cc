package telemetry

import (
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/aegntic/prompt-prompter-dd/utils"
)

// StatsdSink forwards metrics to a Datadog agent over dogstatsd. Emission
// errors are logged at debug level and otherwise swallowed.
type StatsdSink struct {
	client statsd.ClientInterface
	logger utils.Logger
}

// NewStatsdSink dials the dogstatsd endpoint at addr (host:port).
func NewStatsdSink(addr string, logger utils.Logger) (*StatsdSink, error) {
	client, err := statsd.New(addr)
	if err != nil {
		return nil, err
	}
	return &StatsdSink{client: client, logger: logger}, nil
}

func (s *StatsdSink) Gauge(name string, value float64, tags []string) {
	if err := s.client.Gauge(name, value, tags, 1); err != nil {
		s.logger.Debug("statsd gauge failed", "metric", name, "error", err)
	}
}

func (s *StatsdSink) Incr(name string, tags []string) {
	if err := s.client.Incr(name, tags, 1); err != nil {
		s.logger.Debug("statsd incr failed", "metric", name, "error", err)
	}
}

func (s *StatsdSink) Count(name string, value int64, tags []string) {
	if err := s.client.Count(name, value, tags, 1); err != nil {
		s.logger.Debug("statsd count failed", "metric", name, "error", err)
	}
}

func (s *StatsdSink) Timing(name string, value time.Duration, tags []string) {
	if err := s.client.Timing(name, value, tags, 1); err != nil {
		s.logger.Debug("statsd timing failed", "metric", name, "error", err)
	}
}

func (s *StatsdSink) Event(title, text, alertType string, tags []string) {
	ev := &statsd.Event{
		Title:     title,
		Text:      text,
		AlertType: statsdAlertType(alertType),
		Tags:      tags,
	}
	if err := s.client.Event(ev); err != nil {
		s.logger.Debug("statsd event failed", "title", title, "error", err)
	}
}

// Close flushes buffered metrics and closes the underlying connection.
func (s *StatsdSink) Close() error {
	return s.client.Close()
}

func statsdAlertType(alertType string) statsd.EventAlertType {
	switch alertType {
	case AlertWarning:
		return statsd.Warning
	case AlertError:
		return statsd.Error
	default:
		return statsd.Info
	}
}
