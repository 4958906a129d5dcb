package events

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// LogNotifier writes emitted events to the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Info().
		Str("topic", event.Topic).
		Str("aggregate_id", event.AggregateID.String()).
		Int64("event_id", event.ID).
		Msg("domain_event")
	return nil
}

// CounterNotifier increments a per-topic Prometheus counter.
type CounterNotifier struct {
	Counter *prometheus.CounterVec
}

// Notify implements Notifier.
func (n CounterNotifier) Notify(_ context.Context, event Event) error {
	if n.Counter == nil {
		return nil
	}
	n.Counter.WithLabelValues(event.Topic).Inc()
	return nil
}
