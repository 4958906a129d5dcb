package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amara-oss/backend-duka/internal/events"
	"github.com/amara-oss/backend-duka/internal/pricing"
)

// SettingsSource yields the delivery configuration used for quoting.
type SettingsSource interface {
	Get(ctx context.Context) (Settings, error)
}

// Service wraps the fee pipeline with settings lookup, event emission and
// metrics. Calculate stays pure; the service owns the side effects.
type Service struct {
	Settings SettingsSource
	Events   *events.Bus
	Quotes   *prometheus.CounterVec
	Now      func() time.Time
}

// QuoteRequest carries the caller-supplied quote parameters. At is optional
// and defaults to the service clock.
type QuoteRequest struct {
	Subtotal   int64
	Method     string
	DistanceKm float64
	Area       string
	At         time.Time
}

// Quote loads the current settings and runs the fee pipeline.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	if s == nil || s.Settings == nil {
		return Quote{}, errors.New("delivery service not configured")
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return Quote{}, err
	}
	at := req.At
	if at.IsZero() {
		at = s.now()
	}
	quote := Calculate(settings, Input{
		Subtotal:   pricing.Money(req.Subtotal),
		Method:     ParseMethod(req.Method),
		DistanceKm: req.DistanceKm,
		Area:       req.Area,
		Now:        at,
	})
	s.count(settings, quote)
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicDeliveryQuoted, uuid.New(), map[string]any{
			"subtotal": req.Subtotal,
			"method":   string(ParseMethod(req.Method)),
			"area":     req.Area,
			"finalFee": quote.FinalFee,
			"free":     quote.IsFreeDelivery,
		})
	}
	return quote, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) count(settings Settings, q Quote) {
	if s.Quotes == nil {
		return
	}
	switch {
	case !settings.Enabled:
		s.Quotes.WithLabelValues("disabled").Inc()
	case q.IsFreeDelivery:
		s.Quotes.WithLabelValues("free").Inc()
	default:
		s.Quotes.WithLabelValues("charged").Inc()
	}
}
