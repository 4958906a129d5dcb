package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/amara-oss/backend-duka/internal/pricing"
)

type staticSource struct {
	settings Settings
}

func (s staticSource) Get(context.Context) (Settings, error) { return s.settings, nil }

func TestQuoteUsesServiceClockWhenAtMissing(t *testing.T) {
	svc := &Service{
		Settings: staticSource{settings: Settings{Enabled: true, DefaultFee: 2000, FreeDeliveryThreshold: 100_000}},
		Now: func() time.Time {
			return time.Date(2025, time.March, 12, 18, 0, 0, 0, time.UTC)
		},
	}

	quote, err := svc.Quote(context.Background(), QuoteRequest{Subtotal: 10_000, Method: "express", DistanceKm: 12})
	require.NoError(t, err)
	// (2000*1.5*1.2 + 1500) = 5100, no order discount below 25k.
	require.Equal(t, pricing.Money(5100), quote.FinalFee)
}

func TestQuoteCountsResults(t *testing.T) {
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_delivery_quotes_total"}, []string{"result"})
	svc := &Service{
		Settings: staticSource{settings: Settings{Enabled: true, DefaultFee: 2000, FreeDeliveryThreshold: 5_000}},
		Quotes:   quotes,
		Now:      func() time.Time { return time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC) },
	}

	_, err := svc.Quote(context.Background(), QuoteRequest{Subtotal: 10_000})
	require.NoError(t, err)
	_, err = svc.Quote(context.Background(), QuoteRequest{Subtotal: 1_000})
	require.NoError(t, err)

	require.Equal(t, float64(1), testutil.ToFloat64(quotes.WithLabelValues("free")))
	require.Equal(t, float64(1), testutil.ToFloat64(quotes.WithLabelValues("charged")))
}

func TestQuoteDisabledDelivery(t *testing.T) {
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_delivery_quotes_disabled_total"}, []string{"result"})
	svc := &Service{
		Settings: staticSource{settings: Settings{Enabled: false, DefaultFee: 2000}},
		Quotes:   quotes,
	}

	quote, err := svc.Quote(context.Background(), QuoteRequest{Subtotal: 10_000, DistanceKm: 30})
	require.NoError(t, err)
	require.Zero(t, quote.FinalFee)
	require.Equal(t, float64(1), testutil.ToFloat64(quotes.WithLabelValues("disabled")))
}
