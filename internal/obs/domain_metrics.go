package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// DeliveryQuotesTotal counts delivery quotes by result (charged, free, disabled).
	DeliveryQuotesTotal *prometheus.CounterVec
	// SalesCompletedTotal counts finalized sales.
	SalesCompletedTotal prometheus.Counter
	// SaleAmount records final sale totals for basket-size distribution.
	SaleAmount prometheus.Histogram
	// EventsEmittedTotal counts domain events by topic.
	EventsEmittedTotal *prometheus.CounterVec
	// CartsSweptTotal counts expired carts removed by the sweeper.
	CartsSweptTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		DeliveryQuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_quotes_total",
			Help:      "Count of delivery quotes by outcome.",
		}, []string{"result"})
		SalesCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_completed_total",
			Help:      "Number of carts finalized into sales.",
		})
		SaleAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_amount",
			Help:      "Distribution of final sale totals in minor currency units.",
			Buckets:   []float64{1000, 5000, 10_000, 25_000, 50_000, 100_000, 250_000, 500_000},
		})
		EventsEmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Count of domain events emitted by topic.",
		}, []string{"topic"})
		CartsSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carts_swept_total",
			Help:      "Number of expired carts removed by the background sweeper.",
		})

		mustRegisterCollector(reg, DeliveryQuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DeliveryQuotesTotal = v
			}
		})
		mustRegisterCollector(reg, SalesCompletedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				SalesCompletedTotal = v
			}
		})
		mustRegisterCollector(reg, SaleAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				SaleAmount = v
			}
		})
		mustRegisterCollector(reg, EventsEmittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				EventsEmittedTotal = v
			}
		})
		mustRegisterCollector(reg, CartsSweptTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartsSweptTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
