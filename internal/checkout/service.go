package checkout

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amara-oss/backend-duka/internal/cart"
	"github.com/amara-oss/backend-duka/internal/common"
	"github.com/amara-oss/backend-duka/internal/delivery"
	"github.com/amara-oss/backend-duka/internal/events"
	"github.com/amara-oss/backend-duka/internal/pricing"
)

// ErrEmptyCart is returned when finalizing a cart with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// Sale is the persisted record of a completed POS transaction.
type Sale struct {
	ID          uuid.UUID
	CartID      uuid.UUID
	CustomerID  *uuid.UUID
	Subtotal    pricing.Money
	Discount    pricing.Money
	Tax         pricing.Money
	DeliveryFee pricing.Money
	Total       pricing.Money
	Method      string
	Area        string
	CreatedAt   time.Time
}

// SaleStore persists completed sales.
type SaleStore interface {
	CreateSale(ctx context.Context, sale Sale) (Sale, error)
}

// SettingsSource supplies current delivery settings.
type SettingsSource interface {
	Get(ctx context.Context) (delivery.Settings, error)
}

// DeliveryChoice is the delivery selection accompanying a checkout.
type DeliveryChoice struct {
	Method     string  `json:"method"`
	DistanceKm float64 `json:"distanceKm"`
	Area       string  `json:"area"`
}

// Input describes one checkout request.
type Input struct {
	CartID   string         `json:"cartId" validate:"required,uuid4"`
	Delivery DeliveryChoice `json:"delivery"`
}

// Output summarises the completed sale for the till.
type Output struct {
	SaleID      string         `json:"saleId"`
	Subtotal    pricing.Money  `json:"subtotal"`
	Discount    pricing.Money  `json:"discount"`
	Tax         pricing.Money  `json:"tax"`
	DeliveryFee pricing.Money  `json:"deliveryFee"`
	Total       pricing.Money  `json:"total"`
	Delivery    delivery.Quote `json:"delivery"`
	Currency    string         `json:"currency"`
}

// Service finalizes carts into sales.
type Service struct {
	Carts      *cart.Service
	Sales      SaleStore
	Settings   SettingsSource
	Events     *events.Bus
	SalesTotal prometheus.Counter
	SaleAmount prometheus.Histogram
	Currency   string
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create computes final totals, quotes the delivery fee, records the sale and
// empties the cart.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Carts == nil || s.Sales == nil || s.Settings == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	cartID, err := uuid.Parse(in.CartID)
	if err != nil {
		return Output{}, common.NewAppError("BAD_REQUEST", "invalid cart id", http.StatusBadRequest, err)
	}
	c, err := s.Carts.Store.GetCart(ctx, cartID)
	if err != nil {
		return Output{}, err
	}
	summary, items, err := s.Carts.Totals(ctx, cartID)
	if err != nil {
		return Output{}, err
	}
	if len(items) == 0 {
		return Output{}, ErrEmptyCart
	}

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return Output{}, err
	}
	method := delivery.ParseMethod(in.Delivery.Method)
	quote := delivery.Calculate(settings, delivery.Input{
		Subtotal:   summary.FinalPrice,
		Method:     method,
		DistanceKm: in.Delivery.DistanceKm,
		Area:       in.Delivery.Area,
		Now:        s.now(),
	})

	sale, err := s.Sales.CreateSale(ctx, Sale{
		CartID:      cartID,
		CustomerID:  c.CustomerID,
		Subtotal:    summary.Subtotal,
		Discount:    summary.Discount,
		Tax:         summary.Tax,
		DeliveryFee: quote.FinalFee,
		Total:       summary.Total + quote.FinalFee,
		Method:      string(method),
		Area:        in.Delivery.Area,
	})
	if err != nil {
		return Output{}, err
	}
	if err := s.Carts.Clear(ctx, cartID); err != nil {
		return Output{}, err
	}
	if s.SalesTotal != nil {
		s.SalesTotal.Inc()
	}
	if s.SaleAmount != nil {
		s.SaleAmount.Observe(float64(sale.Total))
	}
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicSaleCompleted, sale.ID, map[string]any{
			"saleId": sale.ID.String(),
			"cartId": cartID.String(),
			"total":  sale.Total,
		})
	}
	return Output{
		SaleID:      sale.ID.String(),
		Subtotal:    sale.Subtotal,
		Discount:    sale.Discount,
		Tax:         sale.Tax,
		DeliveryFee: sale.DeliveryFee,
		Total:       sale.Total,
		Delivery:    quote,
		Currency:    s.Currency,
	}, nil
}
