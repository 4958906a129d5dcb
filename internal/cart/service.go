package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amara-oss/backend-duka/internal/common"
	"github.com/amara-oss/backend-duka/internal/events"
	"github.com/amara-oss/backend-duka/internal/pricing"
)

// ErrNotFound indicates the requested cart or item could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Cart is a persisted cart being assembled at the till.
type Cart struct {
	ID         uuid.UUID
	AnonID     string
	CustomerID *uuid.UUID
	Discount   pricing.Discount
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time
}

// Item is one cart line, referencing a specific product variant.
type Item struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Qty       int
	UnitPrice pricing.Money
	Subtotal  pricing.Money
}

// Store defines the persistence operations the cart service relies on.
// Implementations return ErrNotFound for missing rows.
type Store interface {
	GetCart(ctx context.Context, id uuid.UUID) (Cart, error)
	GetActiveCartByAnon(ctx context.Context, anonID string, now time.Time) (Cart, error)
	CreateCart(ctx context.Context, anonID string, expiresAt time.Time) (Cart, error)
	TouchCart(ctx context.Context, id uuid.UUID, expiresAt time.Time) error
	ListItems(ctx context.Context, cartID uuid.UUID) ([]Item, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (Item, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (Item, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItemQty(ctx context.Context, itemID uuid.UUID, qty int, subtotal pricing.Money) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
	SetDiscount(ctx context.Context, cartID uuid.UUID, d pricing.Discount) error
	SetCustomer(ctx context.Context, cartID uuid.UUID, customerID *uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Service encapsulates cart domain operations. Numeric input is clamped or
// defaulted rather than rejected so malformed till input never crashes a
// sale.
type Service struct {
	Store  Store
	Events *events.Bus
	TTL    time.Duration
	Now    func() time.Time
	TaxBps int
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) taxBps() int {
	if s == nil || s.TaxBps <= 0 {
		return 1800
	}
	return s.TaxBps
}

// EnsureCart loads or creates the active cart for the provided device identifier.
func (s *Service) EnsureCart(ctx context.Context, anonID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if anonID == "" {
		return Cart{}, fmt.Errorf("anon id required: %w", ErrInvalidInput)
	}
	now := s.now()
	expires := now.Add(s.ttl())
	c, err := s.Store.GetActiveCartByAnon(ctx, anonID, now)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.Store.CreateCart(ctx, anonID, expires)
		}
		return Cart{}, err
	}
	_ = s.Store.TouchCart(ctx, c.ID, expires)
	return c, nil
}

// AddItem inserts or increments a cart line. Lines merge on the
// (product, variant) pair; the caller resolves the unit price.
func (s *Service) AddItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID, unitPrice pricing.Money, qty int) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	qty = common.ClampQty(qty)
	unitPrice = common.ClampMoney(unitPrice)

	item, err := s.Store.FindItem(ctx, cartID, productID, variantID)
	if err == nil {
		newQty := item.Qty + qty
		if err := s.Store.UpdateItemQty(ctx, item.ID, newQty, pricing.Money(newQty)*item.UnitPrice); err != nil {
			return err
		}
		s.touchAndEmit(ctx, cartID, events.TopicCartUpdated)
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	line := Item{
		CartID:    cartID,
		ProductID: productID,
		VariantID: variantID,
		Qty:       qty,
		UnitPrice: unitPrice,
		Subtotal:  pricing.Money(qty) * unitPrice,
	}
	if _, err := s.Store.CreateItem(ctx, line); err != nil {
		return err
	}
	s.touchAndEmit(ctx, cartID, events.TopicCartUpdated)
	return nil
}

// UpdateQuantity replaces a line quantity, recomputing its subtotal. A
// non-positive quantity behaves exactly like RemoveItem.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, itemID uuid.UUID, qty int) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return s.RemoveItem(ctx, cartID, itemID)
	}
	item, err := s.Store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.Store.UpdateItemQty(ctx, item.ID, qty, pricing.Money(qty)*item.UnitPrice); err != nil {
		return err
	}
	s.touchAndEmit(ctx, cartID, events.TopicCartUpdated)
	return nil
}

// RemoveItem deletes a cart line. Removing an absent item is a no-op, not an
// error.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if err := s.Store.DeleteItem(ctx, cartID, itemID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	s.touchAndEmit(ctx, cartID, events.TopicCartUpdated)
	return nil
}

// Clear empties the cart, resets the discount and detaches the customer.
func (s *Service) Clear(ctx context.Context, cartID uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if err := s.Store.DeleteItems(ctx, cartID); err != nil {
		return err
	}
	if err := s.Store.SetDiscount(ctx, cartID, pricing.Discount{Kind: pricing.DiscountPercentage}); err != nil {
		return err
	}
	if err := s.Store.SetCustomer(ctx, cartID, nil); err != nil {
		return err
	}
	s.touchAndEmit(ctx, cartID, events.TopicCartCleared)
	return nil
}

// ApplyDiscount stores the whole-cart discount. The raw value is coerced to
// zero when it is not a valid non-negative number.
func (s *Service) ApplyDiscount(ctx context.Context, cartID uuid.UUID, rawValue, rawKind string) (pricing.Discount, error) {
	if s == nil || s.Store == nil {
		return pricing.Discount{}, errors.New("cart service not configured")
	}
	d := pricing.Discount{
		Kind:  pricing.ParseDiscountKind(rawKind),
		Value: common.ParseNonNegativeFloat(rawValue, 0),
	}
	if err := s.Store.SetDiscount(ctx, cartID, d); err != nil {
		return pricing.Discount{}, err
	}
	s.touchAndEmit(ctx, cartID, events.TopicCartUpdated)
	return d, nil
}

// RemoveDiscount resets the discount to the zero percentage default.
func (s *Service) RemoveDiscount(ctx context.Context, cartID uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if err := s.Store.SetDiscount(ctx, cartID, pricing.Discount{Kind: pricing.DiscountPercentage}); err != nil {
		return err
	}
	s.touchAndEmit(ctx, cartID, events.TopicCartUpdated)
	return nil
}

// AttachCustomer links a customer reference to the cart for receipt lookup.
func (s *Service) AttachCustomer(ctx context.Context, cartID uuid.UUID, customerID *uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if err := s.Store.SetCustomer(ctx, cartID, customerID); err != nil {
		return err
	}
	s.touchAndEmit(ctx, cartID, events.TopicCartUpdated)
	return nil
}

// Totals recomputes the derived cart summary from current lines and the
// stored discount.
func (s *Service) Totals(ctx context.Context, cartID uuid.UUID) (pricing.Summary, []Item, error) {
	if s == nil || s.Store == nil {
		return pricing.Summary{}, nil, errors.New("cart service not configured")
	}
	c, err := s.Store.GetCart(ctx, cartID)
	if err != nil {
		return pricing.Summary{}, nil, err
	}
	items, err := s.Store.ListItems(ctx, cartID)
	if err != nil {
		return pricing.Summary{}, nil, err
	}
	lines := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice})
	}
	return pricing.Compute(lines, c.Discount, s.taxBps()), items, nil
}

// SweepExpired deletes carts whose TTL elapsed before now.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	if s == nil || s.Store == nil {
		return 0, errors.New("cart service not configured")
	}
	return s.Store.DeleteExpired(ctx, s.now())
}

func (s *Service) touchAndEmit(ctx context.Context, cartID uuid.UUID, topic string) {
	_ = s.Store.TouchCart(ctx, cartID, s.now().Add(s.ttl()))
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, topic, cartID, map[string]any{"cartId": cartID.String()})
	}
}
