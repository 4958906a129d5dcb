package pricing

import "math"

// Money represents a monetary value in whole currency units (TZS has no minor units).
type Money = int64

// DiscountKind selects how a cart-level discount value is interpreted.
type DiscountKind string

const (
	// DiscountPercentage interprets the discount value as a percentage of the subtotal (0-100).
	DiscountPercentage DiscountKind = "percentage"
	// DiscountFixed interprets the discount value as an absolute amount.
	DiscountFixed DiscountKind = "fixed"
)

// ParseDiscountKind maps arbitrary input onto a supported discount kind,
// defaulting to percentage.
func ParseDiscountKind(raw string) DiscountKind {
	if DiscountKind(raw) == DiscountFixed {
		return DiscountFixed
	}
	return DiscountPercentage
}

// Discount is the single whole-cart discount applied by the operator.
// The zero value means no discount.
type Discount struct {
	Kind  DiscountKind
	Value float64
}

// Item describes a line item used for totals calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Subtotal is the derived line total, recomputed from quantity and unit
// price rather than stored independently of its inputs.
func (it Item) Subtotal() Money {
	if it.Qty <= 0 || it.UnitPrice < 0 {
		return 0
	}
	return Money(it.Qty) * it.UnitPrice
}

// Summary aggregates computed cart totals.
type Summary struct {
	Subtotal   Money
	Discount   Money
	FinalPrice Money
	Tax        Money
	Total      Money
}

// Compute calculates cart totals for the provided lines, discount and tax
// rate (basis points). It is pure and side-effect free; the discount can
// never drive the final price below zero.
func Compute(items []Item, d Discount, taxBps int) Summary {
	var subtotal Money
	for _, it := range items {
		subtotal += it.Subtotal()
	}
	discount := discountAmount(subtotal, d)
	final := subtotal - discount
	if final < 0 {
		final = 0
	}
	if taxBps < 0 {
		taxBps = 0
	}
	tax := (final * Money(taxBps)) / 10000
	return Summary{
		Subtotal:   subtotal,
		Discount:   discount,
		FinalPrice: final,
		Tax:        tax,
		Total:      final + tax,
	}
}

func discountAmount(subtotal Money, d Discount) Money {
	if d.Value <= 0 || subtotal <= 0 {
		return 0
	}
	var amount Money
	switch d.Kind {
	case DiscountFixed:
		amount = Money(math.Round(d.Value))
	default:
		amount = Money(math.Round(float64(subtotal) * d.Value / 100))
	}
	if amount > subtotal {
		amount = subtotal
	}
	return amount
}
