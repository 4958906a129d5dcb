package pricing

import "testing"

func TestComputePercentageDiscount(t *testing.T) {
	items := []Item{
		{Qty: 2, UnitPrice: 1000},
		{Qty: 3, UnitPrice: 500},
	}
	got := Compute(items, Discount{Kind: DiscountPercentage, Value: 10}, 1800)
	want := Summary{Subtotal: 3500, Discount: 350, FinalPrice: 3150, Tax: 567, Total: 3717}
	if got != want {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	items := []Item{{Qty: 4, UnitPrice: 2500}}
	d := Discount{Kind: DiscountFixed, Value: 1500}
	first := Compute(items, d, 1800)
	second := Compute(items, d, 1800)
	if first != second {
		t.Fatalf("expected identical summaries, got %+v then %+v", first, second)
	}
}

func TestComputeFixedDiscountCappedAtSubtotal(t *testing.T) {
	items := []Item{{Qty: 1, UnitPrice: 2000}}
	got := Compute(items, Discount{Kind: DiscountFixed, Value: 99999}, 1800)
	if got.Discount != 2000 {
		t.Fatalf("expected discount capped at 2000, got %d", got.Discount)
	}
	if got.FinalPrice != 0 || got.Tax != 0 || got.Total != 0 {
		t.Fatalf("expected zero final price and tax, got %+v", got)
	}
}

func TestComputeOversizedPercentageNeverNegative(t *testing.T) {
	items := []Item{{Qty: 2, UnitPrice: 750}}
	got := Compute(items, Discount{Kind: DiscountPercentage, Value: 250}, 1800)
	if got.FinalPrice < 0 {
		t.Fatalf("final price went negative: %+v", got)
	}
	if got.Discount != got.Subtotal {
		t.Fatalf("expected discount capped at subtotal, got %+v", got)
	}
}

func TestComputeSkipsNonPositiveLines(t *testing.T) {
	items := []Item{
		{Qty: 0, UnitPrice: 900},
		{Qty: -2, UnitPrice: 900},
		{Qty: 3, UnitPrice: 300},
	}
	got := Compute(items, Discount{}, 1800)
	if got.Subtotal != 900 {
		t.Fatalf("expected subtotal 900, got %d", got.Subtotal)
	}
}

func TestItemSubtotalConsistency(t *testing.T) {
	it := Item{Qty: 7, UnitPrice: 1250}
	if it.Subtotal() != 8750 {
		t.Fatalf("expected 8750, got %d", it.Subtotal())
	}
}

func TestComputeNoDiscountNoTax(t *testing.T) {
	got := Compute([]Item{{Qty: 1, UnitPrice: 100}}, Discount{}, 0)
	if got.Total != 100 || got.Tax != 0 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestParseDiscountKind(t *testing.T) {
	cases := map[string]DiscountKind{
		"fixed":      DiscountFixed,
		"percentage": DiscountPercentage,
		"":           DiscountPercentage,
		"bogus":      DiscountPercentage,
	}
	for raw, want := range cases {
		if got := ParseDiscountKind(raw); got != want {
			t.Fatalf("ParseDiscountKind(%q) = %q, want %q", raw, got, want)
		}
	}
}
