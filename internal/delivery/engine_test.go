package delivery

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2025, time.March, 12, hour, 0, 0, 0, time.UTC)
}

func enabledSettings() Settings {
	return Settings{
		Enabled:               true,
		DefaultFee:            2000,
		FreeDeliveryThreshold: 100_000,
	}
}

func TestCalculateExpressRushHourScenario(t *testing.T) {
	q := Calculate(enabledSettings(), Input{
		Subtotal:   30_000,
		Method:     MethodExpress,
		DistanceKm: 12,
		Now:        at(18),
	})
	if q.IsFreeDelivery {
		t.Fatal("expected paid delivery")
	}
	if q.BaseFee != 2000 {
		t.Fatalf("base fee = %v, want 2000", q.BaseFee)
	}
	if q.MethodMultiplier != 1.5 || q.TimeMultiplier != 1.2 || q.OrderDiscountMultiplier != 0.9 {
		t.Fatalf("unexpected multipliers: %+v", q)
	}
	if q.DistanceFee != 1500 {
		t.Fatalf("distance fee = %v, want 1500", q.DistanceFee)
	}
	if q.FinalFee != 4590 {
		t.Fatalf("final fee = %d, want 4590", q.FinalFee)
	}
	if q.Breakdown.MethodPremium != 1000 {
		t.Fatalf("method premium = %v, want 1000", q.Breakdown.MethodPremium)
	}
	if q.Breakdown.TimePremium != 600 {
		t.Fatalf("time premium = %v, want 600", q.Breakdown.TimePremium)
	}
	if q.Breakdown.OrderDiscount != 510 {
		t.Fatalf("order discount = %v, want 510", q.Breakdown.OrderDiscount)
	}
}

func TestCalculateDisabledReturnsZeroFee(t *testing.T) {
	s := enabledSettings()
	s.Enabled = false
	q := Calculate(s, Input{Subtotal: 10, Method: MethodSameDay, DistanceKm: 40, Now: at(23)})
	if q.IsFreeDelivery {
		t.Fatal("disabled delivery must not report free delivery")
	}
	if q.FinalFee != 0 || q.BaseFee != 0 || q.DistanceFee != 0 {
		t.Fatalf("expected all fees zero, got %+v", q)
	}
}

func TestCalculateFreeThresholdIsInclusive(t *testing.T) {
	q := Calculate(enabledSettings(), Input{Subtotal: 100_000, Method: MethodExpress, DistanceKm: 3, Now: at(12)})
	if !q.IsFreeDelivery {
		t.Fatal("subtotal equal to threshold must qualify for free delivery")
	}
	if q.FinalFee != 0 {
		t.Fatalf("final fee = %d, want 0", q.FinalFee)
	}
	if q.BaseFee != 2000 {
		t.Fatalf("free delivery must still report the base fee, got %v", q.BaseFee)
	}
}

func TestCalculateAreaFeeOverride(t *testing.T) {
	s := enabledSettings()
	s.AreaFees = map[string]int64{"Kariakoo": 3500}

	q := Calculate(s, Input{Subtotal: 5000, Method: MethodStandard, Area: "Kariakoo", Now: at(10)})
	if q.BaseFee != 3500 {
		t.Fatalf("base fee = %v, want area override 3500", q.BaseFee)
	}

	q = Calculate(s, Input{Subtotal: 5000, Method: MethodStandard, Area: "Unknown", Now: at(10)})
	if q.BaseFee != 2000 {
		t.Fatalf("unknown area must fall back to default fee, got %v", q.BaseFee)
	}
}

func TestCalculateUnknownMethodFallsBackToStandard(t *testing.T) {
	q := Calculate(enabledSettings(), Input{Subtotal: 5000, Method: Method("drone"), Now: at(10)})
	if q.MethodMultiplier != 1.0 {
		t.Fatalf("unknown method multiplier = %v, want 1.0", q.MethodMultiplier)
	}
}

func TestDistanceFeeStepBoundaries(t *testing.T) {
	cases := []struct {
		km   float64
		want float64
	}{
		{0, 0},
		{-4, 0},
		{0.1, 500},
		{5, 500},
		{5.001, 1000},
		{10, 1000},
		{12, 1500},
	}
	for _, tc := range cases {
		if got := distanceFee(tc.km); got != tc.want {
			t.Fatalf("distanceFee(%v) = %v, want %v", tc.km, got, tc.want)
		}
	}
}

func TestTimeOfDayBands(t *testing.T) {
	cases := []struct {
		hour int
		want float64
	}{
		{7, 1.0}, {16, 1.0}, {20, 1.0}, {21, 1.0},
		{17, 1.2}, {18, 1.2}, {19, 1.2},
		{22, 1.3}, {23, 1.3}, {0, 1.3}, {6, 1.3},
	}
	for _, tc := range cases {
		if got := timeOfDayMultiplier(at(tc.hour)); got != tc.want {
			t.Fatalf("hour %d multiplier = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestOrderSizeMultiplierTiers(t *testing.T) {
	cases := []struct {
		subtotal int64
		want     float64
	}{
		{24_999, 1.0},
		{25_000, 0.9},
		{49_999, 0.9},
		{50_000, 0.8},
	}
	for _, tc := range cases {
		if got := orderSizeMultiplier(tc.subtotal); got != tc.want {
			t.Fatalf("orderSizeMultiplier(%d) = %v, want %v", tc.subtotal, got, tc.want)
		}
	}
}

func TestCalculateDeterministic(t *testing.T) {
	in := Input{Subtotal: 60_000, Method: MethodSameDay, DistanceKm: 7.5, Area: "Mbezi", Now: at(22)}
	s := enabledSettings()
	s.FreeDeliveryThreshold = 1_000_000
	first := Calculate(s, in)
	second := Calculate(s, in)
	if first != second {
		t.Fatalf("expected identical quotes, got %+v then %+v", first, second)
	}
}

func TestCalculateNegativeSubtotalClamped(t *testing.T) {
	q := Calculate(enabledSettings(), Input{Subtotal: -500, Method: MethodStandard, Now: at(10)})
	if q.IsFreeDelivery {
		t.Fatal("negative subtotal must not be treated as free delivery")
	}
	if q.OrderDiscountMultiplier != 1.0 {
		t.Fatalf("order multiplier = %v, want 1.0", q.OrderDiscountMultiplier)
	}
}
