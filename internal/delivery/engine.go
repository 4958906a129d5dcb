package delivery

import (
	"math"
	"time"

	"github.com/amara-oss/backend-duka/internal/pricing"
)

// Method identifies a delivery speed tier.
type Method string

const (
	MethodStandard Method = "standard"
	MethodExpress  Method = "express"
	MethodSameDay  Method = "same-day"
)

// ParseMethod normalises a raw method string, falling back to standard for
// anything unrecognised.
func ParseMethod(raw string) Method {
	switch Method(raw) {
	case MethodExpress:
		return MethodExpress
	case MethodSameDay:
		return MethodSameDay
	default:
		return MethodStandard
	}
}

// Multiplier returns the fee multiplier for the method. Unknown values fall
// back to the standard tier rather than failing.
func (m Method) Multiplier() float64 {
	switch m {
	case MethodExpress:
		return 1.5
	case MethodSameDay:
		return 2.0
	default:
		return 1.0
	}
}

// Fee pipeline constants. These bands were fixed in the original fee schedule
// and are not tenant configurable.
const (
	distanceBlockKm  = 5.0
	distanceBlockFee = 500.0

	rushHourStart = 17
	rushHourEnd   = 19
	lateNightFrom = 22
	lateNightTo   = 6

	rushHourMultiplier  = 1.2
	lateNightMultiplier = 1.3

	largeOrderThreshold    = pricing.Money(50_000)
	mediumOrderThreshold   = pricing.Money(25_000)
	largeOrderMultiplier   = 0.8
	mediumOrderMultiplier  = 0.9
	defaultOrderMultiplier = 1.0
)

// Settings is the externally supplied delivery configuration. It is read-only
// to the calculator.
type Settings struct {
	Enabled               bool                     `json:"enabled"`
	DefaultFee            pricing.Money            `json:"defaultFee"`
	FreeDeliveryThreshold pricing.Money            `json:"freeDeliveryThreshold"`
	AreaFees              map[string]pricing.Money `json:"areaFees"`
}

// BaseFee resolves the starting fee for an optional named area, falling back
// to the default fee when the area is unknown.
func (s Settings) BaseFee(area string) pricing.Money {
	if area != "" {
		if fee, ok := s.AreaFees[area]; ok {
			return fee
		}
	}
	return s.DefaultFee
}

// Input captures one fee calculation request. Now is injected by the caller
// so the time-of-day band stays deterministic and testable.
type Input struct {
	Subtotal   pricing.Money
	Method     Method
	DistanceKm float64
	Area       string
	Now        time.Time
}

// Breakdown reports the incremental contribution of each pipeline stage so
// the till can render a line-item fee explanation.
type Breakdown struct {
	MethodPremium float64 `json:"methodPremium"`
	TimePremium   float64 `json:"timePremium"`
	DistanceFee   float64 `json:"distanceFee"`
	OrderDiscount float64 `json:"orderDiscount"`
}

// Quote is the computed fee with every intermediate multiplier retained.
// Only FinalFee is rounded; intermediate stages keep full precision.
type Quote struct {
	BaseFee                 float64       `json:"baseFee"`
	MethodMultiplier        float64       `json:"methodMultiplier"`
	TimeMultiplier          float64       `json:"timeMultiplier"`
	OrderDiscountMultiplier float64       `json:"orderDiscountMultiplier"`
	DistanceFee             float64       `json:"distanceFee"`
	FinalFee                pricing.Money `json:"finalFee"`
	IsFreeDelivery          bool          `json:"isFreeDelivery"`
	Breakdown               Breakdown     `json:"breakdown"`
}

// Calculate runs the layered fee pipeline. The same (settings, input) pair
// always yields the same quote; malformed numeric input is clamped, never
// rejected.
func Calculate(s Settings, in Input) Quote {
	if !s.Enabled {
		return Quote{MethodMultiplier: 1, TimeMultiplier: 1, OrderDiscountMultiplier: 1}
	}

	subtotal := in.Subtotal
	if subtotal < 0 {
		subtotal = 0
	}
	base := float64(s.BaseFee(in.Area))

	// The threshold is inclusive. The base fee that would have applied is
	// still reported for display and auditing.
	if subtotal >= s.FreeDeliveryThreshold {
		return Quote{
			BaseFee:                 base,
			MethodMultiplier:        1,
			TimeMultiplier:          1,
			OrderDiscountMultiplier: 1,
			IsFreeDelivery:          true,
		}
	}

	methodMul := in.Method.Multiplier()
	timeMul := timeOfDayMultiplier(in.Now)
	orderMul := orderSizeMultiplier(subtotal)
	distance := distanceFee(in.DistanceKm)

	methodFee := base * methodMul
	timeFee := methodFee * timeMul
	preDiscount := timeFee + distance
	final := pricing.Money(math.Round(preDiscount * orderMul))

	return Quote{
		BaseFee:                 base,
		MethodMultiplier:        methodMul,
		TimeMultiplier:          timeMul,
		OrderDiscountMultiplier: orderMul,
		DistanceFee:             distance,
		FinalFee:                final,
		Breakdown: Breakdown{
			MethodPremium: methodFee - base,
			TimePremium:   timeFee - methodFee,
			DistanceFee:   distance,
			OrderDiscount: preDiscount - float64(final),
		},
	}
}

// distanceFee charges a flat increment for every started distance block.
func distanceFee(km float64) float64 {
	if km <= 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return 0
	}
	return math.Ceil(km/distanceBlockKm) * distanceBlockFee
}

// timeOfDayMultiplier applies at most one band. Rush hour is checked first;
// the two ranges are disjoint by construction.
func timeOfDayMultiplier(now time.Time) float64 {
	hour := now.Hour()
	switch {
	case hour >= rushHourStart && hour <= rushHourEnd:
		return rushHourMultiplier
	case hour >= lateNightFrom || hour <= lateNightTo:
		return lateNightMultiplier
	default:
		return 1.0
	}
}

func orderSizeMultiplier(subtotal pricing.Money) float64 {
	switch {
	case subtotal >= largeOrderThreshold:
		return largeOrderMultiplier
	case subtotal >= mediumOrderThreshold:
		return mediumOrderMultiplier
	default:
		return defaultOrderMultiplier
	}
}
