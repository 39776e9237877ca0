package s4_quotas

import (
	"math"

	"github.com/wonny/liga/backend/internal/contracts"
)

// Compute derives the movement quotas for a population of n ranking entries.
// A nil configuration means system defaults: no promotion, no relegation,
// the default playoff buffer.
// ⭐ SSOT: S4 쿼터 계산은 여기서만
func Compute(n int, cfg *contracts.Configuration) (contracts.Quotas, error) {
	if n < 0 {
		return contracts.Quotas{}, &contracts.InputError{Record: "population", Index: -1, Field: "size", Message: "must be >= 0"}
	}
	if err := cfg.Validate(); err != nil {
		return contracts.Quotas{}, err
	}

	quotas := contracts.Quotas{Playoff: cfg.PlayoffSlots()}
	if cfg == nil {
		return quotas, nil
	}

	quotas.Promotion = slots(n, cfg.FixedPromotionSlots, cfg.PromotionPercentage)
	quotas.Relegation = slots(n, cfg.FixedRelegationSlots, cfg.RelegationPercentage)
	return quotas, nil
}

// slots resolves one direction: fixed wins over percentage
func slots(n int, fixed *int, percentage *float64) int {
	if fixed != nil {
		return clamp(*fixed, 0, n)
	}
	if percentage != nil {
		return FromPercentage(n, *percentage)
	}
	return 0
}

// FromPercentage rounds n*pct/100 down, with a minimum of one slot when
// both n and pct are positive
func FromPercentage(n int, pct float64) int {
	if n <= 0 || pct <= 0 {
		return 0
	}
	count := int(math.Floor(float64(n) * pct / 100))
	if count < 1 {
		count = 1
	}
	return clamp(count, 0, n)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
