package contracts

// DefaultPlayoffSlots is the buffer size per zone transition when nothing is configured
const DefaultPlayoffSlots = 2

// Configuration holds the movement rules for one division or stage.
// Optional fields are nil when not configured; fixed slots win over percentages per direction.
// ⭐ SSOT: 모든 호출자가 동일한 타입을 사용 (fallback 로직 중복 금지)
type Configuration struct {
	PromotionPercentage  *float64 `json:"promotion_percentage,omitempty" yaml:"promotion_percentage,omitempty"`
	RelegationPercentage *float64 `json:"relegation_percentage,omitempty" yaml:"relegation_percentage,omitempty"`
	FixedPromotionSlots  *int     `json:"fixed_promotion_slots,omitempty" yaml:"fixed_promotion_slots,omitempty"`
	FixedRelegationSlots *int     `json:"fixed_relegation_slots,omitempty" yaml:"fixed_relegation_slots,omitempty"`
	PlayoffSlotsPerZone  *int     `json:"playoff_slots_per_zone,omitempty" yaml:"playoff_slots_per_zone,omitempty"`
}

// PlayoffSlots returns the configured buffer size or the default
func (c *Configuration) PlayoffSlots() int {
	if c == nil || c.PlayoffSlotsPerZone == nil {
		return DefaultPlayoffSlots
	}
	return *c.PlayoffSlotsPerZone
}

// Validate checks ranges of the configured values.
// Fixed slot counts are not range checked; quota computation clamps them to [0, n].
func (c *Configuration) Validate() error {
	if c == nil {
		return nil
	}
	if err := validatePercentage("promotion_percentage", c.PromotionPercentage); err != nil {
		return err
	}
	if err := validatePercentage("relegation_percentage", c.RelegationPercentage); err != nil {
		return err
	}
	return validateSlots("playoff_slots_per_zone", c.PlayoffSlotsPerZone)
}

func validatePercentage(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > 100 {
		return &InputError{Record: "configuration", Index: -1, Field: field, Message: "must be in range [0, 100]"}
	}
	return nil
}

func validateSlots(field string, v *int) error {
	if v == nil {
		return nil
	}
	if *v < 0 {
		return &InputError{Record: "configuration", Index: -1, Field: field, Message: "must be >= 0"}
	}
	return nil
}

// Quotas is the number of slots per movement direction for one division snapshot
type Quotas struct {
	Promotion  int `json:"promotion"`
	Relegation int `json:"relegation"`
	Playoff    int `json:"playoff"`
}
