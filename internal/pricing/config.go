package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	one         = decimal.NewFromInt(1)
	twelve      = decimal.NewFromInt(12)
	twentyFour  = decimal.NewFromInt(24)
	hundred     = decimal.NewFromInt(100)
	hoursInWeek = decimal.NewFromInt(168)

	DefaultGSTPercentage          = decimal.NewFromInt(18)
	DefaultWeekendSurgeMultiplier = one
)

// Strategy names the scheme that produced a quote.
type Strategy string

const (
	StrategyLegacy Strategy = "legacy"
	StrategySlab   Strategy = "slab"
	StrategySimple Strategy = "simple"
)

// PricingType selects a slab. The zero value means "not specified".
type PricingType string

const (
	Hourly PricingType = "hourly"
	Daily  PricingType = "daily"
	Weekly PricingType = "weekly"
)

// ParsePricingType accepts hourly, daily, weekly or an empty string.
func ParsePricingType(s string) (PricingType, error) {
	switch t := PricingType(strings.ToLower(strings.TrimSpace(s))); t {
	case "", Hourly, Daily, Weekly:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPricingType, s)
	}
}

// referenceHours is the nominal duration a slab price covers.
func (t PricingType) referenceHours() decimal.Decimal {
	switch t {
	case Daily:
		return twentyFour
	case Weekly:
		return hoursInWeek
	default:
		return one
	}
}

// BookingRule is a slab's minimum booking rule.
type BookingRule string

const (
	RuleNone        BookingRule = "none"
	RuleMinDuration BookingRule = "min_duration"
	RuleMinPrice    BookingRule = "min_price"
)

// Slab is one pricing tier of the slab scheme.
type Slab struct {
	Price              decimal.Decimal `json:"price"`
	DurationMinHours   decimal.Decimal `json:"duration_min_hours"`
	DurationMaxHours   decimal.Decimal `json:"duration_max_hours"`
	IncludedKm         int             `json:"included_km"`
	ExtraKmPrice       decimal.Decimal `json:"extra_km_price"`
	MinimumBookingRule BookingRule     `json:"minimum_booking_rule"`
	MinimumValue       decimal.Decimal `json:"minimum_value"`
}

// SimpleTier is the 12-hour package scheme.
type SimpleTier struct {
	Price12Hours *decimal.Decimal `json:"price_12_hours,omitempty"`
	// HourlyRates13to24[i] is the rate of hour 13+i.
	HourlyRates13to24 [12]*decimal.Decimal `json:"hourly_rates_13_to_24"`
	// PricePerWeek is stored but never selected automatically.
	PricePerWeek *decimal.Decimal `json:"price_per_week,omitempty"`
}

func (s *SimpleTier) hasHourlyRates() bool {
	for _, r := range s.HourlyRates13to24 {
		if r != nil {
			return true
		}
	}
	return false
}

func (s *SimpleTier) populated() bool {
	return s != nil && (s.Price12Hours != nil || s.PricePerWeek != nil || s.hasHourlyRates())
}

// rate returns the rate of the given hour (13..24), zero when unset.
func (s *SimpleTier) rate(hour int) decimal.Decimal {
	if hour < 13 || hour > 24 || s.HourlyRates13to24[hour-13] == nil {
		return decimal.Zero
	}
	return *s.HourlyRates13to24[hour-13]
}

// Config is a bike's pricing configuration as read for a single query.
type Config struct {
	LegacyHourlyRate       *decimal.Decimal      `json:"legacy_hourly_rate,omitempty"`
	KmLimitPerRental       *int                  `json:"km_limit_per_rental,omitempty"`
	Slabs                  map[PricingType]*Slab `json:"slabs,omitempty"`
	SimpleTier             *SimpleTier           `json:"simple_tier,omitempty"`
	WeekendSurgeMultiplier *decimal.Decimal      `json:"weekend_surge_multiplier,omitempty"` // nil means 1.0
	GSTPercentage          *decimal.Decimal      `json:"gst_percentage,omitempty"`           // nil means 18
}

func (c Config) gst() decimal.Decimal {
	if c.GSTPercentage == nil {
		return DefaultGSTPercentage
	}
	return *c.GSTPercentage
}

func (c Config) surge() decimal.Decimal {
	if c.WeekendSurgeMultiplier == nil {
		return DefaultWeekendSurgeMultiplier
	}
	return *c.WeekendSurgeMultiplier
}

func (c Config) includedKm() int {
	if c.KmLimitPerRental == nil {
		return 0
	}
	return *c.KmLimitPerRental
}

func (c Config) populatedSlabs() map[PricingType]Slab {
	out := make(map[PricingType]Slab, len(c.Slabs))
	for t, s := range c.Slabs {
		if s != nil {
			out[t] = *s
		}
	}
	return out
}

// Validate checks field ranges. It does not check that a scheme applies.
func (c Config) Validate() error {
	if c.LegacyHourlyRate != nil && !c.LegacyHourlyRate.IsPositive() {
		return fmt.Errorf("%w: legacy hourly rate must be positive", ErrConfiguration)
	}
	if c.KmLimitPerRental != nil && *c.KmLimitPerRental < 0 {
		return fmt.Errorf("%w: km limit must not be negative", ErrConfiguration)
	}
	if c.surge().LessThan(one) {
		return fmt.Errorf("%w: weekend surge multiplier %s is below 1", ErrConfiguration, c.surge())
	}
	if gst := c.gst(); gst.IsNegative() || gst.GreaterThan(hundred) {
		return fmt.Errorf("%w: gst percentage %s is outside [0,100]", ErrConfiguration, gst)
	}
	for t, s := range c.Slabs {
		if s == nil {
			continue
		}
		if t != Hourly && t != Daily && t != Weekly {
			return fmt.Errorf("%w: unknown slab type %q", ErrConfiguration, t)
		}
		if err := s.validate(); err != nil {
			return fmt.Errorf("%w: %s slab: %s", ErrConfiguration, t, err)
		}
	}
	if st := c.SimpleTier; st != nil {
		if st.Price12Hours != nil && !st.Price12Hours.IsPositive() {
			return fmt.Errorf("%w: 12-hour price must be positive", ErrConfiguration)
		}
		if st.PricePerWeek != nil && !st.PricePerWeek.IsPositive() {
			return fmt.Errorf("%w: weekly price must be positive", ErrConfiguration)
		}
		for i, r := range st.HourlyRates13to24 {
			if r != nil && !r.IsPositive() {
				return fmt.Errorf("%w: rate for hour %d must be positive", ErrConfiguration, 13+i)
			}
		}
	}
	return nil
}

func (s Slab) validate() error {
	switch {
	case !s.Price.IsPositive():
		return fmt.Errorf("price must be positive")
	case s.DurationMinHours.IsNegative():
		return fmt.Errorf("minimum duration must not be negative")
	case !s.DurationMaxHours.IsPositive() || s.DurationMaxHours.LessThan(s.DurationMinHours):
		return fmt.Errorf("maximum duration must be positive and not below the minimum")
	case s.IncludedKm < 0:
		return fmt.Errorf("included km must not be negative")
	case s.ExtraKmPrice.IsNegative():
		return fmt.Errorf("extra km price must not be negative")
	case s.MinimumValue.IsNegative():
		return fmt.Errorf("minimum value must not be negative")
	}
	switch s.MinimumBookingRule {
	case "", RuleNone, RuleMinDuration, RuleMinPrice:
		return nil
	default:
		return fmt.Errorf("unknown minimum booking rule %q", s.MinimumBookingRule)
	}
}
