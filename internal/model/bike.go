package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bike is a rentable bike and its pricing columns.
type Bike struct {
	ID               int64            `gorm:"primaryKey" json:"id"`
	Name             string           `gorm:"size:256;not null" json:"name"`
	Label            string           `gorm:"uniqueIndex;size:64;not null" json:"label"`
	LegacyHourlyRate *decimal.Decimal `gorm:"type:numeric(10,2)" json:"legacy_hourly_rate,omitempty"`
	KmLimitPerRental *int             `json:"km_limit_per_rental,omitempty"`

	// Simple tier
	Price12Hours      *decimal.Decimal   `gorm:"type:numeric(10,2)" json:"price_12_hours,omitempty"`
	HourlyRates13to24 []*decimal.Decimal `gorm:"serializer:json" json:"hourly_rates_13_to_24,omitempty"`
	PricePerWeek      *decimal.Decimal   `gorm:"type:numeric(10,2)" json:"price_per_week,omitempty"`

	WeekendSurgeMultiplier *decimal.Decimal `gorm:"type:numeric(6,3)" json:"weekend_surge_multiplier,omitempty"` // nil means 1.0
	GSTPercentage          *decimal.Decimal `gorm:"type:numeric(5,2)" json:"gst_percentage,omitempty"`           // nil means 18
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`

	// Associations
	Slabs []BikeSlab `gorm:"foreignKey:BikeID" json:"slabs,omitempty"`
}

// BikeSlab is one hourly, daily or weekly pricing slab of a bike.
type BikeSlab struct {
	ID                 int64           `gorm:"primaryKey" json:"id"`
	BikeID             int64           `gorm:"uniqueIndex:idx_bike_slab_type;not null" json:"bike_id"`
	Type               string          `gorm:"uniqueIndex:idx_bike_slab_type;size:16;not null" json:"type"`
	Price              decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	DurationMinHours   decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0" json:"duration_min_hours"`
	DurationMaxHours   decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"duration_max_hours"`
	IncludedKm         int             `gorm:"not null;default:0" json:"included_km"`
	ExtraKmPrice       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"extra_km_price"`
	MinimumBookingRule string          `gorm:"size:16;not null;default:'none'" json:"minimum_booking_rule"`
	MinimumValue       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"minimum_value"`
}
