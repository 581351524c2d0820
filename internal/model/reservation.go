package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation statuses.
const (
	ReservationConfirmed = "confirmed"
	ReservationOngoing   = "ongoing"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
)

// Reservation is a confirmed booking of a bike for [StartTime, EndTime).
type Reservation struct {
	ID               int64            `gorm:"primaryKey" json:"id"`
	BikeID           int64            `gorm:"index:idx_reservation_bike_status;not null" json:"bike_id"`
	UserID           int64            `gorm:"index;not null" json:"user_id"`
	Status           string           `gorm:"index:idx_reservation_bike_status;size:16;not null" json:"status"`
	StartTime        time.Time        `gorm:"not null" json:"start_time"`
	EndTime          *time.Time       `json:"end_time,omitempty"` // nil for open-ended rentals
	PickedUpAt       *time.Time       `json:"picked_up_at,omitempty"`
	ReturnedAt       *time.Time       `json:"returned_at,omitempty"`
	PricingType      string           `gorm:"size:16" json:"pricing_type,omitempty"`
	QuotedTotal      decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"quoted_total"`
	FinalTotal       *decimal.Decimal `gorm:"type:numeric(12,2)" json:"final_total,omitempty"`
	ActualKm         *decimal.Decimal `gorm:"type:numeric(10,2)" json:"actual_km,omitempty"`
	PaymentReference string           `gorm:"size:128" json:"payment_reference,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
