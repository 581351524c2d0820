package model

import "time"

// PushSubscription is a browser push endpoint watching bikes for availability.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Bikes []*Bike `gorm:"many2many:subscription_bike_mapping;"`
}
