package pricing

import "errors"

var (
	// ErrConfiguration means no pricing scheme can price the bike for the window.
	ErrConfiguration = errors.New("pricing unavailable")
	// ErrInvalidPricingType means the requested slab type is unknown or not populated.
	ErrInvalidPricingType = errors.New("invalid pricing type")
)
