package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"bike-rental-backend/internal/parse"
	"bike-rental-backend/internal/pricing"
	"bike-rental-backend/internal/rental"
	"bike-rental-backend/internal/store"
	"bike-rental-backend/internal/window"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	rentals *rental.Service
	store   store.Store
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(rentals *rental.Service, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		rentals: rentals,
		store:   s,
		webpush: webpushOptions,
	}
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, parse.ErrInvalidInput),
		errors.Is(err, window.ErrInvalidWindow),
		errors.Is(err, pricing.ErrInvalidPricingType):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pricing.ErrConfiguration):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "pricing unavailable", "detail": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, rental.ErrNotAvailable),
		errors.Is(err, rental.ErrInvalidTransition),
		errors.Is(err, store.ErrReservationConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
