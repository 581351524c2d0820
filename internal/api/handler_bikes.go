package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bike-rental-backend/internal/parse"
	"bike-rental-backend/internal/pricing"
)

// ListBikes handles GET /api/bikes.
func (h *Handler) ListBikes(c *gin.Context) {
	bikes, err := h.store.ListBikes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bikes)
}

// GetBike handles GET /api/bikes/:bike_id.
func (h *Handler) GetBike(c *gin.Context) {
	bikeID, err := parse.ID("bike_id", c.Param("bike_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	bike, err := h.store.GetBike(c.Request.Context(), bikeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bike)
}

// GetAvailability handles GET /api/bikes/:bike_id/availability?start=&end=.
func (h *Handler) GetAvailability(c *gin.Context) {
	bikeID, err := parse.ID("bike_id", c.Param("bike_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	w, err := parse.Window(c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}

	avail, err := h.rentals.CheckAvailability(c.Request.Context(), bikeID, w)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, avail)
}

// GetQuote handles GET /api/bikes/:bike_id/quote?start=&end=&pricing_type=&actual_km=.
func (h *Handler) GetQuote(c *gin.Context) {
	bikeID, err := parse.ID("bike_id", c.Param("bike_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	w, err := parse.Window(c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}
	pricingType, err := pricing.ParsePricingType(c.Query("pricing_type"))
	if err != nil {
		respondError(c, err)
		return
	}
	km, err := parse.Km(c.Query("actual_km"))
	if err != nil {
		respondError(c, err)
		return
	}

	q, err := h.rentals.QuotePrice(c.Request.Context(), bikeID, w, pricing.Options{PricingType: pricingType, ActualKm: km})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}
