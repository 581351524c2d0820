package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bike-rental-backend/internal/model"
	"bike-rental-backend/internal/parse"
	"bike-rental-backend/internal/pricing"
	"bike-rental-backend/internal/rental"
)

type createReservationRequest struct {
	BikeID           int64  `json:"bike_id" binding:"required"`
	UserID           int64  `json:"user_id" binding:"required"`
	Start            string `json:"start" binding:"required"`
	End              string `json:"end" binding:"required"`
	PricingType      string `json:"pricing_type"`
	PaymentReference string `json:"payment_reference"`
}

type reservationResponse struct {
	Reservation model.Reservation `json:"reservation"`
	Quote       *pricing.Quote    `json:"quote,omitempty"`
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := parse.Window(req.Start, req.End)
	if err != nil {
		respondError(c, err)
		return
	}
	pricingType, err := pricing.ParsePricingType(req.PricingType)
	if err != nil {
		respondError(c, err)
		return
	}

	r, q, err := h.rentals.Reserve(c.Request.Context(), rental.ReserveRequest{
		BikeID:           req.BikeID,
		UserID:           req.UserID,
		Window:           w,
		PricingType:      pricingType,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservationResponse{Reservation: r, Quote: &q})
}

// PickupReservation handles POST /api/reservations/:id/pickup.
func (h *Handler) PickupReservation(c *gin.Context) {
	id, err := parse.ID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	r, err := h.rentals.Pickup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationResponse{Reservation: r})
}

type returnReservationRequest struct {
	ActualKm decimal.Decimal `json:"actual_km"`
}

// ReturnReservation handles POST /api/reservations/:id/return.
func (h *Handler) ReturnReservation(c *gin.Context) {
	id, err := parse.ID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	// An empty body reports no distance.
	var req returnReservationRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.ActualKm.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actual_km must not be negative"})
		return
	}

	r, q, err := h.rentals.Return(c.Request.Context(), id, req.ActualKm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationResponse{Reservation: r, Quote: &q})
}

// CancelReservation handles POST /api/reservations/:id/cancel.
func (h *Handler) CancelReservation(c *gin.Context) {
	id, err := parse.ID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	r, err := h.rentals.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationResponse{Reservation: r})
}
