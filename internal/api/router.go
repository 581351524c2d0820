package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bike-rental-backend/config"
	"bike-rental-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(log))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	// The catalog changes only through the database, so a short TTL is enough.
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/bikes", caching, h.ListBikes)
		api.GET("/bikes/:bike_id", caching, h.GetBike)
		api.GET("/bikes/:bike_id/availability", h.GetAvailability)
		api.GET("/bikes/:bike_id/quote", h.GetQuote)

		api.POST("/reservations", h.CreateReservation)
		api.POST("/reservations/:id/pickup", h.PickupReservation)
		api.POST("/reservations/:id/return", h.ReturnReservation)
		api.POST("/reservations/:id/cancel", h.CancelReservation)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
