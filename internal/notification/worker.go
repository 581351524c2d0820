package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bike-rental-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Alert is the push payload telling a subscriber a bike was freed.
type Alert struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	BikeID int64  `json:"bike_id"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.Logger
}

// NewWorkerPool creates a new worker pool with a job queue of queueSize entries.
func NewWorkerPool(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options, log *zap.Logger) *WorkerPool {
	if queueSize < size {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, queueSize),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.log.With(zap.Int("worker", id))
	log.Debug("notification worker started")
	for {
		select {
		case bikeID := <-wp.jobs:
			log.Debug("processing bike alert", zap.Int64("bike_id", bikeID))
			wp.sendNotificationsForBike(ctx, bikeID)
		case <-ctx.Done():
			log.Debug("notification worker shutting down")
			return
		}
	}
}

// Dispatch queues an alert for bikeID. It never blocks; the alert is dropped when
// the queue is full.
func (wp *WorkerPool) Dispatch(bikeID int64) {
	select {
	case wp.jobs <- bikeID:
	default:
		wp.log.Warn("notification queue full, dropping alert", zap.Int64("bike_id", bikeID))
	}
}

// sendNotificationsForBike fetches the bike's watchers and notifies each of them.
func (wp *WorkerPool) sendNotificationsForBike(ctx context.Context, bikeID int64) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_bike_mapping sbm ON sbm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sbm.bike_id = ?", bikeID).
		Find(&subscriptions).Error
	if err != nil {
		wp.log.Error("failed to fetch subscriptions", zap.Int64("bike_id", bikeID), zap.Error(err))
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	wp.log.Info("sending bike alerts", zap.Int("count", len(subscriptions)), zap.Int64("bike_id", bikeID))

	var bike model.Bike
	bikeLabel := fmt.Sprintf("#%d", bikeID)
	if err := wp.db.WithContext(ctx).
		Select("name").
		First(&bike, bikeID).Error; err != nil {
		wp.log.Warn("failed to fetch bike name", zap.Int64("bike_id", bikeID), zap.Error(err))
	} else if bike.Name != "" {
		bikeLabel = bike.Name
	}

	payload, err := json.Marshal(Alert{
		Title:  "Bike available",
		Body:   fmt.Sprintf("%s is available again", bikeLabel),
		BikeID: bikeID,
	})
	if err != nil {
		wp.log.Error("failed to encode alert", zap.Error(err))
		return
	}
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.log.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.log.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
