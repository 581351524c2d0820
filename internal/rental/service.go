// Package rental drives the booking workflow: availability, quoting and the
// reservation lifecycle on top of the store.
package rental

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bike-rental-backend/internal/availability"
	"bike-rental-backend/internal/model"
	"bike-rental-backend/internal/pricing"
	"bike-rental-backend/internal/store"
	"bike-rental-backend/internal/window"
)

var (
	// ErrNotAvailable means the bike is already reserved for part of the window.
	ErrNotAvailable = errors.New("bike is not available for the requested window")
	// ErrInvalidTransition means the reservation is not in a status that allows the action.
	ErrInvalidTransition = errors.New("invalid reservation status transition")
)

// MinimumRide is the shortest duration billed on return. A return at the pickup
// instant, or one stamped before it by clock skew, is billed as this long.
const MinimumRide = time.Minute

// Notifier is told when a bike may have become free.
type Notifier interface {
	Dispatch(bikeID int64)
}

// Service implements the rental operations.
type Service struct {
	store    store.Store
	engine   *pricing.Engine
	notifier Notifier
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. notifier may be nil.
func NewService(st store.Store, engine *pricing.Engine, notifier Notifier, opts ...Option) *Service {
	s := &Service{store: st, engine: engine, notifier: notifier, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Availability is the answer to an availability query.
type Availability struct {
	BikeID    int64                      `json:"bike_id"`
	Start     time.Time                  `json:"start"`
	End       time.Time                  `json:"end"`
	Available bool                       `json:"available"`
	Conflicts []availability.Reservation `json:"conflicts"`
}

// CheckAvailability reports whether bikeID is free for w.
func (s *Service) CheckAvailability(ctx context.Context, bikeID int64, w window.Window) (Availability, error) {
	if err := w.Validate(); err != nil {
		return Availability{}, err
	}
	if _, err := s.store.GetBike(ctx, bikeID); err != nil {
		return Availability{}, err
	}
	snap, err := s.snapshots(ctx, bikeID)
	if err != nil {
		return Availability{}, err
	}
	conflicts, err := availability.Conflicts(bikeID, w, snap)
	if err != nil {
		return Availability{}, err
	}
	if conflicts == nil {
		conflicts = []availability.Reservation{}
	}
	return Availability{
		BikeID:    bikeID,
		Start:     w.Start,
		End:       w.End,
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

// QuotePrice prices w with the bike's current configuration.
func (s *Service) QuotePrice(ctx context.Context, bikeID int64, w window.Window, opts pricing.Options) (pricing.Quote, error) {
	bike, err := s.store.GetBike(ctx, bikeID)
	if err != nil {
		return pricing.Quote{}, err
	}
	q, err := s.engine.Quote(pricingConfig(bike), w, opts)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("bike %d: %w", bikeID, err)
	}
	return q, nil
}

// ReserveRequest is the input of Reserve.
type ReserveRequest struct {
	BikeID           int64
	UserID           int64
	Window           window.Window
	PricingType      pricing.PricingType
	PaymentReference string
}

// Reserve checks availability, quotes the window and stores a confirmed reservation.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (model.Reservation, pricing.Quote, error) {
	avail, err := s.CheckAvailability(ctx, req.BikeID, req.Window)
	if err != nil {
		return model.Reservation{}, pricing.Quote{}, err
	}
	if !avail.Available {
		return model.Reservation{}, pricing.Quote{}, fmt.Errorf("bike %d: %w", req.BikeID, ErrNotAvailable)
	}

	q, err := s.QuotePrice(ctx, req.BikeID, req.Window, pricing.Options{PricingType: req.PricingType})
	if err != nil {
		return model.Reservation{}, pricing.Quote{}, err
	}

	end := req.Window.End
	r := model.Reservation{
		BikeID:           req.BikeID,
		UserID:           req.UserID,
		Status:           model.ReservationConfirmed,
		StartTime:        req.Window.Start,
		EndTime:          &end,
		PricingType:      string(q.PricingType),
		QuotedTotal:      q.Total,
		PaymentReference: req.PaymentReference,
	}
	if err := s.store.CreateReservation(ctx, &r); err != nil {
		if errors.Is(err, store.ErrReservationConflict) {
			return model.Reservation{}, pricing.Quote{}, fmt.Errorf("bike %d: %w: %w", req.BikeID, ErrNotAvailable, err)
		}
		return model.Reservation{}, pricing.Quote{}, err
	}
	return r, q, nil
}

// Pickup marks a confirmed reservation as ongoing. Pickup before the reserved start is
// rejected.
func (s *Service) Pickup(ctx context.Context, id int64) (model.Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	now := s.now()
	if r.Status != model.ReservationConfirmed {
		return model.Reservation{}, fmt.Errorf("pickup of %s reservation %d: %w", r.Status, id, ErrInvalidTransition)
	}
	if now.Before(r.StartTime) {
		return model.Reservation{}, fmt.Errorf("pickup of reservation %d before %s: %w",
			id, r.StartTime.Format(time.RFC3339), ErrInvalidTransition)
	}

	r.Status = model.ReservationOngoing
	r.PickedUpAt = &now
	if err := s.update(ctx, &r, model.ReservationConfirmed); err != nil {
		return model.Reservation{}, err
	}
	return r, nil
}

// Return completes an ongoing reservation and prices the actual ride.
func (s *Service) Return(ctx context.Context, id int64, actualKm decimal.Decimal) (model.Reservation, pricing.Quote, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, pricing.Quote{}, err
	}
	if r.Status != model.ReservationOngoing {
		return model.Reservation{}, pricing.Quote{}, fmt.Errorf("return of %s reservation %d: %w", r.Status, id, ErrInvalidTransition)
	}

	now := s.now()
	start := r.StartTime
	if r.PickedUpAt != nil {
		start = *r.PickedUpAt
	}
	end := now
	if end.Before(start.Add(MinimumRide)) {
		end = start.Add(MinimumRide)
	}
	w, err := window.New(start, end)
	if err != nil {
		return model.Reservation{}, pricing.Quote{}, err
	}
	q, err := s.QuotePrice(ctx, r.BikeID, w, pricing.Options{
		PricingType: pricing.PricingType(r.PricingType),
		ActualKm:    actualKm,
	})
	if err != nil {
		return model.Reservation{}, pricing.Quote{}, err
	}

	r.Status = model.ReservationCompleted
	r.ReturnedAt = &now
	r.FinalTotal = &q.Total
	r.ActualKm = &actualKm
	if err := s.update(ctx, &r, model.ReservationOngoing); err != nil {
		return model.Reservation{}, pricing.Quote{}, err
	}
	s.notify(r.BikeID)
	return r, q, nil
}

// Cancel cancels a confirmed reservation.
func (s *Service) Cancel(ctx context.Context, id int64) (model.Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if r.Status != model.ReservationConfirmed {
		return model.Reservation{}, fmt.Errorf("cancel of %s reservation %d: %w", r.Status, id, ErrInvalidTransition)
	}

	r.Status = model.ReservationCancelled
	if err := s.update(ctx, &r, model.ReservationConfirmed); err != nil {
		return model.Reservation{}, err
	}
	s.notify(r.BikeID)
	return r, nil
}

func (s *Service) update(ctx context.Context, r *model.Reservation, from string) error {
	err := s.store.UpdateReservationStatus(ctx, r, from)
	if errors.Is(err, store.ErrStatusChanged) {
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
	return err
}

func (s *Service) notify(bikeID int64) {
	if s.notifier != nil {
		s.notifier.Dispatch(bikeID)
	}
}

func (s *Service) snapshots(ctx context.Context, bikeID int64) ([]availability.Reservation, error) {
	rows, err := s.store.ListLiveReservations(ctx, bikeID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	snap := make([]availability.Reservation, 0, len(rows))
	for _, row := range rows {
		if r, ok := snapshot(row, now); ok {
			snap = append(snap, r)
		}
	}
	return snap, nil
}
