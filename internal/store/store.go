package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bike-rental-backend/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrReservationConflict means another live reservation already holds the window.
	ErrReservationConflict = errors.New("reservation overlaps an existing reservation")
	// ErrStatusChanged means the reservation left the expected status before the update.
	ErrStatusChanged = errors.New("reservation status changed concurrently")
)

// exclusionViolation is the PostgreSQL SQLSTATE raised by an EXCLUDE constraint.
const exclusionViolation = "23P01"

var liveStatuses = []string{model.ReservationConfirmed, model.ReservationOngoing}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	ListBikes(ctx context.Context) ([]model.Bike, error)
	GetBike(ctx context.Context, id int64) (model.Bike, error)
	ListLiveReservations(ctx context.Context, bikeID int64) ([]model.Reservation, error)
	GetReservation(ctx context.Context, id int64) (model.Reservation, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservationStatus(ctx context.Context, r *model.Reservation, from string) error
	CancelNoShows(ctx context.Context, cutoff time.Time) ([]int64, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, log *zap.Logger) Store {
	return &gormStore{db: db, log: log}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) ListBikes(ctx context.Context) ([]model.Bike, error) {
	var bikes []model.Bike
	if err := s.db.WithContext(ctx).Preload("Slabs").Order("id").Find(&bikes).Error; err != nil {
		return nil, fmt.Errorf("failed to list bikes: %w", err)
	}
	return bikes, nil
}

func (s *gormStore) GetBike(ctx context.Context, id int64) (model.Bike, error) {
	var bike model.Bike
	if err := s.db.WithContext(ctx).Preload("Slabs").First(&bike, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Bike{}, fmt.Errorf("bike %d: %w", id, ErrNotFound)
		}
		return model.Bike{}, fmt.Errorf("failed to load bike %d: %w", id, err)
	}
	return bike, nil
}

// ListLiveReservations returns the confirmed and ongoing reservations of a bike.
func (s *gormStore) ListLiveReservations(ctx context.Context, bikeID int64) ([]model.Reservation, error) {
	var rs []model.Reservation
	err := s.db.WithContext(ctx).
		Where("bike_id = ? AND status IN ?", bikeID, liveStatuses).
		Order("start_time").
		Find(&rs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for bike %d: %w", bikeID, err)
	}
	return rs, nil
}

func (s *gormStore) GetReservation(ctx context.Context, id int64) (model.Reservation, error) {
	var r model.Reservation
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Reservation{}, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
		}
		return model.Reservation{}, fmt.Errorf("failed to load reservation %d: %w", id, err)
	}
	return r, nil
}

// CreateReservation inserts r after re-checking for overlapping live reservations in
// the same transaction. On PostgreSQL the exclusion constraint is the final guard
// against concurrent inserts.
func (s *gormStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.Reservation{}).
			Where("bike_id = ? AND status IN ?", r.BikeID, liveStatuses).
			Where("(end_time IS NULL OR end_time > ?)", r.StartTime)
		if r.EndTime != nil {
			q = q.Where("start_time < ?", *r.EndTime)
		}

		var overlapping int64
		if err := q.Count(&overlapping).Error; err != nil {
			return fmt.Errorf("failed to check overlapping reservations: %w", err)
		}
		if overlapping > 0 {
			return ErrReservationConflict
		}

		if err := tx.Create(r).Error; err != nil {
			return err
		}
		return nil
	})
	if err == nil {
		s.log.Info("reservation created",
			zap.Int64("reservation_id", r.ID), zap.Int64("bike_id", r.BikeID), zap.Time("start", r.StartTime))
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return ErrReservationConflict
	}
	if errors.Is(err, ErrReservationConflict) {
		return err
	}
	return fmt.Errorf("failed to create reservation for bike %d: %w", r.BikeID, err)
}

// UpdateReservationStatus writes r's status and lifecycle fields only if the stored
// status is still from.
func (s *gormStore) UpdateReservationStatus(ctx context.Context, r *model.Reservation, from string) error {
	res := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ? AND status = ?", r.ID, from).
		Updates(map[string]any{
			"status":       r.Status,
			"picked_up_at": r.PickedUpAt,
			"returned_at":  r.ReturnedAt,
			"final_total":  r.FinalTotal,
			"actual_km":    r.ActualKm,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update reservation %d: %w", r.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reservation %d is no longer %s: %w", r.ID, from, ErrStatusChanged)
	}
	s.log.Info("reservation status updated",
		zap.Int64("reservation_id", r.ID), zap.String("from", from), zap.String("to", r.Status))
	return nil
}

// CancelNoShows cancels confirmed reservations that started before cutoff without a
// pickup and returns the affected bike IDs.
func (s *gormStore) CancelNoShows(ctx context.Context, cutoff time.Time) ([]int64, error) {
	var bikeIDs []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []model.Reservation
		if err := tx.Where("status = ? AND picked_up_at IS NULL AND start_time < ?",
			model.ReservationConfirmed, cutoff).Find(&stale).Error; err != nil {
			return fmt.Errorf("failed to fetch no-show reservations: %w", err)
		}
		if len(stale) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(stale))
		seen := make(map[int64]bool, len(stale))
		for _, r := range stale {
			ids = append(ids, r.ID)
			if !seen[r.BikeID] {
				seen[r.BikeID] = true
				bikeIDs = append(bikeIDs, r.BikeID)
			}
		}

		if err := tx.Model(&model.Reservation{}).
			Where("id IN ? AND status = ?", ids, model.ReservationConfirmed).
			Update("status", model.ReservationCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel no-show reservations: %w", err)
		}
		s.log.Info("cancelled no-show reservations", zap.Int("count", len(ids)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bikeIDs, nil
}
