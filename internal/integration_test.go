package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bike-rental-backend/config"
	"bike-rental-backend/internal/db"
	"bike-rental-backend/internal/model"
	"bike-rental-backend/internal/pricing"
	"bike-rental-backend/internal/rental"
	"bike-rental-backend/internal/store"
	"bike-rental-backend/internal/sweeper"
	"bike-rental-backend/internal/window"
)

type recordingNotifier struct {
	mu    sync.Mutex
	bikes []int64
}

func (n *recordingNotifier) Dispatch(bikeID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bikes = append(n.bikes, bikeID)
}

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	testDB, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to the in-memory database: %v", err)
	}
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))
	return testDB
}

// TestNoShowLifecycle books a bike, lets the renter miss the pickup and checks that
// the sweeper frees the bike for the next booking.
func TestNoShowLifecycle(t *testing.T) {
	testDB := newTestDB(t, "noshow")
	require.NoError(t, testDB.Create(&model.Bike{ID: 1, Name: "Commuter", Label: "C-1", LegacyHourlyRate: ptr(decimal.NewFromInt(40))}).Error)

	now := time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	appStore := store.NewGormStore(testDB, zap.NewNop())
	notifier := &recordingNotifier{}
	rentals := rental.NewService(appStore, pricing.NewEngine(time.UTC, ""), notifier, rental.WithClock(clock))
	sweep := sweeper.NewService(config.SweeperConfig{Enabled: true, NoShowGrace: 30 * time.Minute},
		appStore, notifier, zap.NewNop())
	ctx := context.Background()

	booked, err := window.New(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var reservationID int64
	t.Run("Reservation is confirmed and blocks the window", func(t *testing.T) {
		r, q, err := rentals.Reserve(ctx, rental.ReserveRequest{BikeID: 1, UserID: 5, Window: booked})
		require.NoError(t, err)
		assert.Equal(t, "80.00", q.Total.StringFixed(2))
		reservationID = r.ID

		_, _, err = rentals.Reserve(ctx, rental.ReserveRequest{BikeID: 1, UserID: 6, Window: booked})
		assert.ErrorIs(t, err, rental.ErrNotAvailable)
	})

	t.Run("Sweep inside the grace period keeps the reservation", func(t *testing.T) {
		freed := sweep.SweepOnce(ctx, time.Date(2026, 3, 4, 10, 20, 0, 0, time.UTC))
		assert.Empty(t, freed)

		var r model.Reservation
		require.NoError(t, testDB.First(&r, reservationID).Error)
		assert.Equal(t, model.ReservationConfirmed, r.Status)
	})

	t.Run("Sweep after the grace period cancels the no-show", func(t *testing.T) {
		freed := sweep.SweepOnce(ctx, time.Date(2026, 3, 4, 10, 31, 0, 0, time.UTC))
		assert.Equal(t, []int64{1}, freed)
		assert.Equal(t, []int64{1}, notifier.bikes)

		var r model.Reservation
		require.NoError(t, testDB.First(&r, reservationID).Error)
		assert.Equal(t, model.ReservationCancelled, r.Status)

		_, err := rentals.Pickup(ctx, reservationID)
		assert.ErrorIs(t, err, rental.ErrInvalidTransition)
	})

	t.Run("Window can be booked again", func(t *testing.T) {
		_, _, err := rentals.Reserve(ctx, rental.ReserveRequest{BikeID: 1, UserID: 6, Window: booked})
		assert.NoError(t, err)
	})
}

// TestStoreRejectsOverlaps checks the transactional overlap guard without going
// through the service.
func TestStoreRejectsOverlaps(t *testing.T) {
	testDB := newTestDB(t, "overlaps")
	require.NoError(t, testDB.Create(&model.Bike{ID: 1, Name: "Commuter", Label: "C-1"}).Error)
	require.NoError(t, testDB.Create(&model.Bike{ID: 2, Name: "Cruiser", Label: "C-2"}).Error)
	appStore := store.NewGormStore(testDB, zap.NewNop())
	ctx := context.Background()

	at := func(hour int) time.Time { return time.Date(2026, 3, 4, hour, 0, 0, 0, time.UTC) }
	create := func(bikeID int64, start int, end *int) error {
		r := &model.Reservation{BikeID: bikeID, UserID: 1, Status: model.ReservationConfirmed, StartTime: at(start)}
		if end != nil {
			e := at(*end)
			r.EndTime = &e
		}
		return appStore.CreateReservation(ctx, r)
	}
	hour := func(h int) *int { return &h }

	require.NoError(t, create(1, 10, hour(12)))

	testCases := []struct {
		name        string
		bikeID      int64
		start       int
		end         *int
		expectedErr error
	}{
		{name: "Overlapping", bikeID: 1, start: 11, end: hour(13), expectedErr: store.ErrReservationConflict},
		{name: "Adjacent before", bikeID: 1, start: 8, end: hour(10)},
		{name: "Other bike", bikeID: 2, start: 10, end: hour(12)},
		{name: "Open-ended after the last booking", bikeID: 1, start: 14, end: nil},
		{name: "Anything after an open-ended booking", bikeID: 1, start: 20, end: hour(21), expectedErr: store.ErrReservationConflict},
		{name: "Before an open-ended booking", bikeID: 1, start: 12, end: hour(14)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := create(tc.bikeID, tc.start, tc.end)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	live, err := appStore.ListLiveReservations(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, live, 4)
}

func ptr[T any](v T) *T { return &v }
