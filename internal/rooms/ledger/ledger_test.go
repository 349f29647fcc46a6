package ledger

import (
	"context"
	"io"
	"testing"
	"time"
	roomserrors "tourbook/internal/rooms/errors"
	"tourbook/pkg/clock"
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

type mockRoomRepository struct {
	findByID        func(ctx context.Context, id string) (*model.Room, error)
	updateVersioned func(ctx context.Context, room *model.Room) error
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error { return nil }

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	return m.findByID(ctx, id)
}

func (m *mockRoomRepository) FindByAccommodation(ctx context.Context, accommodationID string, limit int, offset int64) ([]*model.Room, error) {
	return nil, nil
}

func (m *mockRoomRepository) CountByAccommodation(ctx context.Context, accommodationID string) (int64, error) {
	return 0, nil
}

func (m *mockRoomRepository) UpdateVersioned(ctx context.Context, room *model.Room) error {
	return m.updateVersioned(ctx, room)
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		VersionRetryMax:             3,
		PurgeExpiredIntervalsOnRead: true,
		Log:                         logger.New(logger.Config{Output: io.Discard}),
	}
}

var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

// storeRoom wires the mock to behave like a tiny versioned store holding one
// room, so reserve/release round-trips can be observed.
func storeRoom(room *model.Room) *mockRoomRepository {
	return &mockRoomRepository{
		findByID: func(_ context.Context, id string) (*model.Room, error) {
			if id != room.ID {
				return nil, roomserrors.ErrNotFound
			}
			copied := *room
			copied.Intervals = append([]model.RoomInterval{}, room.Intervals...)
			return &copied, nil
		},
		updateVersioned: func(_ context.Context, updated *model.Room) error {
			if updated.Version != room.Version {
				return roomserrors.ErrVersionConflict
			}
			*room = *updated
			room.Version++
			updated.Version++
			return nil
		},
	}
}

func TestReserveThenConflict(t *testing.T) {
	room := &model.Room{ID: "room1", Capacity: 2, Version: 1}
	l := NewLedger(storeRoom(room), testConfig(), clock.Fixed{T: testNow})
	ctx := context.Background()

	if err := l.Reserve(ctx, "room1", day(1), day(3), "resA", 2); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}

	// [2,4) overlaps [1,3).
	err := l.Reserve(ctx, "room1", day(2), day(4), "resB", 1)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("overlapping reserve: got %v, want CONFLICT", err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Details["conflicting_reservation_id"] != "resA" {
		t.Errorf("conflict details = %v, want conflicting_reservation_id resA", appErr.Details)
	}
	if len(room.Intervals) != 1 {
		t.Fatalf("failed reserve mutated the room: %d intervals", len(room.Intervals))
	}

	// [3,5) is adjacent to [1,3): half-open ranges do not overlap.
	if err := l.Reserve(ctx, "room1", day(3), day(5), "resB", 1); err != nil {
		t.Fatalf("adjacent reserve failed: %v", err)
	}
	if len(room.Intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(room.Intervals))
	}
}

func TestReserveKeepsIntervalsSorted(t *testing.T) {
	room := &model.Room{ID: "room1", Capacity: 4, Version: 1}
	l := NewLedger(storeRoom(room), testConfig(), clock.Fixed{T: testNow})
	ctx := context.Background()

	for _, r := range []struct {
		id       string
		from, to int
	}{
		{"resC", 10, 12},
		{"resA", 2, 4},
		{"resB", 6, 8},
	} {
		if err := l.Reserve(ctx, "room1", day(r.from), day(r.to), r.id, 1); err != nil {
			t.Fatalf("reserve %s failed: %v", r.id, err)
		}
	}

	for i := 1; i < len(room.Intervals); i++ {
		if room.Intervals[i].CheckIn.Before(room.Intervals[i-1].CheckIn) {
			t.Fatalf("intervals out of order at %d: %v", i, room.Intervals)
		}
	}
}

func TestReserveOccupantCountExceedsCapacity(t *testing.T) {
	room := &model.Room{ID: "room1", Capacity: 2, Version: 1}
	l := NewLedger(storeRoom(room), testConfig(), clock.Fixed{T: testNow})

	err := l.Reserve(context.Background(), "room1", day(1), day(3), "resA", 3)
	if !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("got %v, want CAPACITY_EXCEEDED", err)
	}
	if len(room.Intervals) != 0 {
		t.Fatal("failed reserve mutated the room")
	}
}

func TestReserveInvalidRange(t *testing.T) {
	room := &model.Room{ID: "room1", Capacity: 2, Version: 1}
	l := NewLedger(storeRoom(room), testConfig(), clock.Fixed{T: testNow})
	ctx := context.Background()

	if err := l.Reserve(ctx, "room1", day(3), day(3), "resA", 1); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("zero-length range: got %v, want INVALID_INPUT", err)
	}
	if err := l.Reserve(ctx, "room1", day(3), day(1), "resA", 1); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("inverted range: got %v, want INVALID_INPUT", err)
	}
	if err := l.Reserve(ctx, "room1", day(1), day(3), "", 1); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("empty reservation ID: got %v, want INVALID_INPUT", err)
	}
}

func TestRelease(t *testing.T) {
	room := &model.Room{ID: "room1", Capacity: 2, Version: 1}
	l := NewLedger(storeRoom(room), testConfig(), clock.Fixed{T: testNow})
	ctx := context.Background()

	if err := l.Reserve(ctx, "room1", day(1), day(3), "resA", 1); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := l.Reserve(ctx, "room1", day(5), day(7), "resA", 1); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := l.Reserve(ctx, "room1", day(3), day(5), "resB", 1); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if err := l.Release(ctx, "room1", "resA"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if len(room.Intervals) != 1 || room.Intervals[0].ReservationID != "resB" {
		t.Fatalf("after release: %+v", room.Intervals)
	}

	// Releasing a reservation that holds nothing is a no-op.
	if err := l.Release(ctx, "room1", "resA"); err != nil {
		t.Fatalf("second release failed: %v", err)
	}
}

func TestCheckAvailabilityIgnoresExpired(t *testing.T) {
	room := &model.Room{
		ID:       "room1",
		Capacity: 2,
		Version:  1,
		Intervals: []model.RoomInterval{
			{ReservationID: "old", CheckIn: day(-10), CheckOut: day(-8), OccupantCount: 1},
		},
	}
	cfg := testConfig()
	l := NewLedger(storeRoom(room), cfg, clock.Fixed{T: testNow})

	available, err := l.CheckAvailability(context.Background(), "room1", day(-10), day(-8))
	if err != nil {
		t.Fatalf("CheckAvailability failed: %v", err)
	}
	if !available {
		t.Error("expired interval should not block availability")
	}
	if len(room.Intervals) != 0 {
		t.Errorf("expired interval not purged on read: %+v", room.Intervals)
	}
}

func TestPurgeDisabledKeepsExpired(t *testing.T) {
	room := &model.Room{
		ID:       "room1",
		Capacity: 2,
		Version:  1,
		Intervals: []model.RoomInterval{
			{ReservationID: "old", CheckIn: day(-10), CheckOut: day(-8), OccupantCount: 1},
		},
	}
	cfg := testConfig()
	cfg.PurgeExpiredIntervalsOnRead = false
	l := NewLedger(storeRoom(room), cfg, clock.Fixed{T: testNow})

	available, err := l.CheckAvailability(context.Background(), "room1", day(-10), day(-8))
	if err != nil {
		t.Fatalf("CheckAvailability failed: %v", err)
	}
	if !available {
		t.Error("expired interval should not block availability")
	}
	if len(room.Intervals) != 1 {
		t.Error("purge ran while disabled")
	}
}

func TestReserveRetriesOnVersionConflict(t *testing.T) {
	room := &model.Room{ID: "room1", Capacity: 2, Version: 1}
	conflicts := 2
	repo := storeRoom(room)
	inner := repo.updateVersioned
	repo.updateVersioned = func(ctx context.Context, updated *model.Room) error {
		if conflicts > 0 {
			conflicts--
			return roomserrors.ErrVersionConflict
		}
		return inner(ctx, updated)
	}

	l := NewLedger(repo, testConfig(), clock.Fixed{T: testNow})
	if err := l.Reserve(context.Background(), "room1", day(1), day(3), "resA", 1); err != nil {
		t.Fatalf("reserve with retries failed: %v", err)
	}
	if len(room.Intervals) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(room.Intervals))
	}
}

func TestReserveRetriesExhausted(t *testing.T) {
	room := &model.Room{ID: "room1", Capacity: 2, Version: 1}
	repo := storeRoom(room)
	repo.updateVersioned = func(ctx context.Context, updated *model.Room) error {
		return roomserrors.ErrVersionConflict
	}

	l := NewLedger(repo, testConfig(), clock.Fixed{T: testNow})
	err := l.Reserve(context.Background(), "room1", day(1), day(3), "resA", 1)
	if !apperrors.IsCode(err, apperrors.CodeTimeout) {
		t.Fatalf("got %v, want TIMEOUT", err)
	}
}

func TestReserveRoomNotFound(t *testing.T) {
	repo := &mockRoomRepository{
		findByID: func(context.Context, string) (*model.Room, error) {
			return nil, roomserrors.ErrNotFound
		},
	}
	l := NewLedger(repo, testConfig(), clock.Fixed{T: testNow})

	err := l.Reserve(context.Background(), "missing", day(1), day(3), "resA", 1)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
}
