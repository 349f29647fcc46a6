package service

import (
	"context"
	"io"
	"testing"
	"time"
	roomserrors "tourbook/internal/rooms/errors"
	"tourbook/internal/rooms/validator"
	"tourbook/pkg/clock"
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

type mockRoomRepository struct {
	create          func(ctx context.Context, room *model.Room) error
	findByID        func(ctx context.Context, id string) (*model.Room, error)
	updateVersioned func(ctx context.Context, room *model.Room) error
	delete          func(ctx context.Context, id string) error
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	return m.create(ctx, room)
}

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

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testService(repo *mockRoomRepository) RoomService {
	cfg := &config.Config{
		VersionRetryMax: 3,
		Log:             logger.New(logger.Config{Output: io.Discard}),
	}
	return NewRoomService(repo, validator.NewRoomValidator(cfg.Log), cfg, clock.Fixed{T: testNow})
}

func validRoom() *model.Room {
	return &model.Room{
		ID:              "64a0000000000000000000b1",
		AccommodationID: "lodge",
		Name:            "Room 1",
		Capacity:        2,
		Version:         1,
	}
}

func TestCreateSanitizes(t *testing.T) {
	var saved *model.Room
	repo := &mockRoomRepository{
		create: func(_ context.Context, room *model.Room) error {
			saved = room
			return nil
		},
	}
	svc := testService(repo)

	room := validRoom()
	room.ID = ""
	room.Name = "  Room   1 "

	if err := svc.Create(context.Background(), room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if saved.Name != "Room 1" {
		t.Errorf("name not normalized: %q", saved.Name)
	}
	if saved.Intervals == nil {
		t.Error("intervals not initialized")
	}
}

func TestCreateValidationFails(t *testing.T) {
	repo := &mockRoomRepository{
		create: func(context.Context, *model.Room) error {
			t.Fatal("create should not be reached")
			return nil
		},
	}
	svc := testService(repo)

	room := validRoom()
	room.ID = ""
	room.Capacity = 0

	if err := svc.Create(context.Background(), room); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("got %v, want VALIDATION_ERROR", err)
	}
}

func TestUpdateCapacityShrinkBelowBookedParty(t *testing.T) {
	existing := validRoom()
	existing.Capacity = 4
	existing.Intervals = []model.RoomInterval{
		{ReservationID: "resA", CheckIn: testNow.AddDate(0, 1, 0), CheckOut: testNow.AddDate(0, 1, 2), OccupantCount: 3},
	}

	repo := &mockRoomRepository{
		findByID: func(context.Context, string) (*model.Room, error) {
			copied := *existing
			return &copied, nil
		},
		updateVersioned: func(context.Context, *model.Room) error {
			t.Fatal("update should not be reached")
			return nil
		},
	}
	svc := testService(repo)

	smaller := 2
	err := svc.Update(context.Background(), existing.ID, &model.RoomUpdate{Capacity: &smaller})
	if !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("got %v, want CAPACITY_EXCEEDED", err)
	}
}

func TestDeleteWithUpcomingBooking(t *testing.T) {
	existing := validRoom()
	existing.Intervals = []model.RoomInterval{
		{ReservationID: "resA", CheckIn: testNow.AddDate(0, 1, 0), CheckOut: testNow.AddDate(0, 1, 2), OccupantCount: 1},
	}

	repo := &mockRoomRepository{
		findByID: func(context.Context, string) (*model.Room, error) {
			copied := *existing
			return &copied, nil
		},
		delete: func(context.Context, string) error {
			t.Fatal("delete should not be reached")
			return nil
		},
	}
	svc := testService(repo)

	if err := svc.Delete(context.Background(), existing.ID); !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("got %v, want CONFLICT", err)
	}
}

func TestDeleteWithOnlyExpiredBookings(t *testing.T) {
	existing := validRoom()
	existing.Intervals = []model.RoomInterval{
		{ReservationID: "resA", CheckIn: testNow.AddDate(0, -2, 0), CheckOut: testNow.AddDate(0, -1, 0), OccupantCount: 1},
	}

	deleted := false
	repo := &mockRoomRepository{
		findByID: func(context.Context, string) (*model.Room, error) {
			copied := *existing
			return &copied, nil
		},
		delete: func(context.Context, string) error {
			deleted = true
			return nil
		},
	}
	svc := testService(repo)

	if err := svc.Delete(context.Background(), existing.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("repository delete was not called")
	}
}

func TestGetByIDErrors(t *testing.T) {
	repo := &mockRoomRepository{
		findByID: func(_ context.Context, id string) (*model.Room, error) {
			if id == "bad" {
				return nil, roomserrors.ErrInvalidID
			}
			return nil, roomserrors.ErrNotFound
		},
	}
	svc := testService(repo)
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("empty ID: got %v, want INVALID_INPUT", err)
	}
	if _, err := svc.GetByID(ctx, "bad"); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("invalid ID: got %v, want INVALID_INPUT", err)
	}
	if _, err := svc.GetByID(ctx, "64a0000000000000000000b1"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing room: got %v, want NOT_FOUND", err)
	}
}
