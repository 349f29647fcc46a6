package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	roomserrors "tourbook/internal/rooms/errors"
	"tourbook/internal/rooms/repository"
	"tourbook/internal/rooms/validator"
	"tourbook/pkg/clock"
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/model"
	"tourbook/pkg/sanitizer"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByAccommodation(ctx context.Context, accommodationID string, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) error
	Delete(ctx context.Context, id string) error
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
	clock     clock.Clock
}

func NewRoomService(
	repo repository.RoomRepository,
	validator *validator.RoomValidator,
	cfg *config.Config,
	clk clock.Clock,
) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		clock:     clk,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	s.sanitize(room)
	room.Intervals = []model.RoomInterval{}
	if err := s.validate(room); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"accommodation_id", room.AccommodationID,
		"name", room.Name,
		"capacity", room.Capacity,
	)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

func (s *roomService) GetByAccommodation(ctx context.Context, accommodationID string, limit int, offset int64) ([]*model.Room, int64, error) {
	if accommodationID == "" {
		return nil, 0, apperrors.InvalidInput("Accommodation ID cannot be empty")
	}

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByAccommodation(ctx, accommodationID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "accommodation_id", accommodationID, "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindByAccommodation(ctx, accommodationID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "accommodation_id", accommodationID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	for attempt := 0; attempt < s.cfg.VersionRetryMax; attempt++ {
		existing, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}

		merged := *existing
		if updates.Name != "" {
			merged.Name = sanitizer.NormalizeName(updates.Name)
		}
		if updates.Capacity != nil {
			merged.Capacity = *updates.Capacity
		}
		if err := s.validate(&merged); err != nil {
			return err
		}

		// Shrinking a room under its largest booked party would let an
		// already-accepted reservation exceed the room.
		if updates.Capacity != nil {
			if maxParty := largestParty(merged.Intervals); merged.Capacity < maxParty {
				return apperrors.CapacityExceeded(fmt.Sprintf(
					"cannot reduce capacity to %d: an existing booking holds %d occupants",
					merged.Capacity, maxParty,
				))
			}
		}

		err = s.repo.UpdateVersioned(ctx, &merged)
		if err == nil {
			s.cfg.Log.Info("Room updated successfully", "id", id)
			return nil
		}
		if errors.Is(err, roomserrors.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return apperrors.Internal("Failed to update room", err)
	}

	return apperrors.Timeout("could not update room, please retry")
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// A room with live bookings cannot be removed.
	now := s.clock.Now()
	for i := range room.Intervals {
		if !room.Intervals[i].Expired(now) {
			return apperrors.Conflict(fmt.Sprintf(
				"room has active or upcoming bookings (reservation %s)",
				room.Intervals[i].ReservationID,
			))
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		return apperrors.Internal("Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *roomService) sanitize(room *model.Room) {
	room.AccommodationID = sanitizer.NormalizeLabel(room.AccommodationID)
	room.Name = sanitizer.NormalizeName(room.Name)
}

func (s *roomService) validate(room *model.Room) error {
	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func largestParty(intervals []model.RoomInterval) int {
	max := 0
	for i := range intervals {
		if intervals[i].OccupantCount > max {
			max = intervals[i].OccupantCount
		}
	}
	return max
}
