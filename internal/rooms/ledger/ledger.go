package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	roomserrors "tourbook/internal/rooms/errors"
	"tourbook/internal/rooms/repository"
	"tourbook/pkg/clock"
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/model"
)

// Ledger owns every mutation of a room's interval set. Two intervals
// [a1,a2) and [b1,b2) overlap iff a1 < b2 && b1 < a2; the ledger guarantees
// no two intervals on the same room overlap. Check-then-insert is made
// atomic per room by the repository's versioned update with bounded retry.
type Ledger struct {
	repo  repository.RoomRepository
	cfg   *config.Config
	clock clock.Clock
}

func NewLedger(repo repository.RoomRepository, cfg *config.Config, clk clock.Clock) *Ledger {
	return &Ledger{
		repo:  repo,
		cfg:   cfg,
		clock: clk,
	}
}

// CheckAvailability reports whether [checkIn, checkOut) is free on the room.
// Expired intervals are ignored (and lazily purged when configured).
func (l *Ledger) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return false, err
	}

	room, err := l.loadRoom(ctx, roomID)
	if err != nil {
		return false, err
	}

	intervals := l.liveIntervals(room)
	l.maybePurge(ctx, room, intervals)

	return findOverlap(intervals, checkIn, checkOut) == nil, nil
}

// Reserve inserts an interval for the reservation, failing with Conflict
// (naming the conflicting reservation) on overlap and CapacityExceeded when
// occupantCount does not fit the room. No mutation happens on failure.
func (l *Ledger) Reserve(ctx context.Context, roomID string, checkIn, checkOut time.Time, reservationID string, occupantCount int) error {
	if err := validateRange(checkIn, checkOut); err != nil {
		return err
	}
	if reservationID == "" {
		return apperrors.InvalidInput("reservation ID cannot be empty")
	}
	if occupantCount < 1 {
		return apperrors.InvalidInput(fmt.Sprintf("occupant count must be positive, got %d", occupantCount))
	}

	for attempt := 0; attempt < l.cfg.VersionRetryMax; attempt++ {
		room, err := l.loadRoom(ctx, roomID)
		if err != nil {
			return err
		}

		// Occupancy check comes before the overlap scan.
		if occupantCount > room.Capacity {
			return apperrors.CapacityExceeded(fmt.Sprintf(
				"room holds %d occupants, requested %d", room.Capacity, occupantCount,
			)).WithDetails(map[string]any{
				"room_id":        roomID,
				"room_capacity":  room.Capacity,
				"occupant_count": occupantCount,
			})
		}

		intervals := l.liveIntervals(room)

		if conflicting := findOverlap(intervals, checkIn, checkOut); conflicting != nil {
			return apperrors.Conflict(fmt.Sprintf(
				"room is already booked from %s to %s",
				conflicting.CheckIn.Format(time.RFC3339),
				conflicting.CheckOut.Format(time.RFC3339),
			)).WithDetails(map[string]any{
				"room_id":                    roomID,
				"conflicting_reservation_id": conflicting.ReservationID,
			})
		}

		room.Intervals = insertSorted(intervals, model.RoomInterval{
			ReservationID: reservationID,
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			OccupantCount: occupantCount,
		})

		err = l.repo.UpdateVersioned(ctx, room)
		if err == nil {
			l.cfg.Log.Info("Room interval reserved",
				"room_id", roomID,
				"reservation_id", reservationID,
				"check_in", checkIn,
				"check_out", checkOut,
			)
			return nil
		}
		if !errors.Is(err, roomserrors.ErrVersionConflict) {
			return apperrors.Internal("Failed to reserve room interval", err)
		}
	}

	l.cfg.Log.Warn("Room reserve retries exhausted", "room_id", roomID, "reservation_id", reservationID)
	return apperrors.Timeout("could not reserve room, please retry")
}

// Release removes every interval held by the reservation on the room.
// Releasing a reservation that holds nothing is a no-op.
func (l *Ledger) Release(ctx context.Context, roomID string, reservationID string) error {
	if reservationID == "" {
		return apperrors.InvalidInput("reservation ID cannot be empty")
	}

	for attempt := 0; attempt < l.cfg.VersionRetryMax; attempt++ {
		room, err := l.loadRoom(ctx, roomID)
		if err != nil {
			return err
		}

		kept := make([]model.RoomInterval, 0, len(room.Intervals))
		removed := 0
		for _, iv := range room.Intervals {
			if iv.ReservationID == reservationID {
				removed++
				continue
			}
			kept = append(kept, iv)
		}

		if removed == 0 {
			return nil
		}
		room.Intervals = kept

		err = l.repo.UpdateVersioned(ctx, room)
		if err == nil {
			l.cfg.Log.Info("Room intervals released",
				"room_id", roomID,
				"reservation_id", reservationID,
				"removed", removed,
			)
			return nil
		}
		if !errors.Is(err, roomserrors.ErrVersionConflict) {
			return apperrors.Internal("Failed to release room intervals", err)
		}
	}

	l.cfg.Log.Warn("Room release retries exhausted", "room_id", roomID, "reservation_id", reservationID)
	return apperrors.Timeout("could not release room, please retry")
}

// --- Helpers ---

func (l *Ledger) loadRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := l.repo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to load room", err)
	}
	return room, nil
}

// liveIntervals drops intervals whose check-out is strictly in the past.
// Only past-checkout intervals are ever dropped, so an interval still held
// by an active reservation with a future check-out is never touched.
func (l *Ledger) liveIntervals(room *model.Room) []model.RoomInterval {
	now := l.clock.Now()

	live := make([]model.RoomInterval, 0, len(room.Intervals))
	for _, iv := range room.Intervals {
		if !iv.Expired(now) {
			live = append(live, iv)
		}
	}
	return live
}

// maybePurge writes back the pruned interval set on reads, best effort. A
// version conflict here just means someone else wrote first; the expired
// intervals will be pruned on a later read.
func (l *Ledger) maybePurge(ctx context.Context, room *model.Room, live []model.RoomInterval) {
	if !l.cfg.PurgeExpiredIntervalsOnRead || len(live) == len(room.Intervals) {
		return
	}

	purged := *room
	purged.Intervals = live
	if err := l.repo.UpdateVersioned(ctx, &purged); err != nil {
		if !errors.Is(err, roomserrors.ErrVersionConflict) {
			l.cfg.Log.Warn("Failed to purge expired intervals", "room_id", room.ID, "error", err)
		}
		return
	}

	l.cfg.Log.Debug("Purged expired intervals",
		"room_id", room.ID,
		"removed", len(room.Intervals)-len(live),
	)
	room.Intervals = live
	room.Version = purged.Version
}

func validateRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return apperrors.InvalidInput("check-in and check-out are required")
	}
	if !checkOut.After(checkIn) {
		return apperrors.InvalidInput("check-out must be after check-in")
	}
	return nil
}

// findOverlap returns the first interval intersecting [checkIn, checkOut),
// or nil. Intervals are kept sorted by check-in; a linear scan is fine for
// the handful of intervals a room carries.
func findOverlap(intervals []model.RoomInterval, checkIn, checkOut time.Time) *model.RoomInterval {
	for i := range intervals {
		if intervals[i].Overlaps(checkIn, checkOut) {
			return &intervals[i]
		}
		if !intervals[i].CheckIn.Before(checkOut) {
			break
		}
	}
	return nil
}

func insertSorted(intervals []model.RoomInterval, iv model.RoomInterval) []model.RoomInterval {
	idx := sort.Search(len(intervals), func(i int) bool {
		return intervals[i].CheckIn.After(iv.CheckIn)
	})

	intervals = append(intervals, model.RoomInterval{})
	copy(intervals[idx+1:], intervals[idx:])
	intervals[idx] = iv
	return intervals
}
