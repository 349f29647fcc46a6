package capacity

import (
	"context"
	"errors"
	"fmt"
	tourserrors "tourbook/internal/tours/errors"
	"tourbook/internal/tours/repository"
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/model"
)

// Accountant owns every mutation of a tour's participant counter. The
// invariant 0 <= current_participants <= max_participants holds after every
// commit and release; concurrent writers on the same tour are serialized by
// the repository's versioned update with a bounded retry loop.
type Accountant struct {
	repo repository.TourRepository
	cfg  *config.Config
}

func NewAccountant(repo repository.TourRepository, cfg *config.Config) *Accountant {
	return &Accountant{
		repo: repo,
		cfg:  cfg,
	}
}

// TryCommit reserves headroom for count participants on the tour. Fails with
// CapacityExceeded when the tour cannot hold them; never over-commits even
// under contention.
func (a *Accountant) TryCommit(ctx context.Context, tourID string, count int) error {
	if count <= 0 {
		return apperrors.InvalidInput(fmt.Sprintf("commit count must be positive, got %d", count))
	}

	for attempt := 0; attempt < a.cfg.VersionRetryMax; attempt++ {
		tour, err := a.loadTour(ctx, tourID)
		if err != nil {
			return err
		}

		if tour.CurrentParticipants+count > tour.MaxParticipants {
			return apperrors.CapacityExceeded(fmt.Sprintf(
				"tour can take %d more participants, requested %d",
				tour.Headroom(), count,
			)).WithDetails(map[string]any{
				"tour_id":              tourID,
				"max_participants":     tour.MaxParticipants,
				"current_participants": tour.CurrentParticipants,
				"requested":            count,
			})
		}

		tour.CurrentParticipants += count

		err = a.repo.UpdateVersioned(ctx, tour)
		if err == nil {
			a.cfg.Log.Info("Capacity committed",
				"tour_id", tourID,
				"count", count,
				"current_participants", tour.CurrentParticipants,
			)
			return nil
		}
		if !errors.Is(err, tourserrors.ErrVersionConflict) {
			return apperrors.Internal("Failed to commit tour capacity", err)
		}
		// Version moved under us: re-read and re-evaluate against fresh state.
	}

	a.cfg.Log.Warn("Capacity commit retries exhausted", "tour_id", tourID, "count", count)
	return apperrors.Timeout("could not commit tour capacity, please retry")
}

// Release returns previously committed headroom. Releasing more than is
// committed is a programming error: it is logged and surfaced, and the
// stored counter is floored at zero rather than corrupted.
func (a *Accountant) Release(ctx context.Context, tourID string, count int) error {
	if count <= 0 {
		return apperrors.InvalidInput(fmt.Sprintf("release count must be positive, got %d", count))
	}

	for attempt := 0; attempt < a.cfg.VersionRetryMax; attempt++ {
		tour, err := a.loadTour(ctx, tourID)
		if err != nil {
			return err
		}

		invariantBroken := tour.CurrentParticipants-count < 0
		if invariantBroken {
			a.cfg.Log.Error("Capacity release below zero",
				"tour_id", tourID,
				"current_participants", tour.CurrentParticipants,
				"release_count", count,
			)
			tour.CurrentParticipants = 0
		} else {
			tour.CurrentParticipants -= count
		}

		err = a.repo.UpdateVersioned(ctx, tour)
		if err == nil {
			if invariantBroken {
				return apperrors.Internal("capacity counter would go negative", nil)
			}
			a.cfg.Log.Info("Capacity released",
				"tour_id", tourID,
				"count", count,
				"current_participants", tour.CurrentParticipants,
			)
			return nil
		}
		if !errors.Is(err, tourserrors.ErrVersionConflict) {
			return apperrors.Internal("Failed to release tour capacity", err)
		}
	}

	a.cfg.Log.Warn("Capacity release retries exhausted", "tour_id", tourID, "count", count)
	return apperrors.Timeout("could not release tour capacity, please retry")
}

func (a *Accountant) loadTour(ctx context.Context, tourID string) (*model.Tour, error) {
	tour, err := a.repo.FindByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, tourserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Tour", tourID)
		}
		if errors.Is(err, tourserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid tour ID format")
		}
		return nil, apperrors.Internal("Failed to load tour", err)
	}
	return tour, nil
}
