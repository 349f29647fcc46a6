package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	tourserrors "tourbook/internal/tours/errors"
	"tourbook/internal/tours/repository"
	"tourbook/internal/tours/validator"
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/model"
	"tourbook/pkg/sanitizer"
)

type TourService interface {
	Create(ctx context.Context, tour *model.Tour) error
	GetByID(ctx context.Context, id string) (*model.Tour, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Tour, int64, error)
	Update(ctx context.Context, id string, updates *model.TourUpdate) error
	Delete(ctx context.Context, id string) error
}

type tourService struct {
	repo      repository.TourRepository
	validator *validator.TourValidator
	cfg       *config.Config
}

func NewTourService(
	repo repository.TourRepository,
	validator *validator.TourValidator,
	cfg *config.Config,
) TourService {
	return &tourService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *tourService) Create(ctx context.Context, tour *model.Tour) error {
	s.applyDefaults(tour)
	s.sanitize(tour)
	if err := s.validate(tour); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, tour); err != nil {
		s.cfg.Log.Error("Failed to create tour", "error", err)
		return apperrors.Internal("Failed to create tour", err)
	}

	s.cfg.Log.Info("Tour created successfully",
		"id", tour.ID,
		"name", tour.Name,
		"max_participants", tour.MaxParticipants,
		"start_date", tour.StartDate,
	)
	return nil
}

func (s *tourService) GetByID(ctx context.Context, id string) (*model.Tour, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tour ID cannot be empty")
	}

	tour, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, tourserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Tour", id)
		}
		if errors.Is(err, tourserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid tour ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve tour", err)
	}

	return tour, nil
}

func (s *tourService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Tour, int64, error) {
	var count int64
	var tours []*model.Tour
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count tours", "error", errCount)
			errCount = apperrors.Internal("Failed to count tours", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		tours, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list tours", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve tours", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return tours, count, nil
}

func (s *tourService) Update(ctx context.Context, id string, updates *model.TourUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Tour ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Tour update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	for attempt := 0; attempt < s.cfg.VersionRetryMax; attempt++ {
		existing, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}

		merged := s.mergeTourUpdates(existing, updates)
		s.sanitize(merged)
		if err := s.validate(merged); err != nil {
			return err
		}

		// Shrinking capacity below the committed participant count would
		// break the capacity invariant for existing reservations.
		if merged.MaxParticipants < merged.CurrentParticipants {
			return apperrors.CapacityExceeded(fmt.Sprintf(
				"cannot reduce capacity to %d: %d participants already committed",
				merged.MaxParticipants, merged.CurrentParticipants,
			))
		}

		err = s.repo.UpdateVersioned(ctx, merged)
		if err == nil {
			s.cfg.Log.Info("Tour updated successfully", "id", id)
			return nil
		}
		if errors.Is(err, tourserrors.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, tourserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Tour", id)
		}
		s.cfg.Log.Error("Failed to update tour", "id", id, "error", err)
		return apperrors.Internal("Failed to update tour", err)
	}

	return apperrors.Timeout("could not update tour, please retry")
}

func (s *tourService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Tour ID cannot be empty")
	}

	tour, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Tours with committed participants are soft-disabled, never removed.
	if tour.CurrentParticipants > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"tour has %d committed participants; cancel its reservations or set status inactive instead",
			tour.CurrentParticipants,
		))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, tourserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Tour", id)
		}
		return apperrors.Internal("Failed to delete tour", err)
	}

	s.cfg.Log.Info("Tour deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *tourService) applyDefaults(t *model.Tour) {
	if t.Status == "" {
		t.Status = config.TourActive
	}
	t.CurrentParticipants = 0
}

func (s *tourService) sanitize(t *model.Tour) {
	t.Name = sanitizer.NormalizeName(t.Name)
	t.Description = sanitizer.TrimAndNormalize(t.Description)
}

func (s *tourService) mergeTourUpdates(existing *model.Tour, updates *model.TourUpdate) *model.Tour {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.StartDate != nil {
		merged.StartDate = *updates.StartDate
	}
	if updates.MaxParticipants != nil {
		merged.MaxParticipants = *updates.MaxParticipants
	}
	if updates.Prices != nil {
		merged.Prices = *updates.Prices
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *tourService) validate(tour *model.Tour) error {
	if err := s.validator.Validate(tour); err != nil {
		s.cfg.Log.Warn("Tour validation failed", "error", err)
		return apperrors.Validation("Tour validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
