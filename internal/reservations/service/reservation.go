package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	reserrors "tourbook/internal/reservations/errors"
	"tourbook/internal/reservations/events"
	"tourbook/internal/reservations/lifecycle"
	"tourbook/internal/reservations/pricing"
	"tourbook/internal/reservations/repository"
	"tourbook/internal/reservations/validator"
	"tourbook/internal/rooms/ledger"
	"tourbook/internal/tours/capacity"
	tourserrors "tourbook/internal/tours/errors"
	toursrepo "tourbook/internal/tours/repository"
	"tourbook/pkg/clock"
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/model"
	"tourbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Create(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetByTour(ctx context.Context, tourID string, limit int, offset int64) ([]*model.Reservation, int64, error)
	AddParticipants(ctx context.Context, id string, participants []model.Participant) (*model.Reservation, error)
	Transition(ctx context.Context, id string, newStatus string) (*model.Reservation, error)
	Cancel(ctx context.Context, id string, reason string) (*model.Reservation, error)
	Delete(ctx context.Context, id string) error
}

// reservationService coordinates tour capacity, room intervals, pricing and
// the reservation lifecycle. Cross-entity acquisition order is fixed: tour
// capacity first, then rooms in ascending room-ID order. Any failure after a
// partial acquisition rolls back everything taken in the same call.
type reservationService struct {
	repo       repository.ReservationRepository
	locks      repository.SlotLockRepository
	tourRepo   toursrepo.TourRepository
	accountant *capacity.Accountant
	ledger     *ledger.Ledger
	validator  *validator.ReservationValidator
	publisher  events.Publisher
	cfg        *config.Config
	clock      clock.Clock
}

func NewReservationService(
	repo repository.ReservationRepository,
	locks repository.SlotLockRepository,
	tourRepo toursrepo.TourRepository,
	accountant *capacity.Accountant,
	ledger *ledger.Ledger,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	cfg *config.Config,
	clk clock.Clock,
) ReservationService {
	return &reservationService{
		repo:       repo,
		locks:      locks,
		tourRepo:   tourRepo,
		accountant: accountant,
		ledger:     ledger,
		validator:  validator,
		publisher:  publisher,
		cfg:        cfg,
		clock:      clk,
	}
}

func (s *reservationService) Create(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Reservation request validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	s.sanitizeParticipants(req.Participants)

	tour, err := s.gateTour(ctx, req.TourID)
	if err != nil {
		return nil, err
	}

	priced, err := pricing.ComputeTotal(req.Participants, tour.Prices, s.cfg.TaxRatePercent)
	if err != nil {
		return nil, err
	}

	roomRequests := sortedRoomRequests(req.RoomRequests)
	unlock, err := s.acquireSlotLocks(ctx, roomRequests)
	if err != nil {
		return nil, err
	}
	defer unlock()

	reservation := &model.Reservation{
		TourID:            req.TourID,
		Participants:      req.Participants,
		TotalParticipants: len(req.Participants),
		Pricing:           priced,
		Status:            config.StatusInterested,
		RoomAssignments:   []model.RoomAssignment{},
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		s.cfg.Log.Error("Failed to create reservation", "error", err)
		return nil, apperrors.Internal("Failed to create reservation", err)
	}

	if err := s.allocate(ctx, reservation, roomRequests, req.Confirm); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"tour_id", reservation.TourID,
		"status", reservation.Status,
		"total_participants", reservation.TotalParticipants,
		"total_cents", reservation.Pricing.TotalCents,
		"rooms", len(reservation.RoomAssignments),
	)
	s.publisher.ReservationCreated(ctx, reservation)
	return reservation, nil
}

// allocate takes capacity (when confirming) and room intervals for a freshly
// created reservation, then persists the resulting state. On any failure
// everything taken in this call is compensated and the document is removed,
// leaving tour and room state exactly as before.
func (s *reservationService) allocate(ctx context.Context, reservation *model.Reservation, roomRequests []model.RoomRequest, confirm bool) error {
	committed := false
	var reserved []model.RoomRequest

	rollback := func() {
		for i := len(reserved) - 1; i >= 0; i-- {
			if err := s.ledger.Release(ctx, reserved[i].RoomID, reservation.ID); err != nil {
				s.cfg.Log.Error("Rollback: failed to release room",
					"room_id", reserved[i].RoomID, "reservation_id", reservation.ID, "error", err)
			}
		}
		if committed {
			if err := s.accountant.Release(ctx, reservation.TourID, reservation.TotalParticipants); err != nil {
				s.cfg.Log.Error("Rollback: failed to release tour capacity",
					"tour_id", reservation.TourID, "reservation_id", reservation.ID, "error", err)
			}
		}
		if err := s.repo.Delete(ctx, reservation.ID); err != nil {
			s.cfg.Log.Error("Rollback: failed to remove reservation",
				"reservation_id", reservation.ID, "error", err)
		}
	}

	if confirm {
		if err := s.accountant.TryCommit(ctx, reservation.TourID, reservation.TotalParticipants); err != nil {
			rollback()
			return err
		}
		committed = true
	}

	for _, rr := range roomRequests {
		if err := s.ledger.Reserve(ctx, rr.RoomID, rr.CheckIn, rr.CheckOut, reservation.ID, rr.OccupantCount); err != nil {
			rollback()
			return err
		}
		reserved = append(reserved, rr)
		reservation.RoomAssignments = append(reservation.RoomAssignments, model.RoomAssignment{
			RoomID:   rr.RoomID,
			CheckIn:  rr.CheckIn,
			CheckOut: rr.CheckOut,
		})
	}

	if confirm {
		reservation.Status = config.StatusConfirmed
	}

	if err := s.repo.UpdateVersioned(ctx, reservation); err != nil {
		s.cfg.Log.Error("Failed to persist reservation allocation", "reservation_id", reservation.ID, "error", err)
		rollback()
		return apperrors.Internal("Failed to persist reservation", err)
	}

	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) GetByTour(ctx context.Context, tourID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if tourID == "" {
		return nil, 0, apperrors.InvalidInput("Tour ID cannot be empty")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByTour(ctx, tourID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "tour_id", tourID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByTour(ctx, tourID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "tour_id", tourID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// AddParticipants appends participants, re-pricing additively. On a
// capacity-holding reservation the delta is committed first; a failed commit
// or a failed save leaves the participant list, pricing and capacity
// untouched.
func (s *reservationService) AddParticipants(ctx context.Context, id string, participants []model.Participant) (*model.Reservation, error) {
	s.sanitizeParticipants(participants)

	for attempt := 0; attempt < s.cfg.VersionRetryMax; attempt++ {
		reservation, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if lifecycle.IsTerminal(reservation.Status) || reservation.Status == config.StatusPaid {
			return nil, apperrors.Conflict(fmt.Sprintf(
				"cannot add participants to a %s reservation", reservation.Status,
			))
		}

		if err := s.validator.ValidateParticipants(participants, len(reservation.Participants)); err != nil {
			s.cfg.Log.Warn("Participant validation failed", "id", id, "error", err)
			return nil, apperrors.Validation("Participant validation failed", map[string]any{"error": err.Error()})
		}

		tour, err := s.loadTour(ctx, reservation.TourID)
		if err != nil {
			return nil, err
		}

		delta, err := pricing.ComputeTotal(participants, tour.Prices, s.cfg.TaxRatePercent)
		if err != nil {
			return nil, err
		}

		committed := false
		if reservation.CapacityCommitted() {
			if err := s.accountant.TryCommit(ctx, reservation.TourID, len(participants)); err != nil {
				return nil, err
			}
			committed = true
		}

		reservation.Participants = append(reservation.Participants, participants...)
		reservation.TotalParticipants += len(participants)
		reservation.Pricing = reservation.Pricing.Add(delta)

		err = s.repo.UpdateVersioned(ctx, reservation)
		if err == nil {
			s.cfg.Log.Info("Participants added",
				"id", id,
				"added", len(participants),
				"total_participants", reservation.TotalParticipants,
			)
			return reservation, nil
		}

		// The save failed, so the delta commit must not stick.
		if committed {
			if relErr := s.accountant.Release(ctx, reservation.TourID, len(participants)); relErr != nil {
				s.cfg.Log.Error("Failed to release delta capacity after failed save",
					"id", id, "tour_id", reservation.TourID, "error", relErr)
			}
		}
		if errors.Is(err, reserrors.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		s.cfg.Log.Error("Failed to save participants", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to add participants", err)
	}

	return nil, apperrors.Timeout("could not add participants, please retry")
}

func (s *reservationService) Transition(ctx context.Context, id string, newStatus string) (*model.Reservation, error) {
	return s.transition(ctx, id, newStatus, "")
}

// Cancel is the cancellation edge with an audit reason attached.
func (s *reservationService) Cancel(ctx context.Context, id string, reason string) (*model.Reservation, error) {
	return s.transition(ctx, id, config.StatusCancelled, sanitizer.TrimAndNormalize(reason))
}

func (s *reservationService) transition(ctx context.Context, id string, newStatus string, cancelReason string) (*model.Reservation, error) {
	newStatus = lifecycle.Normalize(newStatus)
	if !lifecycle.Known(newStatus) {
		return nil, apperrors.InvalidInput("unknown reservation status: " + newStatus)
	}

	for attempt := 0; attempt < s.cfg.VersionRetryMax; attempt++ {
		reservation, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		previous := reservation.Status

		if err := lifecycle.CanTransition(previous, newStatus); err != nil {
			return nil, err
		}

		// Confirmation takes tour headroom before the status flips; a failed
		// commit leaves the reservation as it was.
		committed := false
		if lifecycle.CommitsCapacity(previous, newStatus) {
			if err := s.accountant.TryCommit(ctx, reservation.TourID, reservation.TotalParticipants); err != nil {
				return nil, err
			}
			committed = true
		}

		reservation.Status = newStatus
		if newStatus == config.StatusCancelled {
			reservation.CancelReason = cancelReason
		}

		err = s.repo.UpdateVersioned(ctx, reservation)
		if err == nil {
			s.compensate(ctx, reservation, previous)

			s.cfg.Log.Info("Reservation transitioned",
				"id", id,
				"from", previous,
				"to", newStatus,
			)
			s.publisher.StatusChanged(ctx, reservation, previous)
			return reservation, nil
		}

		if committed {
			if relErr := s.accountant.Release(ctx, reservation.TourID, reservation.TotalParticipants); relErr != nil {
				s.cfg.Log.Error("Failed to release capacity after failed transition save",
					"id", id, "tour_id", reservation.TourID, "error", relErr)
			}
		}
		if errors.Is(err, reserrors.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		s.cfg.Log.Error("Failed to save transition", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to transition reservation", err)
	}

	return nil, apperrors.Timeout("could not transition reservation, please retry")
}

// compensate runs the side effects owed after a persisted cancellation:
// returning tour headroom and freeing every room interval the reservation
// holds. The status change is already durable; failures here are logged and
// retried by the accountant and ledger internally.
func (s *reservationService) compensate(ctx context.Context, reservation *model.Reservation, previous string) {
	if reservation.Status != config.StatusCancelled {
		return
	}

	if lifecycle.ReleasesCapacity(previous, reservation.Status) {
		if err := s.accountant.Release(ctx, reservation.TourID, reservation.TotalParticipants); err != nil {
			s.cfg.Log.Error("Failed to release capacity on cancellation",
				"id", reservation.ID, "tour_id", reservation.TourID, "error", err)
		}
	}

	for _, roomID := range assignedRoomIDs(reservation.RoomAssignments) {
		if err := s.ledger.Release(ctx, roomID, reservation.ID); err != nil {
			s.cfg.Log.Error("Failed to release room on cancellation",
				"id", reservation.ID, "room_id", roomID, "error", err)
		}
	}
}

// Delete removes a reservation that holds no commitments. Anything past
// interested must be cancelled first so its compensations run.
func (s *reservationService) Delete(ctx context.Context, id string) error {
	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if reservation.Status != config.StatusInterested && reservation.Status != config.StatusCancelled {
		return apperrors.Conflict(fmt.Sprintf(
			"cannot delete a %s reservation, cancel it first", reservation.Status,
		))
	}

	// Room releases and document removal commit together.
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		for _, roomID := range assignedRoomIDs(reservation.RoomAssignments) {
			if err := s.ledger.Release(sessCtx, roomID, reservation.ID); err != nil {
				return err
			}
		}
		return s.repo.Delete(sessCtx, id)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		if errors.Is(err, reserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		return apperrors.Internal("Failed to delete reservation", err)
	}

	s.cfg.Log.Info("Reservation deleted", "id", id)
	return nil
}

// --- Helpers ---

// gateTour checks the tour can take new reservations: it must be active and
// must not have started yet.
func (s *reservationService) gateTour(ctx context.Context, tourID string) (*model.Tour, error) {
	tour, err := s.loadTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	if tour.Status != config.TourActive {
		return nil, apperrors.TourUnavailable(fmt.Sprintf("tour is %s", tour.Status)).
			WithDetails(map[string]any{"tour_id": tourID, "status": tour.Status})
	}
	if !tour.StartDate.After(s.clock.Now()) {
		return nil, apperrors.TourUnavailable("tour has already started").
			WithDetails(map[string]any{"tour_id": tourID, "start_date": tour.StartDate})
	}

	return tour, nil
}

func (s *reservationService) loadTour(ctx context.Context, tourID string) (*model.Tour, error) {
	tour, err := s.tourRepo.FindByID(ctx, tourID)
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

// acquireSlotLocks serializes concurrent create requests touching the same
// rooms. Locks are taken in ascending room-ID order, the same order rooms
// are later reserved in, so two requests for the same room set cannot
// deadlock.
func (s *reservationService) acquireSlotLocks(ctx context.Context, roomRequests []model.RoomRequest) (func(), error) {
	var held []string
	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := s.locks.Release(ctx, held[i]); err != nil {
				s.cfg.Log.Error("Failed to release slot lock", "key", held[i], "error", err)
			}
		}
	}

	for _, rr := range roomRequests {
		key := "room:" + rr.RoomID
		if err := s.locks.Acquire(ctx, key, s.cfg.SlotLockTTL); err != nil {
			unlock()
			if errors.Is(err, reserrors.ErrLockHeld) {
				return nil, apperrors.Timeout("room is being booked by another request, please retry")
			}
			return nil, apperrors.Internal("Failed to acquire booking lock", err)
		}
		held = append(held, key)
	}

	return unlock, nil
}

func (s *reservationService) sanitizeParticipants(participants []model.Participant) {
	for i := range participants {
		participants[i].Name = sanitizer.NormalizeName(participants[i].Name)
		participants[i].Relationship = sanitizer.TrimAndNormalize(participants[i].Relationship)
	}
}

func sortedRoomRequests(requests []model.RoomRequest) []model.RoomRequest {
	out := make([]model.RoomRequest, len(requests))
	copy(out, requests)
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

func assignedRoomIDs(assignments []model.RoomAssignment) []string {
	seen := make(map[string]struct{}, len(assignments))
	var ids []string
	for _, a := range assignments {
		if _, ok := seen[a.RoomID]; ok {
			continue
		}
		seen[a.RoomID] = struct{}{}
		ids = append(ids, a.RoomID)
	}
	return ids
}
