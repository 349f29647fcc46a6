package capacity

import (
	"context"
	"io"
	"testing"
	tourserrors "tourbook/internal/tours/errors"
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

type mockTourRepository struct {
	findByID        func(ctx context.Context, id string) (*model.Tour, error)
	updateVersioned func(ctx context.Context, tour *model.Tour) error
}

func (m *mockTourRepository) Create(ctx context.Context, tour *model.Tour) error { return nil }

func (m *mockTourRepository) FindByID(ctx context.Context, id string) (*model.Tour, error) {
	return m.findByID(ctx, id)
}

func (m *mockTourRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Tour, error) {
	return nil, nil
}

func (m *mockTourRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockTourRepository) UpdateVersioned(ctx context.Context, tour *model.Tour) error {
	return m.updateVersioned(ctx, tour)
}

func (m *mockTourRepository) Delete(ctx context.Context, id string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		VersionRetryMax: 3,
		Log:             logger.New(logger.Config{Output: io.Discard}),
	}
}

// storeTour wires the mock to behave like a one-document versioned store.
func storeTour(tour *model.Tour) *mockTourRepository {
	return &mockTourRepository{
		findByID: func(_ context.Context, id string) (*model.Tour, error) {
			if id != tour.ID {
				return nil, tourserrors.ErrNotFound
			}
			copied := *tour
			return &copied, nil
		},
		updateVersioned: func(_ context.Context, updated *model.Tour) error {
			if updated.Version != tour.Version {
				return tourserrors.ErrVersionConflict
			}
			*tour = *updated
			tour.Version++
			updated.Version++
			return nil
		},
	}
}

func TestTryCommit(t *testing.T) {
	tour := &model.Tour{ID: "tour1", MaxParticipants: 10, CurrentParticipants: 4, Version: 1}
	a := NewAccountant(storeTour(tour), testConfig())

	if err := a.TryCommit(context.Background(), "tour1", 3); err != nil {
		t.Fatalf("TryCommit failed: %v", err)
	}
	if tour.CurrentParticipants != 7 {
		t.Errorf("current participants = %d, want 7", tour.CurrentParticipants)
	}
}

func TestTryCommitExceedsCapacity(t *testing.T) {
	tour := &model.Tour{ID: "tour1", MaxParticipants: 10, CurrentParticipants: 9, Version: 1}
	a := NewAccountant(storeTour(tour), testConfig())

	err := a.TryCommit(context.Background(), "tour1", 2)
	if !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("got %v, want CAPACITY_EXCEEDED", err)
	}
	if tour.CurrentParticipants != 9 {
		t.Errorf("failed commit mutated counter: %d", tour.CurrentParticipants)
	}
}

// Two requests race for the last two seats: one sees the other's write via a
// version conflict and must re-evaluate against fresh state, not blindly
// retry its increment.
func TestTryCommitContention(t *testing.T) {
	tour := &model.Tour{ID: "tour1", MaxParticipants: 2, CurrentParticipants: 0, Version: 1}
	repo := storeTour(tour)
	a := NewAccountant(repo, testConfig())
	ctx := context.Background()

	// Interleave: the second request's first attempt is based on a read taken
	// before the first request committed.
	stale, _ := repo.findByID(ctx, "tour1")

	if err := a.TryCommit(ctx, "tour1", 2); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	// Simulate the raced writer: its stale write fails, and the re-read sees
	// a full tour.
	stale.CurrentParticipants += 2
	if err := repo.updateVersioned(ctx, stale); err == nil {
		t.Fatal("stale write should have hit a version conflict")
	}
	err := a.TryCommit(ctx, "tour1", 2)
	if !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("second commit: got %v, want CAPACITY_EXCEEDED", err)
	}

	if tour.CurrentParticipants != 2 {
		t.Errorf("final count = %d, want 2", tour.CurrentParticipants)
	}
}

func TestTryCommitRetriesExhausted(t *testing.T) {
	tour := &model.Tour{ID: "tour1", MaxParticipants: 10, Version: 1}
	repo := storeTour(tour)
	repo.updateVersioned = func(context.Context, *model.Tour) error {
		return tourserrors.ErrVersionConflict
	}
	a := NewAccountant(repo, testConfig())

	err := a.TryCommit(context.Background(), "tour1", 1)
	if !apperrors.IsCode(err, apperrors.CodeTimeout) {
		t.Fatalf("got %v, want TIMEOUT", err)
	}
}

func TestTryCommitInvalidCount(t *testing.T) {
	a := NewAccountant(&mockTourRepository{}, testConfig())

	for _, count := range []int{0, -3} {
		if err := a.TryCommit(context.Background(), "tour1", count); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			t.Errorf("TryCommit(%d): got %v, want INVALID_INPUT", count, err)
		}
	}
}

func TestRelease(t *testing.T) {
	tour := &model.Tour{ID: "tour1", MaxParticipants: 10, CurrentParticipants: 7, Version: 1}
	a := NewAccountant(storeTour(tour), testConfig())

	if err := a.Release(context.Background(), "tour1", 3); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if tour.CurrentParticipants != 4 {
		t.Errorf("current participants = %d, want 4", tour.CurrentParticipants)
	}
}

func TestReleaseBelowZero(t *testing.T) {
	tour := &model.Tour{ID: "tour1", MaxParticipants: 10, CurrentParticipants: 2, Version: 1}
	a := NewAccountant(storeTour(tour), testConfig())

	err := a.Release(context.Background(), "tour1", 5)
	if !apperrors.IsCode(err, apperrors.CodeInternal) {
		t.Fatalf("got %v, want INTERNAL_ERROR", err)
	}
	if tour.CurrentParticipants != 0 {
		t.Errorf("counter = %d, want clamped to 0", tour.CurrentParticipants)
	}
}

func TestCapacityInvariantUnderSequence(t *testing.T) {
	tour := &model.Tour{ID: "tour1", MaxParticipants: 5, Version: 1}
	a := NewAccountant(storeTour(tour), testConfig())
	ctx := context.Background()

	ops := []struct {
		commit bool
		count  int
	}{
		{true, 3}, {true, 2}, {true, 1}, {false, 2}, {true, 2}, {false, 5}, {true, 4},
	}

	for i, op := range ops {
		if op.commit {
			_ = a.TryCommit(ctx, "tour1", op.count)
		} else {
			_ = a.Release(ctx, "tour1", op.count)
		}
		if tour.CurrentParticipants < 0 || tour.CurrentParticipants > tour.MaxParticipants {
			t.Fatalf("op %d broke invariant: %d not in [0, %d]", i, tour.CurrentParticipants, tour.MaxParticipants)
		}
	}
}
