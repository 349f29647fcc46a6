package validator

import (
	"io"
	"strings"
	"testing"
	"time"
	"tourbook/pkg/config"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

func intPtr(n int) *int { return &n }

func validTour() model.Tour {
	return model.Tour{
		Name:            "Coastal Highlights",
		StartDate:       time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		MaxParticipants: 30,
		Prices: model.TierPrices{
			AdultCents:  5000,
			ChildCents:  2500,
			SeniorCents: 4000,
		},
		Status: config.TourActive,
	}
}

func TestValidateTour(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	v := NewTourValidator(log)

	tests := []struct {
		name      string
		mutate    func(*model.Tour)
		wantError bool
		wantField string
	}{
		{
			name:   "valid tour",
			mutate: func(*model.Tour) {},
		},
		{
			name:      "name too short",
			mutate:    func(tour *model.Tour) { tour.Name = "A" },
			wantError: true,
			wantField: "Name",
		},
		{
			name:      "missing start date",
			mutate:    func(tour *model.Tour) { tour.StartDate = time.Time{} },
			wantError: true,
			wantField: "StartDate",
		},
		{
			name:      "zero capacity",
			mutate:    func(tour *model.Tour) { tour.MaxParticipants = 0 },
			wantError: true,
			wantField: "MaxParticipants",
		},
		{
			name:      "capacity above cap",
			mutate:    func(tour *model.Tour) { tour.MaxParticipants = 501 },
			wantError: true,
			wantField: "MaxParticipants",
		},
		{
			name:      "unknown status",
			mutate:    func(tour *model.Tour) { tour.Status = "open" },
			wantError: true,
			wantField: "Status",
		},
		{
			name: "participants over capacity",
			mutate: func(tour *model.Tour) {
				tour.MaxParticipants = 10
				tour.CurrentParticipants = 11
			},
			wantError: true,
			wantField: "CurrentParticipants",
		},
		{
			name:      "negative tier price",
			mutate:    func(tour *model.Tour) { tour.Prices.ChildCents = -1 },
			wantError: true,
			wantField: "ChildCents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour := validTour()
			tt.mutate(&tour)

			err := v.Validate(&tour)

			if tt.wantError && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
			if tt.wantError && err != nil && tt.wantField != "" {
				if !strings.Contains(err.Error(), tt.wantField) {
					t.Errorf("expected error to mention %q, got: %v", tt.wantField, err)
				}
			}
		})
	}
}

func TestValidateTourUpdate(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	v := NewTourValidator(log)

	tests := []struct {
		name      string
		update    model.TourUpdate
		wantError bool
	}{
		{
			name:   "empty update",
			update: model.TourUpdate{},
		},
		{
			name:   "rename only",
			update: model.TourUpdate{Name: "Winter Lights"},
		},
		{
			name:   "capacity change",
			update: model.TourUpdate{MaxParticipants: intPtr(40)},
		},
		{
			name:      "capacity below one",
			update:    model.TourUpdate{MaxParticipants: intPtr(0)},
			wantError: true,
		},
		{
			name:      "invalid status",
			update:    model.TourUpdate{Status: "archived"},
			wantError: true,
		},
		{
			name:      "negative price in update",
			update:    model.TourUpdate{Prices: &model.TierPrices{AdultCents: -500}},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(&tt.update)

			if tt.wantError && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}
