package validator

import (
	"io"
	"strings"
	"testing"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

func intPtr(n int) *int { return &n }

func validRoom() model.Room {
	return model.Room{
		AccommodationID: "64a0000000000000000000cc",
		Name:            "double 204",
		Capacity:        2,
	}
}

func TestValidateRoom(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	v := NewRoomValidator(log)

	tests := []struct {
		name      string
		mutate    func(*model.Room)
		wantError bool
		wantField string
	}{
		{
			name:   "valid room",
			mutate: func(*model.Room) {},
		},
		{
			name:      "missing accommodation",
			mutate:    func(room *model.Room) { room.AccommodationID = "" },
			wantError: true,
			wantField: "AccommodationID",
		},
		{
			name:      "missing name",
			mutate:    func(room *model.Room) { room.Name = "" },
			wantError: true,
			wantField: "Name",
		},
		{
			name:      "zero capacity",
			mutate:    func(room *model.Room) { room.Capacity = 0 },
			wantError: true,
			wantField: "Capacity",
		},
		{
			name:      "capacity above cap",
			mutate:    func(room *model.Room) { room.Capacity = 21 },
			wantError: true,
			wantField: "Capacity",
		},
		{
			name:      "malformed id",
			mutate:    func(room *model.Room) { room.ID = "nope" },
			wantError: true,
			wantField: "ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := validRoom()
			tt.mutate(&room)

			err := v.Validate(&room)

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

func TestValidateRoomUpdate(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	v := NewRoomValidator(log)

	tests := []struct {
		name      string
		update    model.RoomUpdate
		wantError bool
	}{
		{
			name:   "empty update",
			update: model.RoomUpdate{},
		},
		{
			name:   "rename only",
			update: model.RoomUpdate{Name: "double 305"},
		},
		{
			name:   "capacity change",
			update: model.RoomUpdate{Capacity: intPtr(4)},
		},
		{
			name:      "capacity below one",
			update:    model.RoomUpdate{Capacity: intPtr(0)},
			wantError: true,
		},
		{
			name:      "capacity above cap",
			update:    model.RoomUpdate{Capacity: intPtr(21)},
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
