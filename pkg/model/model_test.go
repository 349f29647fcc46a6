package model

import (
	"testing"
	"time"
)

func date(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestRoomIntervalOverlaps(t *testing.T) {
	iv := RoomInterval{CheckIn: date(5), CheckOut: date(10)}

	tests := []struct {
		name     string
		in, out  int
		overlaps bool
	}{
		{"inside", 6, 8, true},
		{"covering", 1, 20, true},
		{"left edge overlap", 3, 6, true},
		{"right edge overlap", 9, 12, true},
		{"adjacent before", 1, 5, false},
		{"adjacent after", 10, 15, false},
		{"disjoint before", 1, 3, false},
		{"disjoint after", 12, 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := iv.Overlaps(date(tt.in), date(tt.out)); got != tt.overlaps {
				t.Errorf("Overlaps([%d,%d)) = %v, want %v", tt.in, tt.out, got, tt.overlaps)
			}
		})
	}
}

func TestRoomIntervalExpired(t *testing.T) {
	iv := RoomInterval{CheckIn: date(5), CheckOut: date(10)}

	if iv.Expired(date(9)) {
		t.Error("interval with future check-out reported expired")
	}
	if iv.Expired(date(10)) {
		t.Error("interval expires strictly after check-out, not at it")
	}
	if !iv.Expired(date(11)) {
		t.Error("interval with past check-out not reported expired")
	}
}

func TestPricingAdd(t *testing.T) {
	a := Pricing{SubtotalCents: 100, TaxesCents: 18, TotalCents: 118}
	b := Pricing{SubtotalCents: 50, TaxesCents: 9, TotalCents: 59}

	got := a.Add(b)
	want := Pricing{SubtotalCents: 150, TaxesCents: 27, TotalCents: 177}
	if got != want {
		t.Errorf("Add = %+v, want %+v", got, want)
	}
}

func TestTourHeadroom(t *testing.T) {
	tour := Tour{MaxParticipants: 10, CurrentParticipants: 7}
	if got := tour.Headroom(); got != 3 {
		t.Errorf("Headroom = %d, want 3", got)
	}
}

func TestReservationCapacityCommitted(t *testing.T) {
	tests := []struct {
		status    string
		committed bool
	}{
		{"interested", false},
		{"confirmed", true},
		{"paid", true},
		{"completed", true},
		{"cancelled", false},
	}

	for _, tt := range tests {
		r := Reservation{Status: tt.status}
		if got := r.CapacityCommitted(); got != tt.committed {
			t.Errorf("CapacityCommitted(%s) = %v, want %v", tt.status, got, tt.committed)
		}
	}
}
