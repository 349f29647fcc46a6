package pricing

import (
	"testing"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{0, CategoryChild},
		{4, CategoryChild},
		{5, CategoryChild},
		{17, CategoryChild},
		{18, CategoryAdult},
		{35, CategoryAdult},
		{59, CategoryAdult},
		{60, CategorySenior},
		{90, CategorySenior},
	}

	for _, tt := range tests {
		if got := Classify(tt.age); got != tt.want {
			t.Errorf("Classify(%d) = %q, want %q", tt.age, got, tt.want)
		}
	}
}

func TestPriceFor(t *testing.T) {
	prices := model.TierPrices{AdultCents: 10000, ChildCents: 5000, SeniorCents: 7500}

	tests := []struct {
		name string
		age  int
		want int64
	}{
		{"under five rides free", 4, 0},
		{"child pays child tier", 10, 5000},
		{"seventeen is still child", 17, 5000},
		{"adult pays adult tier", 30, 10000},
		{"senior pays senior tier", 65, 7500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriceFor(tt.age, prices); got != tt.want {
				t.Errorf("PriceFor(%d) = %d, want %d", tt.age, got, tt.want)
			}
		})
	}
}

func TestComputeTotal(t *testing.T) {
	prices := model.TierPrices{AdultCents: 10000, ChildCents: 5000, SeniorCents: 7500}

	participants := []model.Participant{
		{Name: "Mia", Age: 4},
		{Name: "Liam", Age: 17},
		{Name: "Rosa", Age: 65},
	}

	got, err := ComputeTotal(participants, prices, 18)
	if err != nil {
		t.Fatalf("ComputeTotal returned error: %v", err)
	}

	// 0 + 5000 + 7500 = 12500; 18% tax = 2250.
	want := model.Pricing{SubtotalCents: 12500, TaxesCents: 2250, TotalCents: 14750}
	if got != want {
		t.Errorf("ComputeTotal = %+v, want %+v", got, want)
	}

	if participants[0].PriceCategory != CategoryChild {
		t.Errorf("under-five category = %q, want %q", participants[0].PriceCategory, CategoryChild)
	}
	if participants[1].PriceCategory != CategoryChild {
		t.Errorf("seventeen category = %q, want %q", participants[1].PriceCategory, CategoryChild)
	}
	if participants[2].PriceCategory != CategorySenior {
		t.Errorf("senior category = %q, want %q", participants[2].PriceCategory, CategorySenior)
	}
}

func TestComputeTotalDeterministic(t *testing.T) {
	prices := model.TierPrices{AdultCents: 9999, ChildCents: 1234, SeniorCents: 5678}
	participants := []model.Participant{
		{Name: "A", Age: 22},
		{Name: "B", Age: 7},
		{Name: "C", Age: 70},
	}

	first, err := ComputeTotal(participants, prices, 18)
	if err != nil {
		t.Fatalf("first ComputeTotal returned error: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := ComputeTotal(participants, prices, 18)
		if err != nil {
			t.Fatalf("repeat ComputeTotal returned error: %v", err)
		}
		if again != first {
			t.Fatalf("ComputeTotal not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestComputeTotalZeroTax(t *testing.T) {
	prices := model.TierPrices{AdultCents: 10000}
	got, err := ComputeTotal([]model.Participant{{Name: "A", Age: 30}}, prices, 0)
	if err != nil {
		t.Fatalf("ComputeTotal returned error: %v", err)
	}
	if got.TaxesCents != 0 || got.TotalCents != got.SubtotalCents {
		t.Errorf("zero tax rate: got %+v", got)
	}
}

func TestComputeTotalInvalidInput(t *testing.T) {
	prices := model.TierPrices{AdultCents: 100}

	tests := []struct {
		name         string
		participants []model.Participant
		taxRate      int
	}{
		{"no participants", nil, 18},
		{"negative age", []model.Participant{{Name: "A", Age: -1}}, 18},
		{"tax rate over 100", []model.Participant{{Name: "A", Age: 30}}, 101},
		{"negative tax rate", []model.Participant{{Name: "A", Age: 30}}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTotal(tt.participants, prices, tt.taxRate)
			if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}
