package pricing

import (
	"fmt"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/model"
)

// Price categories derived from participant age.
const (
	CategoryAdult  = "adult"
	CategoryChild  = "child"
	CategorySenior = "senior"
)

// Age boundaries. Under five rides free but is still recorded as child.
const (
	freeAgeLimit   = 5
	adultAgeLimit  = 18
	seniorAgeStart = 60
)

// Classify maps an age to its price category.
func Classify(age int) string {
	switch {
	case age < adultAgeLimit:
		return CategoryChild
	case age >= seniorAgeStart:
		return CategorySenior
	default:
		return CategoryAdult
	}
}

// PriceFor returns the amount one participant of the given age bills against
// the tour's tier prices.
func PriceFor(age int, prices model.TierPrices) int64 {
	if age < freeAgeLimit {
		return 0
	}
	switch Classify(age) {
	case CategoryChild:
		return prices.ChildCents
	case CategorySenior:
		return prices.SeniorCents
	default:
		return prices.AdultCents
	}
}

// ComputeTotal prices a batch of participants against the tour's tiers and
// annotates each with its derived category. Taxes are a whole-percent rate on
// the subtotal, floor division in cents.
func ComputeTotal(participants []model.Participant, prices model.TierPrices, taxRatePercent int) (model.Pricing, error) {
	if len(participants) == 0 {
		return model.Pricing{}, apperrors.InvalidInput("at least one participant is required")
	}
	if taxRatePercent < 0 || taxRatePercent > 100 {
		return model.Pricing{}, apperrors.InvalidInput(fmt.Sprintf("tax rate must be between 0 and 100, got %d", taxRatePercent))
	}

	var subtotal int64
	for i := range participants {
		p := &participants[i]
		if p.Age < 0 {
			return model.Pricing{}, apperrors.InvalidInput(fmt.Sprintf("participant %q has negative age %d", p.Name, p.Age))
		}
		p.PriceCategory = Classify(p.Age)
		subtotal += PriceFor(p.Age, prices)
	}

	taxes := subtotal * int64(taxRatePercent) / 100

	return model.Pricing{
		SubtotalCents: subtotal,
		TaxesCents:    taxes,
		TotalCents:    subtotal + taxes,
	}, nil
}
