package service

import (
	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/entity"
)

// Plan catalog. Prices are integer minor units (FCFA has no subdivision).
// All durations use fixed 30-day months so renewals land on predictable dates.
var planCatalog = []entity.PlanInfo{
	{
		Plan:          entity.PlanMonthly,
		Name:          "Monthly",
		DurationDays:  30,
		Price:         2100,
		OriginalPrice: 2100,
	},
	{
		Plan:          entity.PlanQuarterly,
		Name:          "Quarterly",
		DurationDays:  90,
		Price:         5100,
		OriginalPrice: 6300,
		IsPopular:     true,
	},
	{
		Plan:          entity.PlanBiannual,
		Name:          "Biannual",
		DurationDays:  180,
		Price:         9100,
		OriginalPrice: 12600,
	},
	{
		Plan:          entity.PlanAnnual,
		Name:          "Annual",
		DurationDays:  360,
		Price:         16100,
		OriginalPrice: 25200,
	},
}

// ReferralDiscount is the one-time discount a referred owner gets on the
// monthly plan. Longer plans are already discounted.
const ReferralDiscount int64 = 500

func PlanCatalog() []entity.PlanInfo {
	out := make([]entity.PlanInfo, len(planCatalog))
	copy(out, planCatalog)
	return out
}

func LookupPlan(plan entity.SubscriptionPlan) (entity.PlanInfo, error) {
	for _, p := range planCatalog {
		if p.Plan == plan {
			return p, nil
		}
	}
	return entity.PlanInfo{}, apperror.NewValidation("plan", "unknown plan: "+string(plan))
}
