package service

import (
	"errors"
	"testing"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCatalogPricing(t *testing.T) {
	cases := []struct {
		plan          entity.SubscriptionPlan
		days          int
		price         int64
		originalPrice int64
	}{
		{entity.PlanMonthly, 30, 2100, 2100},
		{entity.PlanQuarterly, 90, 5100, 6300},
		{entity.PlanBiannual, 180, 9100, 12600},
		{entity.PlanAnnual, 360, 16100, 25200},
	}

	for _, tc := range cases {
		info, err := LookupPlan(tc.plan)
		require.NoError(t, err, "plan %s", tc.plan)
		assert.Equal(t, tc.days, info.DurationDays)
		assert.Equal(t, tc.price, info.Price)
		assert.Equal(t, tc.originalPrice, info.OriginalPrice)
	}
}

func TestLookupPlanUnknown(t *testing.T) {
	_, err := LookupPlan("weekly")
	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestPlanCatalogReturnsCopy(t *testing.T) {
	catalog := PlanCatalog()
	require.NotEmpty(t, catalog)
	catalog[0].Price = 1

	info, err := LookupPlan(entity.PlanMonthly)
	require.NoError(t, err)
	assert.Equal(t, int64(2100), info.Price)
}
