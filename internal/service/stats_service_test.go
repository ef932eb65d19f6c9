package service

import (
	"context"
	"testing"
	"time"

	"marketplace-billing-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCompletedPayment(env *testEnv, amount int64, completedAt time.Time) {
	id := uuid.New()
	env.uow.payments.rows["SUB-"+id.String()] = &entity.Payment{
		Id:            id,
		TransactionId: "SUB-" + id.String(),
		Amount:        amount,
		Status:        entity.PaymentStateSuccess,
		CompletedAt:   &completedAt,
	}
}

func TestRebuildRecomputesDayFromSource(t *testing.T) {
	env := newTestEnv()
	svc := env.newStatsService()
	ctx := context.Background()

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	seedCompletedPayment(env, 2100, day.Add(9*time.Hour))
	seedCompletedPayment(env, 5100, day.Add(14*time.Hour))
	// Outside the day, must not count.
	seedCompletedPayment(env, 16100, day.AddDate(0, 0, 1).Add(time.Hour))

	require.NoError(t, env.uow.subs.Create(ctx, &entity.Subscription{
		Id: uuid.New(), OwnerId: uuid.New(), Plan: entity.PlanMonthly, CreatedAt: day.Add(9 * time.Hour),
	}))
	require.NoError(t, env.uow.subs.Create(ctx, &entity.Subscription{
		Id: uuid.New(), OwnerId: uuid.New(), Plan: entity.PlanQuarterly, CreatedAt: day.Add(14 * time.Hour),
	}))

	row, err := svc.Rebuild(ctx, day.Add(11*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.Equal(t, int64(7200), row.Revenue)
	assert.Equal(t, 2, row.NewSubscriptions)
	assert.Equal(t, 1, row.MonthlyCount)
	assert.Equal(t, 1, row.QuarterlyCount)
	assert.Equal(t, 0, row.AnnualCount)
}

func TestRebuildIsIdempotent(t *testing.T) {
	env := newTestEnv()
	svc := env.newStatsService()
	ctx := context.Background()

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	seedCompletedPayment(env, 9100, day.Add(time.Hour))

	first, err := svc.Rebuild(ctx, day)
	require.NoError(t, err)
	second, err := svc.Rebuild(ctx, day)
	require.NoError(t, err)

	assert.Equal(t, first.Revenue, second.Revenue)
	assert.Equal(t, first.NewSubscriptions, second.NewSubscriptions)
	assert.Len(t, env.uow.stats.rows, 1)
}

func TestGetRangeReturnsRowsInsideBounds(t *testing.T) {
	env := newTestEnv()
	svc := env.newStatsService()
	ctx := context.Background()

	for _, d := range []int{18, 19, 20} {
		day := time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
		require.NoError(t, env.uow.stats.Upsert(ctx, &entity.DailyStats{Id: uuid.New(), Date: day, Revenue: int64(d)}))
	}

	rows, err := svc.GetRange(ctx, time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
