package contract

import (
	"context"
	"time"

	"marketplace-billing-be/internal/entity"
)

type StatsRepository interface {
	// Upsert writes the row for stats.Date, replacing every aggregate column.
	Upsert(ctx context.Context, stats *entity.DailyStats) error
	FindByDate(ctx context.Context, date time.Time) (*entity.DailyStats, error)
	FindRange(ctx context.Context, from, to time.Time) ([]*entity.DailyStats, error)

	// CountSubscriptionsCreatedBetween breaks new subscriptions down by plan.
	CountSubscriptionsCreatedBetween(ctx context.Context, from, to time.Time) (map[string]int, error)
}
