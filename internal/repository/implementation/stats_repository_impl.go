package implementation

import (
	"context"
	"errors"
	"time"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/mapper"
	"marketplace-billing-be/internal/model"
	"marketplace-billing-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StatsMapper
}

func NewStatsRepository(db *gorm.DB) contract.StatsRepository {
	return &StatsRepositoryImpl{
		db:     db,
		mapper: mapper.NewStatsMapper(),
	}
}

func (r *StatsRepositoryImpl) Upsert(ctx context.Context, stats *entity.DailyStats) error {
	m := r.mapper.ToModel(stats)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"revenue", "new_subscriptions",
			"monthly_count", "quarterly_count", "biannual_count", "annual_count",
			"updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*stats = *r.mapper.ToEntity(m)
	return nil
}

func (r *StatsRepositoryImpl) FindByDate(ctx context.Context, date time.Time) (*entity.DailyStats, error) {
	var m model.DailyStats
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *StatsRepositoryImpl) FindRange(ctx context.Context, from, to time.Time) ([]*entity.DailyStats, error) {
	var models []*model.DailyStats
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Order("date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.DailyStats, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *StatsRepositoryImpl) CountSubscriptionsCreatedBetween(ctx context.Context, from, to time.Time) (map[string]int, error) {
	type row struct {
		Plan  string
		Count int
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Select("plan, COUNT(*) as count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("plan").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, rw := range rows {
		counts[rw.Plan] = rw.Count
	}
	return counts, nil
}
