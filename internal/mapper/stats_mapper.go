package mapper

import (
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/model"
)

type StatsMapper struct{}

func NewStatsMapper() *StatsMapper {
	return &StatsMapper{}
}

func (m *StatsMapper) ToModel(e *entity.DailyStats) *model.DailyStats {
	if e == nil {
		return nil
	}
	return &model.DailyStats{
		Id:               e.Id,
		Date:             e.Date,
		Revenue:          e.Revenue,
		NewSubscriptions: e.NewSubscriptions,
		MonthlyCount:     e.MonthlyCount,
		QuarterlyCount:   e.QuarterlyCount,
		BiannualCount:    e.BiannualCount,
		AnnualCount:      e.AnnualCount,
		UpdatedAt:        e.UpdatedAt,
	}
}

func (m *StatsMapper) ToEntity(md *model.DailyStats) *entity.DailyStats {
	if md == nil {
		return nil
	}
	return &entity.DailyStats{
		Id:               md.Id,
		Date:             md.Date,
		Revenue:          md.Revenue,
		NewSubscriptions: md.NewSubscriptions,
		MonthlyCount:     md.MonthlyCount,
		QuarterlyCount:   md.QuarterlyCount,
		BiannualCount:    md.BiannualCount,
		AnnualCount:      md.AnnualCount,
		UpdatedAt:        md.UpdatedAt,
	}
}
