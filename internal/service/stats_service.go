package service

import (
	"context"
	"time"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/pkg/logger"
	"marketplace-billing-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IStatsService interface {
	// Touch rebuilds the aggregate row for the given day inside the
	// caller's unit of work. Always a full recompute from the underlying
	// rows; duplicate touches of the same day converge to the same values.
	Touch(ctx context.Context, uow unitofwork.UnitOfWork, day time.Time) error

	// Rebuild recomputes one day in its own transaction. Admin-triggered.
	Rebuild(ctx context.Context, day time.Time) (*entity.DailyStats, error)

	GetRange(ctx context.Context, from, to time.Time) ([]*entity.DailyStats, error)
}

type statsService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewStatsService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IStatsService {
	return &statsService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func (s *statsService) Touch(ctx context.Context, uow unitofwork.UnitOfWork, day time.Time) error {
	start, end := dayBounds(day)

	revenue, err := uow.PaymentRepository().SumCompletedBetween(ctx, start, end)
	if err != nil {
		return err
	}

	counts, err := uow.StatsRepository().CountSubscriptionsCreatedBetween(ctx, start, end)
	if err != nil {
		return err
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	stats := &entity.DailyStats{
		Id:               uuid.New(),
		Date:             start,
		Revenue:          revenue,
		NewSubscriptions: total,
		MonthlyCount:     counts[string(entity.PlanMonthly)],
		QuarterlyCount:   counts[string(entity.PlanQuarterly)],
		BiannualCount:    counts[string(entity.PlanBiannual)],
		AnnualCount:      counts[string(entity.PlanAnnual)],
		UpdatedAt:        time.Now(),
	}
	return uow.StatsRepository().Upsert(ctx, stats)
}

func (s *statsService) Rebuild(ctx context.Context, day time.Time) (*entity.DailyStats, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := s.Touch(ctx, uow, day); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	start, _ := dayBounds(day)
	return s.uowFactory.NewUnitOfWork(ctx).StatsRepository().FindByDate(ctx, start)
}

func (s *statsService) GetRange(ctx context.Context, from, to time.Time) ([]*entity.DailyStats, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	start, _ := dayBounds(from)
	_, end := dayBounds(to)
	return uow.StatsRepository().FindRange(ctx, start, end)
}
