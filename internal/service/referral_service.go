package service

import (
	"context"
	"time"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/pkg/logger"
	"marketplace-billing-be/internal/repository/unitofwork"
	"marketplace-billing-be/pkg/events"

	"github.com/google/uuid"
)

type IReferralService interface {
	// RecordReferral validates the code and creates the edge inside the
	// caller's unit of work. Creating the edge consumes the referred
	// owner's one-time discount eligibility.
	RecordReferral(ctx context.Context, uow unitofwork.UnitOfWork, ownerId uuid.UUID, referralCode string) (*entity.ReferralEdge, error)

	// DiscountFor returns the discount the owner would get on the given
	// plan if they checkout with the given code right now.
	DiscountFor(ctx context.Context, ownerId uuid.UUID, plan entity.SubscriptionPlan, referralCode string) (int64, error)

	// GrantBonus extends the referrer's live subscription once the referred
	// owner's first payment settles. Idempotent: the edge's bonus flag
	// flips at most once.
	GrantBonus(ctx context.Context, uow unitofwork.UnitOfWork, referredOwnerId uuid.UUID, bonusDays int, now time.Time) (bool, error)
}

type referralService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher IEventPublisherService
	logger         logger.ILogger
}

func NewReferralService(uowFactory unitofwork.RepositoryFactory, eventPublisher IEventPublisherService, log logger.ILogger) IReferralService {
	return &referralService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *referralService) validateCode(ctx context.Context, uow unitofwork.UnitOfWork, ownerId uuid.UUID, referralCode string) (*entity.Owner, error) {
	referrer, err := uow.OwnerRepository().FindByReferralCode(ctx, referralCode)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, apperror.NewValidation("referral_code", "unknown referral code")
	}
	if referrer.Id == ownerId {
		return nil, apperror.NewValidation("referral_code", "cannot refer yourself")
	}
	return referrer, nil
}

func (s *referralService) RecordReferral(ctx context.Context, uow unitofwork.UnitOfWork, ownerId uuid.UUID, referralCode string) (*entity.ReferralEdge, error) {
	if _, err := s.validateCode(ctx, uow, ownerId, referralCode); err != nil {
		return nil, err
	}

	existing, err := uow.ReferralRepository().FindEdgeByReferredOwner(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflict("referral already recorded for this owner")
	}

	edge := &entity.ReferralEdge{
		Id:              uuid.New(),
		ReferrerCode:    referralCode,
		ReferredOwnerId: ownerId,
		CreatedAt:       time.Now(),
	}
	if err := uow.ReferralRepository().CreateEdge(ctx, edge); err != nil {
		return nil, err
	}
	return edge, nil
}

func (s *referralService) DiscountFor(ctx context.Context, ownerId uuid.UUID, plan entity.SubscriptionPlan, referralCode string) (int64, error) {
	// Only the monthly plan carries the referral discount; longer plans
	// are already priced below list.
	if referralCode == "" || plan != entity.PlanMonthly {
		return 0, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.validateCode(ctx, uow, ownerId, referralCode); err != nil {
		return 0, err
	}

	existing, err := uow.ReferralRepository().FindEdgeByReferredOwner(ctx, ownerId)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		// Discount is single-use; the edge marks it spent.
		return 0, nil
	}
	return ReferralDiscount, nil
}

func (s *referralService) GrantBonus(ctx context.Context, uow unitofwork.UnitOfWork, referredOwnerId uuid.UUID, bonusDays int, now time.Time) (bool, error) {
	edge, err := uow.ReferralRepository().FindEdgeByReferredOwner(ctx, referredOwnerId)
	if err != nil {
		return false, err
	}
	if edge == nil || edge.BonusGranted {
		return false, nil
	}

	won, err := uow.ReferralRepository().MarkBonusGranted(ctx, edge.Id)
	if err != nil {
		return false, err
	}
	if !won {
		// Another settlement got here first.
		return false, nil
	}

	referrer, err := uow.OwnerRepository().FindByReferralCode(ctx, edge.ReferrerCode)
	if err != nil {
		return false, err
	}
	if referrer == nil {
		s.logger.Warn("referral", "Referrer vanished, bonus marked but not applied", map[string]interface{}{
			"referrer_code": edge.ReferrerCode,
		})
		return true, nil
	}

	sub, err := uow.SubscriptionRepository().FindLiveByOwner(ctx, referrer.Id, now)
	if err != nil {
		return false, err
	}
	if sub == nil {
		// No live subscription to extend; the bonus is still consumed.
		s.logger.Info("referral", "Referrer has no live subscription, bonus forfeited", map[string]interface{}{
			"referrer_id": referrer.Id.String(),
		})
		return true, nil
	}

	sub.EndDate = sub.EndDate.AddDate(0, 0, bonusDays)
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return false, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.NewReferralBonusGranted(referrer.Id, referredOwnerId, bonusDays)); err != nil {
			s.logger.Warn("referral", "Failed to publish bonus event", map[string]interface{}{"error": err.Error()})
		}
	}
	return true, nil
}
