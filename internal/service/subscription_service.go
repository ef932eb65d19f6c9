package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/config"
	"marketplace-billing-be/internal/dto"
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/pkg/logger"
	"marketplace-billing-be/internal/repository/specification"
	"marketplace-billing-be/internal/repository/unitofwork"
	"marketplace-billing-be/pkg/events"
	"marketplace-billing-be/pkg/fraud"
	"marketplace-billing-be/pkg/gateway"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sweepLeaseKey = "billing:sweep:lease"

// Gateway initiation gets a short bounded retry before the error surfaces.
const (
	checkoutInitAttempts = 3
	checkoutInitBackoff  = 100 * time.Millisecond
)

type ISubscriptionService interface {
	GetPlans(ctx context.Context) []*dto.PlanResponse
	GetStatus(ctx context.Context, ownerId uuid.UUID) (*dto.SubscriptionStatusResponse, error)

	CreateTrial(ctx context.Context, ownerId uuid.UUID) (*dto.TrialResponse, error)
	Checkout(ctx context.Context, ownerId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	Renew(ctx context.Context, ownerId uuid.UUID, req *dto.RenewRequest) (*dto.CheckoutResponse, error)
	Cancel(ctx context.Context, ownerId uuid.UUID, req *dto.CancelRequest) error

	// GetPaymentStatus reports local settlement state, polling the provider
	// for pending payments as a webhook delivery fallback.
	GetPaymentStatus(ctx context.Context, ownerId uuid.UUID, transactionId string) (*dto.PaymentStatusResponse, error)

	// Activate flips a pending subscription to active inside the caller's
	// unit of work. The reconciler owns the surrounding transaction.
	Activate(ctx context.Context, uow unitofwork.UnitOfWork, subscriptionId uuid.UUID, transactionId string, now time.Time) (*entity.Subscription, error)

	// HandlePaymentFailure records a failed settlement on the subscription,
	// counting renewal attempts toward cancellation.
	HandlePaymentFailure(ctx context.Context, uow unitofwork.UnitOfWork, subscriptionId uuid.UUID, now time.Time) (*entity.Subscription, error)

	// SweepExpirations moves overdue subscriptions to expired. Guarded by a
	// Redis lease so only one instance sweeps at a time.
	SweepExpirations(ctx context.Context) (int, error)
}

type subscriptionService struct {
	uowFactory     unitofwork.RepositoryFactory
	gw             gateway.Gateway
	fraudChecker   fraud.Checker
	eventPublisher IEventPublisherService
	redisClient    *redis.Client
	billingCfg     config.BillingConfig
	logger         logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	gw gateway.Gateway,
	fraudChecker fraud.Checker,
	eventPublisher IEventPublisherService,
	redisClient *redis.Client,
	billingCfg config.BillingConfig,
	log logger.ILogger,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory:     uowFactory,
		gw:             gw,
		fraudChecker:   fraudChecker,
		eventPublisher: eventPublisher,
		redisClient:    redisClient,
		billingCfg:     billingCfg,
		logger:         log,
	}
}

func (s *subscriptionService) GetPlans(ctx context.Context) []*dto.PlanResponse {
	catalog := PlanCatalog()
	res := make([]*dto.PlanResponse, 0, len(catalog))
	for _, p := range catalog {
		res = append(res, &dto.PlanResponse{
			Plan:          string(p.Plan),
			Name:          p.Name,
			DurationDays:  p.DurationDays,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Discount:      p.OriginalPrice - p.Price,
			IsPopular:     p.IsPopular,
		})
	}
	return res
}

func (s *subscriptionService) GetStatus(ctx context.Context, ownerId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	sub, err := uow.SubscriptionRepository().FindLiveByOwner(ctx, ownerId, now)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.SubscriptionStatusResponse{
			Status:   "none",
			IsActive: false,
		}, nil
	}

	return &dto.SubscriptionStatusResponse{
		SubscriptionId: sub.Id,
		Plan:           string(sub.Plan),
		Status:         string(sub.Status),
		IsActive:       sub.Status == entity.SubscriptionStatusActive || sub.Status == entity.SubscriptionStatusTrial,
		StartDate:      &sub.StartDate,
		EndDate:        &sub.EndDate,
		DaysRemaining:  sub.DaysRemaining(now),
		AutoRenewal:    sub.AutoRenewal,
	}, nil
}

func (s *subscriptionService) GetPaymentStatus(ctx context.Context, ownerId uuid.UUID, transactionId string) (*dto.PaymentStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	payment, err := uow.PaymentRepository().FindByTransactionId(ctx, transactionId)
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.OwnerId != ownerId {
		return nil, apperror.NewNotFound("payment", transactionId)
	}

	res := &dto.PaymentStatusResponse{
		TransactionId: transactionId,
		Status:        string(payment.Status),
		Amount:        payment.Amount,
		Currency:      payment.Currency,
	}

	// Only poll the provider while the webhook is still outstanding. The
	// answer is informational; settlement happens through the webhook CAS.
	if payment.Status == entity.PaymentStatePending {
		providerState, err := s.gw.CheckStatus(ctx, transactionId)
		if err != nil {
			s.logger.Warn("subscription", "Provider status poll failed", map[string]interface{}{
				"transaction_id": transactionId,
				"error":          err.Error(),
			})
		} else {
			res.ProviderStatus = string(providerState)
		}
	}
	return res, nil
}

func (s *subscriptionService) CreateTrial(ctx context.Context, ownerId uuid.UUID) (*dto.TrialResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	owner, err := uow.OwnerRepository().FindById(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperror.NewNotFound("owner", ownerId.String())
	}

	if s.fraudChecker != nil {
		verdict, err := s.fraudChecker.CheckSignup(ctx, ownerId, owner.Phone)
		if err != nil {
			s.logger.Warn("subscription", "Fraud check degraded", map[string]interface{}{
				"owner_id": ownerId.String(),
				"error":    err.Error(),
				"verdict":  string(verdict),
			})
		}
		if verdict == fraud.VerdictBlock {
			return nil, apperror.NewConflict("trial not available for this account")
		}
	}

	live, err := uow.SubscriptionRepository().FindLiveByOwner(ctx, ownerId, now)
	if err != nil {
		return nil, err
	}
	if live != nil {
		return nil, apperror.NewConflict("owner already has a live subscription")
	}

	// One trial per owner, ever.
	hadTrial, err := uow.SubscriptionRepository().HasTrialHistory(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	if hadTrial {
		return nil, apperror.NewConflict("trial already used")
	}

	trialEnd := now.AddDate(0, 0, s.billingCfg.TrialDays)
	sub := &entity.Subscription{
		Id:                 uuid.New(),
		OwnerId:            ownerId,
		Plan:               entity.PlanMonthly,
		Status:             entity.SubscriptionStatusTrial,
		Price:              0,
		StartDate:          now,
		EndDate:            trialEnd,
		TrialStartDate:     &now,
		TrialEndDate:       &trialEnd,
		PaymentStatus:      entity.PaymentStateSuccess,
		MaxRenewalAttempts: s.billingCfg.MaxRenewalAttempts,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := s.supersedePriors(ctx, uow, ownerId, now); err != nil {
		return nil, err
	}
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.NewTrialStarted(sub.Id, ownerId, trialEnd)); err != nil {
			s.logger.Warn("subscription", "Failed to publish trial event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.TrialResponse{
		SubscriptionId: sub.Id,
		TrialEndDate:   trialEnd,
	}, nil
}

func (s *subscriptionService) Checkout(ctx context.Context, ownerId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	plan, err := LookupPlan(entity.SubscriptionPlan(req.Plan))
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	owner, err := uow.OwnerRepository().FindById(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperror.NewNotFound("owner", ownerId.String())
	}

	live, err := uow.SubscriptionRepository().FindLiveByOwner(ctx, ownerId, now)
	if err != nil {
		return nil, err
	}
	if live != nil && live.Status == entity.SubscriptionStatusActive {
		return nil, apperror.NewConflict("owner already has an active subscription, use renew")
	}

	// A valid code always records the referral, so the referrer's bonus
	// fires whatever plan the referred owner picked. Only the discount is
	// monthly-scoped.
	discount := int64(0)
	recordEdge := false
	if req.ReferralCode != "" {
		referrer, err := uow.OwnerRepository().FindByReferralCode(ctx, req.ReferralCode)
		if err != nil {
			return nil, err
		}
		if referrer == nil {
			return nil, apperror.NewValidation("referral_code", "unknown referral code")
		}
		if referrer.Id == ownerId {
			return nil, apperror.NewValidation("referral_code", "cannot refer yourself")
		}
		edge, err := uow.ReferralRepository().FindEdgeByReferredOwner(ctx, ownerId)
		if err != nil {
			return nil, err
		}
		if edge == nil {
			recordEdge = true
			if plan.Plan == entity.PlanMonthly {
				discount = ReferralDiscount
			}
		}
	}

	amount := plan.Price - discount
	transactionId := fmt.Sprintf("SUB-%s", uuid.New().String())

	sub := &entity.Subscription{
		Id:                 uuid.New(),
		OwnerId:            ownerId,
		Plan:               plan.Plan,
		Status:             entity.SubscriptionStatusPending,
		Price:              amount,
		OriginalPrice:      plan.OriginalPrice,
		Discount:           discount,
		StartDate:          now,
		EndDate:            now.AddDate(0, 0, plan.DurationDays),
		PaymentMethod:      req.PaymentMethod,
		PaymentReference:   transactionId,
		PaymentStatus:      entity.PaymentStatePending,
		AutoRenewal:        req.AutoRenewal,
		MaxRenewalAttempts: s.billingCfg.MaxRenewalAttempts,
		ReferralCode:       req.ReferralCode,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	payment := &entity.Payment{
		Id:             uuid.New(),
		TransactionId:  transactionId,
		OwnerId:        ownerId,
		SubscriptionId: sub.Id,
		Provider:       s.gw.Name(),
		Amount:         amount,
		Currency:       s.billingCfg.Currency,
		Status:         entity.PaymentStatePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// One open subscription per owner: the new checkout replaces whatever
	// trial, pending or expired row came before it.
	if err := s.supersedePriors(ctx, uow, ownerId, now); err != nil {
		return nil, err
	}
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, err
	}
	if recordEdge {
		edge := &entity.ReferralEdge{
			Id:              uuid.New(),
			ReferrerCode:    req.ReferralCode,
			ReferredOwnerId: ownerId,
			CreatedAt:       now,
		}
		if err := uow.ReferralRepository().CreateEdge(ctx, edge); err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Gateway call happens outside the transaction; a failure here leaves a
	// pending payment that the owner can retry and the sweep will expire.
	session, err := s.initCheckout(ctx, payment, gateway.Customer{
		FullName: owner.FullName,
		Email:    owner.Email,
		Phone:    owner.Phone,
	}, fmt.Sprintf("%s subscription", plan.Name))
	if err != nil {
		s.logger.Error("subscription", "Gateway checkout failed", map[string]interface{}{
			"transaction_id": transactionId,
			"error":          err.Error(),
		})
		return nil, err
	}

	s.attachSession(ctx, transactionId, session)

	return &dto.CheckoutResponse{
		SubscriptionId: sub.Id,
		TransactionId:  transactionId,
		Amount:         amount,
		Currency:       s.billingCfg.Currency,
		PaymentToken:   session.Token,
		PaymentUrl:     session.RedirectURL,
	}, nil
}

// supersedePriors cancels every non-cancelled subscription the owner still
// holds before a new one is created in the same transaction.
func (s *subscriptionService) supersedePriors(ctx context.Context, uow unitofwork.UnitOfWork, ownerId uuid.UUID, now time.Time) error {
	priors, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByOwnerID{OwnerID: ownerId},
		specification.NonCancelled{},
	)
	if err != nil {
		return err
	}
	for _, prior := range priors {
		prior.Status = entity.SubscriptionStatusCancelled
		prior.AutoRenewal = false
		prior.CancelledAt = &now
		prior.Notes = "superseded"
		prior.UpdatedAt = now
		if err := uow.SubscriptionRepository().Update(ctx, prior); err != nil {
			return err
		}
	}
	return nil
}

// initCheckout calls the gateway, retrying transient gateway errors a few
// times with a short backoff. Anything else surfaces immediately.
func (s *subscriptionService) initCheckout(ctx context.Context, payment *entity.Payment, customer gateway.Customer, description string) (*gateway.CheckoutSession, error) {
	var lastErr error
	for attempt := 1; attempt <= checkoutInitAttempts; attempt++ {
		session, err := s.gw.CreateCheckout(ctx, payment, customer, description)
		if err == nil {
			return session, nil
		}
		lastErr = err

		var gwErr *apperror.GatewayError
		if !errors.As(err, &gwErr) {
			return nil, err
		}
		s.logger.Warn("subscription", "Gateway initiation failed, retrying", map[string]interface{}{
			"transaction_id": payment.TransactionId,
			"attempt":        attempt,
			"error":          err.Error(),
		})
		if attempt == checkoutInitAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * checkoutInitBackoff):
		}
	}
	return nil, lastErr
}

// attachSession stores the provider token on the payment row, but only while
// it is still pending. A confirmation webhook that lands first wins; the
// settled row is never touched again.
func (s *subscriptionService) attachSession(ctx context.Context, transactionId string, session *gateway.CheckoutSession) {
	repo := s.uowFactory.NewUnitOfWork(ctx).PaymentRepository()
	attached, err := repo.AttachProviderSession(ctx, transactionId, session.Token, session.RedirectURL, session.ExpiresAt)
	if err != nil {
		s.logger.Warn("subscription", "Failed to persist gateway session", map[string]interface{}{
			"transaction_id": transactionId,
			"error":          err.Error(),
		})
		return
	}
	if !attached {
		s.logger.Info("subscription", "Payment settled before the session write, leaving it as is", map[string]interface{}{
			"transaction_id": transactionId,
		})
	}
}

func (s *subscriptionService) Renew(ctx context.Context, ownerId uuid.UUID, req *dto.RenewRequest) (*dto.CheckoutResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	owner, err := uow.OwnerRepository().FindById(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperror.NewNotFound("owner", ownerId.String())
	}

	current, err := uow.SubscriptionRepository().FindLiveByOwner(ctx, ownerId, now)
	if err != nil {
		return nil, err
	}
	if current != nil {
		// Renewal is for active or lapsed subscriptions. A pending payment
		// must settle or expire first, and trial owners go through checkout.
		switch current.Status {
		case entity.SubscriptionStatusPending:
			return nil, apperror.NewConflict("a payment is already pending for this owner")
		case entity.SubscriptionStatusTrial:
			return nil, apperror.NewConflict("trial subscriptions are upgraded through checkout")
		}
	}

	planName := req.Plan
	if planName == "" {
		if current == nil {
			return nil, apperror.NewValidation("plan", "no current subscription, plan is required")
		}
		planName = string(current.Plan)
	}
	plan, err := LookupPlan(entity.SubscriptionPlan(planName))
	if err != nil {
		return nil, err
	}

	transactionId := fmt.Sprintf("SUB-%s", uuid.New().String())

	// A renewal extends from the current end date when the subscription is
	// still live, otherwise it restarts from now.
	startDate := now
	if current != nil && current.EndDate.After(now) {
		startDate = current.EndDate
	}

	sub := &entity.Subscription{
		Id:                 uuid.New(),
		OwnerId:            ownerId,
		Plan:               plan.Plan,
		Status:             entity.SubscriptionStatusPending,
		Price:              plan.Price,
		OriginalPrice:      plan.OriginalPrice,
		StartDate:          startDate,
		EndDate:            startDate.AddDate(0, 0, plan.DurationDays),
		PaymentMethod:      req.PaymentMethod,
		PaymentReference:   transactionId,
		PaymentStatus:      entity.PaymentStatePending,
		MaxRenewalAttempts: s.billingCfg.MaxRenewalAttempts,
		Notes:              "renewal",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if current != nil {
		sub.AutoRenewal = current.AutoRenewal
		sub.RenewalAttempts = current.RenewalAttempts
	}

	payment := &entity.Payment{
		Id:             uuid.New(),
		TransactionId:  transactionId,
		OwnerId:        ownerId,
		SubscriptionId: sub.Id,
		Provider:       s.gw.Name(),
		Amount:         plan.Price,
		Currency:       s.billingCfg.Currency,
		Status:         entity.PaymentStatePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := s.supersedePriors(ctx, uow, ownerId, now); err != nil {
		return nil, err
	}
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	session, err := s.initCheckout(ctx, payment, gateway.Customer{
		FullName: owner.FullName,
		Email:    owner.Email,
		Phone:    owner.Phone,
	}, fmt.Sprintf("%s subscription renewal", plan.Name))
	if err != nil {
		return nil, err
	}

	s.attachSession(ctx, transactionId, session)

	return &dto.CheckoutResponse{
		SubscriptionId: sub.Id,
		TransactionId:  transactionId,
		Amount:         plan.Price,
		Currency:       s.billingCfg.Currency,
		PaymentToken:   session.Token,
		PaymentUrl:     session.RedirectURL,
	}, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, ownerId uuid.UUID, req *dto.CancelRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	sub, err := uow.SubscriptionRepository().FindLiveByOwner(ctx, ownerId, now)
	if err != nil {
		return err
	}
	if sub == nil {
		// Cancelling twice is fine. Only an owner with nothing to cancel,
		// now or ever, is an error.
		priors, err := uow.SubscriptionRepository().FindAll(ctx, specification.ByOwnerID{OwnerID: ownerId})
		if err != nil {
			return err
		}
		for _, prior := range priors {
			if prior.Status == entity.SubscriptionStatusCancelled {
				return nil
			}
		}
		return apperror.NewNotFound("subscription", ownerId.String())
	}

	sub.Status = entity.SubscriptionStatusCancelled
	sub.AutoRenewal = false
	sub.CancelledAt = &now
	sub.UpdatedAt = now
	if req.Reason != "" {
		sub.Notes = req.Reason
	}
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.NewSubscriptionCancelled(sub.Id, ownerId, req.Reason)); err != nil {
			s.logger.Warn("subscription", "Failed to publish cancel event", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (s *subscriptionService) Activate(ctx context.Context, uow unitofwork.UnitOfWork, subscriptionId uuid.UUID, transactionId string, now time.Time) (*entity.Subscription, error) {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.NewNotFound("subscription", subscriptionId.String())
	}

	// A success that lands after the owner cancelled must not revive the
	// subscription. The payment stays settled and the wallet keeps the
	// money; the subscription itself is left alone.
	if sub.Status == entity.SubscriptionStatusCancelled {
		s.logger.Info("subscription", "Late settlement for a cancelled subscription, leaving it cancelled", map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"transaction_id":  transactionId,
		})
		return sub, nil
	}

	plan, err := LookupPlan(sub.Plan)
	if err != nil {
		return nil, err
	}

	// Late settlements still grant the full window from activation, except
	// renewals, which keep their scheduled start so the owner loses nothing.
	startDate := sub.StartDate
	if startDate.Before(now) {
		startDate = now
	}

	sub.Status = entity.SubscriptionStatusActive
	sub.StartDate = startDate
	sub.EndDate = startDate.AddDate(0, 0, plan.DurationDays)
	sub.PaymentStatus = entity.PaymentStateSuccess
	sub.PaymentReference = transactionId
	sub.RenewalAttempts = 0
	sub.ActivatedAt = &now
	sub.UpdatedAt = now

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) HandlePaymentFailure(ctx context.Context, uow unitofwork.UnitOfWork, subscriptionId uuid.UUID, now time.Time) (*entity.Subscription, error) {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.NewNotFound("subscription", subscriptionId.String())
	}
	if sub.Status == entity.SubscriptionStatusCancelled {
		return sub, nil
	}

	sub.PaymentStatus = entity.PaymentStateFailed
	sub.RenewalAttempts++
	sub.UpdatedAt = now

	if sub.RenewalAttempts >= sub.MaxRenewalAttempts {
		sub.Status = entity.SubscriptionStatusCancelled
		sub.AutoRenewal = false
		sub.CancelledAt = &now
	}

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) SweepExpirations(ctx context.Context) (int, error) {
	now := time.Now()

	if s.redisClient != nil {
		ok, err := s.redisClient.SetNX(ctx, sweepLeaseKey, now.Format(time.RFC3339), s.billingCfg.SweepLeaseTTL).Result()
		if err != nil {
			s.logger.Warn("sweep", "Redis lease unavailable, sweeping anyway", map[string]interface{}{"error": err.Error()})
		} else if !ok {
			s.logger.Info("sweep", "Another instance holds the sweep lease", nil)
			return 0, nil
		} else {
			defer s.redisClient.Del(ctx, sweepLeaseKey)
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	expired, err := uow.SubscriptionRepository().FindExpired(ctx, now, s.billingCfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, sub := range expired {
		sub.Status = entity.SubscriptionStatusExpired
		sub.UpdatedAt = now
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			s.logger.Error("sweep", "Failed to expire subscription", map[string]interface{}{
				"subscription_id": sub.Id.String(),
				"error":           err.Error(),
			})
			continue
		}
		count++

		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(events.NewSubscriptionExpired(sub.Id, sub.OwnerId)); err != nil {
				s.logger.Warn("sweep", "Failed to publish expiry event", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	s.logger.Info("sweep", "Expiration sweep finished", map[string]interface{}{
		"expired": count,
	})
	return count, nil
}
