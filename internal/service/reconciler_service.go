package service

import (
	"context"
	"time"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/config"
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/pkg/logger"
	"marketplace-billing-be/internal/repository/memory"
	"marketplace-billing-be/internal/repository/unitofwork"
	"marketplace-billing-be/pkg/events"
	"marketplace-billing-be/pkg/gateway"
)

// IReconcilerService settles gateway notifications against local state. One
// notification, one atomic transaction: payment, subscription, wallet ledger,
// referral bonus and daily stats move together or not at all.
type IReconcilerService interface {
	Process(ctx context.Context, notification *gateway.Notification) error
}

type reconcilerService struct {
	uowFactory     unitofwork.RepositoryFactory
	subscriptions  ISubscriptionService
	wallet         IWalletService
	referrals      IReferralService
	stats          IStatsService
	eventPublisher IEventPublisherService
	settledCache   *memory.SettledCache
	serverKey      string
	billingCfg     config.BillingConfig
	logger         logger.ILogger
}

func NewReconcilerService(
	uowFactory unitofwork.RepositoryFactory,
	subscriptions ISubscriptionService,
	wallet IWalletService,
	referrals IReferralService,
	stats IStatsService,
	eventPublisher IEventPublisherService,
	settledCache *memory.SettledCache,
	serverKey string,
	billingCfg config.BillingConfig,
	log logger.ILogger,
) IReconcilerService {
	return &reconcilerService{
		uowFactory:     uowFactory,
		subscriptions:  subscriptions,
		wallet:         wallet,
		referrals:      referrals,
		stats:          stats,
		eventPublisher: eventPublisher,
		settledCache:   settledCache,
		serverKey:      serverKey,
		billingCfg:     billingCfg,
		logger:         log,
	}
}

func (s *reconcilerService) Process(ctx context.Context, n *gateway.Notification) error {
	if !gateway.VerifySignature(n, s.serverKey) {
		s.logger.Warn("reconciler", "Rejected notification with bad signature", map[string]interface{}{
			"transaction_id": n.TransactionId,
		})
		return &apperror.AuthenticityError{Reason: "signature mismatch"}
	}

	// Fast path for webhook retry bursts. The database CAS below stays the
	// real idempotency barrier.
	if s.settledCache != nil {
		if _, found := s.settledCache.Settled(n.TransactionId); found {
			s.logger.Debug("reconciler", "Duplicate notification short-circuited", map[string]interface{}{
				"transaction_id": n.TransactionId,
			})
			return nil
		}
	}

	target, ok := mapTransactionStatus(n.TransactionStatus)
	if !ok {
		// Pending and unknown statuses carry no state change.
		s.logger.Info("reconciler", "Notification carries no terminal state", map[string]interface{}{
			"transaction_id": n.TransactionId,
			"status":         n.TransactionStatus,
		})
		return nil
	}

	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	payment, err := uow.PaymentRepository().FindByTransactionId(ctx, n.TransactionId)
	if err != nil {
		return err
	}
	if payment == nil {
		return apperror.NewNotFound("payment", n.TransactionId)
	}

	errMessage := ""
	if target == entity.PaymentStateFailed {
		errMessage = "gateway reported " + n.TransactionStatus
	}

	won, err := uow.PaymentRepository().CompletePending(ctx, n.TransactionId, target, n.Raw, errMessage, now)
	if err != nil {
		return err
	}
	if !won {
		// Another delivery settled this transaction first.
		if s.settledCache != nil {
			s.settledCache.MarkSettled(n.TransactionId, string(payment.Status))
		}
		s.logger.Info("reconciler", "Notification lost the settlement race, ignoring", map[string]interface{}{
			"transaction_id": n.TransactionId,
		})
		return nil
	}

	var sub *entity.Subscription
	if target == entity.PaymentStateSuccess {
		sub, err = s.subscriptions.Activate(ctx, uow, payment.SubscriptionId, payment.TransactionId, now)
		if err != nil {
			return err
		}
		if err := s.wallet.Credit(ctx, uow, payment.Amount, now); err != nil {
			return err
		}
		if _, err := s.referrals.GrantBonus(ctx, uow, payment.OwnerId, s.billingCfg.ReferralBonusDays, now); err != nil {
			return err
		}
	} else {
		sub, err = s.subscriptions.HandlePaymentFailure(ctx, uow, payment.SubscriptionId, now)
		if err != nil {
			return err
		}
	}

	if err := s.stats.Touch(ctx, uow, now); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if s.settledCache != nil {
		s.settledCache.MarkSettled(n.TransactionId, string(target))
	}

	s.publishOutcome(target, payment, sub, n.TransactionStatus, now)

	s.logger.Info("reconciler", "Notification settled", map[string]interface{}{
		"transaction_id": n.TransactionId,
		"result":         string(target),
	})
	return nil
}

func (s *reconcilerService) publishOutcome(target entity.PaymentState, payment *entity.Payment, sub *entity.Subscription, gatewayStatus string, now time.Time) {
	if s.eventPublisher == nil {
		return
	}

	var evts []events.Event
	if target == entity.PaymentStateSuccess {
		evts = append(evts, events.NewPaymentCompleted(payment.TransactionId, payment.OwnerId, payment.Amount))
		// A late settlement for a cancelled subscription does not activate
		// anything, so it announces nothing beyond the payment.
		if sub != nil && sub.Status == entity.SubscriptionStatusActive {
			evts = append(evts, events.NewSubscriptionActivated(sub.Id, sub.OwnerId, string(sub.Plan), sub.EndDate))
		}
	} else {
		evts = append(evts, events.NewPaymentFailed(payment.TransactionId, payment.OwnerId, gatewayStatus))
		if sub != nil && sub.Status == entity.SubscriptionStatusCancelled &&
			sub.CancelledAt != nil && sub.CancelledAt.Equal(now) {
			evts = append(evts, events.NewSubscriptionCancelled(sub.Id, sub.OwnerId, "renewal attempts exhausted"))
		}
	}

	for _, evt := range evts {
		if err := s.eventPublisher.Publish(evt); err != nil {
			s.logger.Warn("reconciler", "Failed to publish event", map[string]interface{}{
				"type":  evt.EventType(),
				"error": err.Error(),
			})
		}
	}
}

// mapTransactionStatus folds gateway statuses into terminal payment states.
// The bool is false for statuses that require no action.
func mapTransactionStatus(status string) (entity.PaymentState, bool) {
	switch status {
	case "capture", "settlement", "ACCEPTED":
		return entity.PaymentStateSuccess, true
	case "deny", "cancel", "expire", "failure", "REFUSED":
		return entity.PaymentStateFailed, true
	default:
		return entity.PaymentStatePending, false
	}
}
