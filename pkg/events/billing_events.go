package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePaymentCompleted      = "PAYMENT_COMPLETED"
	TypePaymentFailed         = "PAYMENT_FAILED"
	TypeSubscriptionActivated = "SUBSCRIPTION_ACTIVATED"
	TypeSubscriptionExpired   = "SUBSCRIPTION_EXPIRED"
	TypeSubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
	TypeTrialStarted          = "TRIAL_STARTED"
	TypeReferralBonusGranted  = "REFERRAL_BONUS_GRANTED"
	TypeWithdrawalCompleted   = "WITHDRAWAL_COMPLETED"
)

func NewPaymentCompleted(transactionId string, ownerId uuid.UUID, amount int64) Event {
	return BaseEvent{
		Type: TypePaymentCompleted,
		Data: map[string]interface{}{
			"transaction_id": transactionId,
			"owner_id":       ownerId.String(),
			"amount":         amount,
		},
		OccurredAt: time.Now(),
	}
}

func NewPaymentFailed(transactionId string, ownerId uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypePaymentFailed,
		Data: map[string]interface{}{
			"transaction_id": transactionId,
			"owner_id":       ownerId.String(),
			"reason":         reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewSubscriptionActivated(subscriptionId, ownerId uuid.UUID, plan string, endDate time.Time) Event {
	return BaseEvent{
		Type: TypeSubscriptionActivated,
		Data: map[string]interface{}{
			"subscription_id": subscriptionId.String(),
			"owner_id":        ownerId.String(),
			"plan":            plan,
			"end_date":        endDate.Format(time.RFC3339),
		},
		OccurredAt: time.Now(),
	}
}

func NewSubscriptionExpired(subscriptionId, ownerId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeSubscriptionExpired,
		Data: map[string]interface{}{
			"subscription_id": subscriptionId.String(),
			"owner_id":        ownerId.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewSubscriptionCancelled(subscriptionId, ownerId uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypeSubscriptionCancelled,
		Data: map[string]interface{}{
			"subscription_id": subscriptionId.String(),
			"owner_id":        ownerId.String(),
			"reason":          reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewTrialStarted(subscriptionId, ownerId uuid.UUID, endDate time.Time) Event {
	return BaseEvent{
		Type: TypeTrialStarted,
		Data: map[string]interface{}{
			"subscription_id": subscriptionId.String(),
			"owner_id":        ownerId.String(),
			"end_date":        endDate.Format(time.RFC3339),
		},
		OccurredAt: time.Now(),
	}
}

func NewReferralBonusGranted(referrerId uuid.UUID, referredOwnerId uuid.UUID, bonusDays int) Event {
	return BaseEvent{
		Type: TypeReferralBonusGranted,
		Data: map[string]interface{}{
			"referrer_id":       referrerId.String(),
			"referred_owner_id": referredOwnerId.String(),
			"bonus_days":        bonusDays,
		},
		OccurredAt: time.Now(),
	}
}

func NewWithdrawalCompleted(reference string, amount int64) Event {
	return BaseEvent{
		Type: TypeWithdrawalCompleted,
		Data: map[string]interface{}{
			"reference": reference,
			"amount":    amount,
		},
		OccurredAt: time.Now(),
	}
}
