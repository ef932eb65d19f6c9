package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPlan string
type SubscriptionStatus string
type PaymentState string

const (
	PlanMonthly   SubscriptionPlan = "monthly"
	PlanQuarterly SubscriptionPlan = "quarterly"
	PlanBiannual  SubscriptionPlan = "biannual"
	PlanAnnual    SubscriptionPlan = "annual"

	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	PaymentStatePending PaymentState = "pending"
	PaymentStateSuccess PaymentState = "success"
	PaymentStateFailed  PaymentState = "failed"
)

// PlanInfo is one entry of the fixed plan catalog.
type PlanInfo struct {
	Plan          SubscriptionPlan
	Name          string
	DurationDays  int
	Price         int64
	OriginalPrice int64
	IsPopular     bool
}

// Subscription grants an owner paid, time-boxed visibility.
// At most one non-cancelled subscription exists per owner.
type Subscription struct {
	Id                 uuid.UUID
	OwnerId            uuid.UUID
	Plan               SubscriptionPlan
	Status             SubscriptionStatus
	Price              int64
	OriginalPrice      int64
	Discount           int64
	StartDate          time.Time
	EndDate            time.Time
	TrialStartDate     *time.Time
	TrialEndDate       *time.Time
	PaymentMethod      string
	PaymentReference   string
	PaymentStatus      PaymentState
	AutoRenewal        bool
	RenewalAttempts    int
	MaxRenewalAttempts int
	ReferralCode       string
	Notes              string
	ActivatedAt        *time.Time
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsLive reports whether the subscription still occupies the owner's
// single non-cancelled slot.
func (s *Subscription) IsLive() bool {
	switch s.Status {
	case SubscriptionStatusTrial, SubscriptionStatusPending, SubscriptionStatusActive:
		return true
	}
	return false
}

func (s *Subscription) IsExpired(now time.Time) bool {
	return now.After(s.EndDate)
}

func (s *Subscription) DaysRemaining(now time.Time) int {
	if now.After(s.EndDate) {
		return 0
	}
	return int(s.EndDate.Sub(now).Hours() / 24)
}
