package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReferralEdge records that an owner signed up with someone's referral code.
// One edge per referred owner; BonusGranted flips exactly once, when the
// referred owner's first payment settles successfully.
type ReferralEdge struct {
	Id              uuid.UUID
	ReferrerCode    string
	ReferredOwnerId uuid.UUID
	BonusGranted    bool
	BonusGrantedAt  *time.Time
	CreatedAt       time.Time
}

// Owner is the billing core's read-only view of the identity store.
type Owner struct {
	Id           uuid.UUID
	FullName     string
	Phone        string
	Email        string
	ReferralCode string
	ReferredBy   string
	IsActive     bool
}
