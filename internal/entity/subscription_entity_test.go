package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionIsLive(t *testing.T) {
	assert.True(t, (&Subscription{Status: SubscriptionStatusTrial}).IsLive())
	assert.True(t, (&Subscription{Status: SubscriptionStatusPending}).IsLive())
	assert.True(t, (&Subscription{Status: SubscriptionStatusActive}).IsLive())
	assert.False(t, (&Subscription{Status: SubscriptionStatusExpired}).IsLive())
	assert.False(t, (&Subscription{Status: SubscriptionStatusCancelled}).IsLive())
}

func TestSubscriptionDaysRemaining(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	sub := &Subscription{EndDate: now.AddDate(0, 0, 30)}
	assert.Equal(t, 30, sub.DaysRemaining(now))

	sub = &Subscription{EndDate: now.Add(12 * time.Hour)}
	assert.Equal(t, 0, sub.DaysRemaining(now))

	// Already past the end: never negative.
	sub = &Subscription{EndDate: now.AddDate(0, 0, -3)}
	assert.Equal(t, 0, sub.DaysRemaining(now))
	assert.True(t, sub.IsExpired(now))
}
