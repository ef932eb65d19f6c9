package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountForMonthlyWithValidCode(t *testing.T) {
	env := newTestEnv()
	svc := env.newReferralService()
	ctx := context.Background()

	env.addOwner("REF123")
	referred := env.addOwner("OTHER99")

	discount, err := svc.DiscountFor(ctx, referred.Id, entity.PlanMonthly, "REF123")
	require.NoError(t, err)
	assert.Equal(t, ReferralDiscount, discount)
}

func TestDiscountOnlyAppliesToMonthlyPlan(t *testing.T) {
	env := newTestEnv()
	svc := env.newReferralService()
	ctx := context.Background()

	env.addOwner("REF123")
	referred := env.addOwner("OTHER99")

	for _, plan := range []entity.SubscriptionPlan{entity.PlanQuarterly, entity.PlanBiannual, entity.PlanAnnual} {
		discount, err := svc.DiscountFor(ctx, referred.Id, plan, "REF123")
		require.NoError(t, err)
		assert.Equal(t, int64(0), discount, "plan %s", plan)
	}

	// No code, no discount.
	discount, err := svc.DiscountFor(ctx, referred.Id, entity.PlanMonthly, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), discount)
}

func TestDiscountRejectsSelfReferral(t *testing.T) {
	env := newTestEnv()
	svc := env.newReferralService()

	owner := env.addOwner("MYCODE")

	_, err := svc.DiscountFor(context.Background(), owner.Id, entity.PlanMonthly, "MYCODE")
	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestDiscountIsSingleUse(t *testing.T) {
	env := newTestEnv()
	svc := env.newReferralService()
	ctx := context.Background()

	env.addOwner("REF123")
	referred := env.addOwner("OTHER99")

	// An edge already on file means the discount was spent.
	require.NoError(t, env.uow.referrals.CreateEdge(ctx, &entity.ReferralEdge{
		Id:              uuid.New(),
		ReferrerCode:    "REF123",
		ReferredOwnerId: referred.Id,
		CreatedAt:       time.Now(),
	}))

	discount, err := svc.DiscountFor(ctx, referred.Id, entity.PlanMonthly, "REF123")
	require.NoError(t, err)
	assert.Equal(t, int64(0), discount)
}

func TestGrantBonusExtendsReferrerSubscription(t *testing.T) {
	env := newTestEnv()
	svc := env.newReferralService()
	ctx := context.Background()
	now := time.Now()

	referrer := env.addOwner("REF123")
	referred := env.addOwner("OTHER99")

	endDate := now.AddDate(0, 0, 10)
	require.NoError(t, env.uow.subs.Create(ctx, &entity.Subscription{
		Id:      uuid.New(),
		OwnerId: referrer.Id,
		Plan:    entity.PlanMonthly,
		Status:  entity.SubscriptionStatusActive,
		EndDate: endDate,
	}))
	require.NoError(t, env.uow.referrals.CreateEdge(ctx, &entity.ReferralEdge{
		Id:              uuid.New(),
		ReferrerCode:    "REF123",
		ReferredOwnerId: referred.Id,
		CreatedAt:       now,
	}))

	granted, err := svc.GrantBonus(ctx, env.uow, referred.Id, 30, now)
	require.NoError(t, err)
	assert.True(t, granted)

	sub, err := env.uow.subs.FindLiveByOwner(ctx, referrer.Id, now)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.WithinDuration(t, endDate.AddDate(0, 0, 30), sub.EndDate, time.Second)

	assert.Contains(t, env.publisher.typesSeen(), events.TypeReferralBonusGranted)

	// The edge flips once; a second settlement grants nothing.
	granted, err = svc.GrantBonus(ctx, env.uow, referred.Id, 30, now)
	require.NoError(t, err)
	assert.False(t, granted)

	sub, err = env.uow.subs.FindLiveByOwner(ctx, referrer.Id, now)
	require.NoError(t, err)
	assert.WithinDuration(t, endDate.AddDate(0, 0, 30), sub.EndDate, time.Second)
}

func TestConcurrentGrantBonusAwardsOnce(t *testing.T) {
	env := newTestEnv()
	svc := env.newReferralService()
	ctx := context.Background()
	now := time.Now()

	referrer := env.addOwner("REF123")
	referred := env.addOwner("OTHER99")

	endDate := now.AddDate(0, 0, 10)
	require.NoError(t, env.uow.subs.Create(ctx, &entity.Subscription{
		Id:      uuid.New(),
		OwnerId: referrer.Id,
		Plan:    entity.PlanMonthly,
		Status:  entity.SubscriptionStatusActive,
		EndDate: endDate,
	}))
	require.NoError(t, env.uow.referrals.CreateEdge(ctx, &entity.ReferralEdge{
		Id:              uuid.New(),
		ReferrerCode:    "REF123",
		ReferredOwnerId: referred.Id,
		CreatedAt:       now,
	}))

	// Simultaneous settlements for the same referred owner race on the
	// bonus_granted compare-and-set; exactly one may win.
	var granted int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := svc.GrantBonus(ctx, env.factory.NewUnitOfWork(ctx), referred.Id, 30, now)
			assert.NoError(t, err)
			if won {
				atomic.AddInt32(&granted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), granted)

	sub, err := env.uow.subs.FindLiveByOwner(ctx, referrer.Id, now)
	require.NoError(t, err)
	assert.WithinDuration(t, endDate.AddDate(0, 0, 30), sub.EndDate, time.Second)
}

func TestGrantBonusWithoutEdgeIsNoOp(t *testing.T) {
	env := newTestEnv()
	svc := env.newReferralService()

	granted, err := svc.GrantBonus(context.Background(), env.uow, uuid.New(), 30, time.Now())
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestGrantBonusConsumedWhenReferrerHasNoLiveSubscription(t *testing.T) {
	env := newTestEnv()
	svc := env.newReferralService()
	ctx := context.Background()
	now := time.Now()

	env.addOwner("REF123")
	referred := env.addOwner("OTHER99")

	require.NoError(t, env.uow.referrals.CreateEdge(ctx, &entity.ReferralEdge{
		Id:              uuid.New(),
		ReferrerCode:    "REF123",
		ReferredOwnerId: referred.Id,
		CreatedAt:       now,
	}))

	granted, err := svc.GrantBonus(ctx, env.uow, referred.Id, 30, now)
	require.NoError(t, err)
	assert.True(t, granted)

	// Forfeited, not deferred: the edge stays spent.
	edge, err := env.uow.referrals.FindEdgeByReferredOwner(ctx, referred.Id)
	require.NoError(t, err)
	assert.True(t, edge.BonusGranted)
}

func TestRecordReferralRejectsDuplicateEdge(t *testing.T) {
	env := newTestEnv()
	svc := env.newReferralService()
	ctx := context.Background()

	env.addOwner("REF123")
	referred := env.addOwner("OTHER99")

	_, err := svc.RecordReferral(ctx, env.uow, referred.Id, "REF123")
	require.NoError(t, err)

	_, err = svc.RecordReferral(ctx, env.uow, referred.Id, "REF123")
	var cerr *apperror.ConflictError
	require.True(t, errors.As(err, &cerr))
}
