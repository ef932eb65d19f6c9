package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/dto"
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/repository/memory"
	"marketplace-billing-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReconcilerStack(env *testEnv) (IReconcilerService, ISubscriptionService, IWalletService) {
	subs := env.newSubscriptionService()
	wallet := env.newWalletService()
	referrals := env.newReferralService()
	stats := env.newStatsService()
	rec := NewReconcilerService(
		env.factory,
		subs,
		wallet,
		referrals,
		stats,
		env.publisher,
		memory.NewSettledCache(),
		env.gw.serverKey,
		env.cfg,
		nopLogger{},
	)
	return rec, subs, wallet
}

func TestReconcileRejectsBadSignature(t *testing.T) {
	env := newTestEnv()
	rec, _, _ := newReconcilerStack(env)

	n := env.gw.signedNotification("SUB-xyz", 2100, "settlement", "200")
	n.SignatureKey = "forged"

	err := rec.Process(context.Background(), n)
	var aerr *apperror.AuthenticityError
	require.True(t, errors.As(err, &aerr))
}

func TestReconcileUnknownTransaction(t *testing.T) {
	env := newTestEnv()
	rec, _, _ := newReconcilerStack(env)

	n := env.gw.signedNotification("SUB-missing", 2100, "settlement", "200")
	err := rec.Process(context.Background(), n)
	var nerr *apperror.NotFoundError
	require.True(t, errors.As(err, &nerr))
}

func TestReconcileSettlementActivatesAndCredits(t *testing.T) {
	env := newTestEnv()
	rec, subs, wallet := newReconcilerStack(env)
	ctx := context.Background()

	owner := env.addOwner("OWNER1")
	checkout, err := subs.Checkout(ctx, owner.Id, &dto.CheckoutRequest{Plan: "monthly"})
	require.NoError(t, err)
	assert.Equal(t, int64(2100), checkout.Amount)

	n := env.gw.signedNotification(checkout.TransactionId, checkout.Amount, "settlement", "200")
	require.NoError(t, rec.Process(ctx, n))

	payment, err := env.uow.payments.FindByTransactionId(ctx, checkout.TransactionId)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStateSuccess, payment.Status)
	require.NotNil(t, payment.CompletedAt)

	sub, err := env.uow.subs.FindLiveByOwner(ctx, owner.Id, time.Now())
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), sub.EndDate, time.Minute)

	w, err := wallet.GetWallet(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2100), w.TotalBalance)
	assert.True(t, w.Balanced())

	// The day's aggregate row was rebuilt inside the same settlement.
	start := time.Date(time.Now().UTC().Year(), time.Now().UTC().Month(), time.Now().UTC().Day(), 0, 0, 0, 0, time.UTC)
	row, err := env.uow.stats.FindByDate(ctx, start)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(2100), row.Revenue)
	assert.Equal(t, 1, row.MonthlyCount)

	types := env.publisher.typesSeen()
	assert.Contains(t, types, events.TypePaymentCompleted)
	assert.Contains(t, types, events.TypeSubscriptionActivated)
}

func TestReconcileDuplicateDeliveryCreditsOnce(t *testing.T) {
	env := newTestEnv()
	rec, subs, wallet := newReconcilerStack(env)
	ctx := context.Background()

	owner := env.addOwner("OWNER1")
	checkout, err := subs.Checkout(ctx, owner.Id, &dto.CheckoutRequest{Plan: "quarterly"})
	require.NoError(t, err)

	n := env.gw.signedNotification(checkout.TransactionId, checkout.Amount, "settlement", "200")
	require.NoError(t, rec.Process(ctx, n))
	require.NoError(t, rec.Process(ctx, n))

	// A second reconciler instance has a cold cache, so this delivery goes
	// all the way to the database CAS and still changes nothing.
	otherRec, _, _ := newReconcilerStack(env)
	require.NoError(t, otherRec.Process(ctx, n))

	w, err := wallet.GetWallet(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5100), w.TotalBalance)
}

func TestReconcilePendingStatusIsNoOp(t *testing.T) {
	env := newTestEnv()
	rec, subs, wallet := newReconcilerStack(env)
	ctx := context.Background()

	owner := env.addOwner("OWNER1")
	checkout, err := subs.Checkout(ctx, owner.Id, &dto.CheckoutRequest{Plan: "monthly"})
	require.NoError(t, err)

	n := env.gw.signedNotification(checkout.TransactionId, checkout.Amount, "pending", "201")
	require.NoError(t, rec.Process(ctx, n))

	payment, err := env.uow.payments.FindByTransactionId(ctx, checkout.TransactionId)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatePending, payment.Status)

	w, err := wallet.GetWallet(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.TotalBalance)
}

func TestReconcileFailureIncrementsRenewalAttempts(t *testing.T) {
	env := newTestEnv()
	rec, subs, wallet := newReconcilerStack(env)
	ctx := context.Background()

	owner := env.addOwner("OWNER1")
	checkout, err := subs.Checkout(ctx, owner.Id, &dto.CheckoutRequest{Plan: "monthly"})
	require.NoError(t, err)

	n := env.gw.signedNotification(checkout.TransactionId, checkout.Amount, "deny", "202")
	require.NoError(t, rec.Process(ctx, n))

	payment, err := env.uow.payments.FindByTransactionId(ctx, checkout.TransactionId)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStateFailed, payment.Status)

	sub := env.uow.subs.rows[checkout.SubscriptionId]
	assert.Equal(t, 1, sub.RenewalAttempts)
	assert.Equal(t, entity.SubscriptionStatusPending, sub.Status)

	w, err := wallet.GetWallet(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.TotalBalance)

	assert.Contains(t, env.publisher.typesSeen(), events.TypePaymentFailed)
}

func TestReconcileFailureCancelsAfterMaxAttempts(t *testing.T) {
	env := newTestEnv()
	rec, subs, _ := newReconcilerStack(env)
	ctx := context.Background()

	owner := env.addOwner("OWNER1")
	checkout, err := subs.Checkout(ctx, owner.Id, &dto.CheckoutRequest{Plan: "monthly"})
	require.NoError(t, err)

	// Two renewal attempts already burned.
	env.uow.subs.rows[checkout.SubscriptionId].RenewalAttempts = 2

	n := env.gw.signedNotification(checkout.TransactionId, checkout.Amount, "expire", "202")
	require.NoError(t, rec.Process(ctx, n))

	sub := env.uow.subs.rows[checkout.SubscriptionId]
	assert.Equal(t, 3, sub.RenewalAttempts)
	assert.Equal(t, entity.SubscriptionStatusCancelled, sub.Status)
	assert.False(t, sub.AutoRenewal)
	require.NotNil(t, sub.CancelledAt)

	types := env.publisher.typesSeen()
	assert.Contains(t, types, events.TypePaymentFailed)
	assert.Contains(t, types, events.TypeSubscriptionCancelled)
}

func TestReconcileLateSettlementKeepsSubscriptionCancelled(t *testing.T) {
	env := newTestEnv()
	rec, subs, wallet := newReconcilerStack(env)
	ctx := context.Background()

	owner := env.addOwner("OWNER1")
	checkout, err := subs.Checkout(ctx, owner.Id, &dto.CheckoutRequest{Plan: "monthly"})
	require.NoError(t, err)
	require.NoError(t, subs.Cancel(ctx, owner.Id, &dto.CancelRequest{Reason: "before paying"}))

	n := env.gw.signedNotification(checkout.TransactionId, checkout.Amount, "settlement", "200")
	require.NoError(t, rec.Process(ctx, n))

	// The subscription stays cancelled; only the payment settles.
	sub := env.uow.subs.rows[checkout.SubscriptionId]
	assert.Equal(t, entity.SubscriptionStatusCancelled, sub.Status)

	payment, err := env.uow.payments.FindByTransactionId(ctx, checkout.TransactionId)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStateSuccess, payment.Status)

	// The money is kept for manual follow-up, not refunded here.
	w, err := wallet.GetWallet(ctx)
	require.NoError(t, err)
	assert.Equal(t, checkout.Amount, w.TotalBalance)

	assert.NotContains(t, env.publisher.typesSeen(), events.TypeSubscriptionActivated)
}

func TestConcurrentDuplicateDeliveriesSettleOnce(t *testing.T) {
	env := newTestEnv()
	_, subs, wallet := newReconcilerStack(env)
	ctx := context.Background()

	owner := env.addOwner("OWNER1")
	checkout, err := subs.Checkout(ctx, owner.Id, &dto.CheckoutRequest{Plan: "monthly"})
	require.NoError(t, err)

	n := env.gw.signedNotification(checkout.TransactionId, checkout.Amount, "settlement", "200")

	// Every goroutine gets its own reconciler with a cold cache, so all of
	// them race straight to the database compare-and-set.
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, _, _ := newReconcilerStack(env)
			assert.NoError(t, r.Process(ctx, n))
		}()
	}
	wg.Wait()

	w, err := wallet.GetWallet(ctx)
	require.NoError(t, err)
	assert.Equal(t, checkout.Amount, w.TotalBalance)
	assert.True(t, w.Balanced())

	sub := env.uow.subs.rows[checkout.SubscriptionId]
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
}

func TestReconcileGrantsBonusOnReferredAnnualPurchase(t *testing.T) {
	env := newTestEnv()
	rec, subs, _ := newReconcilerStack(env)
	ctx := context.Background()
	now := time.Now()

	referrer := env.addOwner("REF123")
	referred := env.addOwner("OTHER99")

	referrerEnd := now.AddDate(0, 0, 20)
	require.NoError(t, env.uow.subs.Create(ctx, &entity.Subscription{
		Id:      uuid.New(),
		OwnerId: referrer.Id,
		Plan:    entity.PlanMonthly,
		Status:  entity.SubscriptionStatusActive,
		EndDate: referrerEnd,
	}))

	// No discount on the annual plan, but the referral still counts.
	checkout, err := subs.Checkout(ctx, referred.Id, &dto.CheckoutRequest{Plan: "annual", ReferralCode: "REF123"})
	require.NoError(t, err)
	assert.Equal(t, int64(16100), checkout.Amount)

	n := env.gw.signedNotification(checkout.TransactionId, checkout.Amount, "settlement", "200")
	require.NoError(t, rec.Process(ctx, n))

	refSub, err := env.uow.subs.FindLiveByOwner(ctx, referrer.Id, now)
	require.NoError(t, err)
	assert.WithinDuration(t, referrerEnd.AddDate(0, 0, 30), refSub.EndDate, time.Second)
	assert.Contains(t, env.publisher.typesSeen(), events.TypeReferralBonusGranted)
}

func TestReconcileGrantsReferralBonusOnFirstSettlement(t *testing.T) {
	env := newTestEnv()
	rec, subs, _ := newReconcilerStack(env)
	ctx := context.Background()
	now := time.Now()

	referrer := env.addOwner("REF123")
	referred := env.addOwner("OTHER99")

	referrerEnd := now.AddDate(0, 0, 15)
	require.NoError(t, env.uow.subs.Create(ctx, &entity.Subscription{
		Id:      uuid.New(),
		OwnerId: referrer.Id,
		Plan:    entity.PlanMonthly,
		Status:  entity.SubscriptionStatusActive,
		EndDate: referrerEnd,
	}))

	checkout, err := subs.Checkout(ctx, referred.Id, &dto.CheckoutRequest{Plan: "monthly", ReferralCode: "REF123"})
	require.NoError(t, err)
	assert.Equal(t, 2100-ReferralDiscount, checkout.Amount)

	n := env.gw.signedNotification(checkout.TransactionId, checkout.Amount, "settlement", "200")
	require.NoError(t, rec.Process(ctx, n))

	refSub, err := env.uow.subs.FindLiveByOwner(ctx, referrer.Id, now)
	require.NoError(t, err)
	assert.WithinDuration(t, referrerEnd.AddDate(0, 0, 30), refSub.EndDate, time.Second)
	assert.Contains(t, env.publisher.typesSeen(), events.TypeReferralBonusGranted)

	// A later renewal by the same referred owner settles without a second bonus.
	renewal, err := subs.Renew(ctx, referred.Id, &dto.RenewRequest{})
	require.NoError(t, err)
	n2 := env.gw.signedNotification(renewal.TransactionId, renewal.Amount, "settlement", "200")
	require.NoError(t, rec.Process(ctx, n2))

	refSub, err = env.uow.subs.FindLiveByOwner(ctx, referrer.Id, now)
	require.NoError(t, err)
	assert.WithinDuration(t, referrerEnd.AddDate(0, 0, 30), refSub.EndDate, time.Second)
}
