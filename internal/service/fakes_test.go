package service

import (
	"context"
	"sync"
	"time"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/config"
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/repository/contract"
	"marketplace-billing-be/internal/repository/specification"
	"marketplace-billing-be/internal/repository/unitofwork"
	"marketplace-billing-be/pkg/events"
	"marketplace-billing-be/pkg/fraud"
	"marketplace-billing-be/pkg/gateway"

	"github.com/google/uuid"
)

// In-memory repositories backing the service tests. The two compare-and-set
// operations the real implementations run as single UPDATE statements are
// emulated under a mutex so idempotency tests exercise the same contract.

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fakeGateway struct {
	mu        sync.Mutex
	checkouts []string
	serverKey string

	// failures makes the next N CreateCheckout calls return failErr, or a
	// generic GatewayError when failErr is nil.
	failures int
	failErr  error

	// onCheckout runs during a successful CreateCheckout, emulating work
	// that races with the caller (e.g. an instant confirmation webhook).
	onCheckout func(payment *entity.Payment)
}

func (g *fakeGateway) Name() entity.PaymentProvider { return entity.ProviderSimulated }

func (g *fakeGateway) CreateCheckout(ctx context.Context, payment *entity.Payment, customer gateway.Customer, description string) (*gateway.CheckoutSession, error) {
	g.mu.Lock()
	g.checkouts = append(g.checkouts, payment.TransactionId)
	fail := g.failures > 0
	if fail {
		g.failures--
	}
	hook := g.onCheckout
	g.mu.Unlock()

	if fail {
		if g.failErr != nil {
			return nil, g.failErr
		}
		return nil, &apperror.GatewayError{Provider: "simulated", Message: "transient failure"}
	}
	if hook != nil {
		hook(payment)
	}
	expires := time.Now().Add(30 * time.Minute)
	return &gateway.CheckoutSession{
		TransactionId: payment.TransactionId,
		Token:         "tok-" + payment.TransactionId,
		RedirectURL:   "https://pay.example/" + payment.TransactionId,
		ExpiresAt:     &expires,
	}, nil
}

func (g *fakeGateway) CheckStatus(ctx context.Context, transactionId string) (entity.PaymentState, error) {
	return entity.PaymentStatePending, nil
}

// signedNotification builds a notification the reconciler will accept.
func (g *fakeGateway) signedNotification(transactionId string, amount int64, transactionStatus, statusCode string) *gateway.Notification {
	gross := gateway.FormatGrossAmount(amount)
	return &gateway.Notification{
		TransactionId:     transactionId,
		TransactionStatus: transactionStatus,
		StatusCode:        statusCode,
		GrossAmount:       gross,
		SignatureKey:      gateway.Sign(transactionId, statusCode, gross, g.serverKey),
	}
}

type fakeFraud struct {
	verdict fraud.Verdict
	err     error
}

func (f *fakeFraud) CheckSignup(ctx context.Context, ownerId uuid.UUID, phone string) (fraud.Verdict, error) {
	if f.verdict == "" {
		return fraud.VerdictAllow, f.err
	}
	return f.verdict, f.err
}

// --- repositories ---

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.Subscription
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	r.rows[sub.Id] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, sub *entity.Subscription) error {
	return r.Create(ctx, sub)
}

func (r *fakeSubscriptionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			if row, found := r.rows[byId.ID]; found {
				cp := *row
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Subscription
	for _, row := range r.rows {
		match := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByOwnerID:
				if row.OwnerId != s.OwnerID {
					match = false
				}
			case specification.NonCancelled:
				if row.Status == entity.SubscriptionStatusCancelled {
					match = false
				}
			}
		}
		if match {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) FindLiveByOwner(ctx context.Context, ownerId uuid.UUID, now time.Time) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.OwnerId != ownerId {
			continue
		}
		// Pending counts as live regardless of dates; trial and active only
		// while the window is still open.
		switch row.Status {
		case entity.SubscriptionStatusPending:
			cp := *row
			return &cp, nil
		case entity.SubscriptionStatusTrial, entity.SubscriptionStatusActive:
			if row.EndDate.After(now) {
				cp := *row
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Subscription
	for _, row := range r.rows {
		if row.Status != entity.SubscriptionStatusTrial && row.Status != entity.SubscriptionStatusActive {
			continue
		}
		if !row.EndDate.After(now) {
			cp := *row
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) HasTrialHistory(ctx context.Context, ownerId uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.OwnerId == ownerId && row.TrialStartDate != nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubscriptionRepo) CountByStatus(ctx context.Context, status entity.SubscriptionStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.Status == status {
			n++
		}
	}
	return n, nil
}

type fakePaymentRepo struct {
	mu   sync.Mutex
	rows map[string]*entity.Payment
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *payment
	r.rows[payment.TransactionId] = &cp
	return nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, payment *entity.Payment) error {
	return r.Create(ctx, payment)
}

func (r *fakePaymentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byTx, ok := spec.(specification.ByTransactionID); ok {
			if row, found := r.rows[byTx.TransactionID]; found {
				cp := *row
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Payment
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePaymentRepo) FindByTransactionId(ctx context.Context, transactionId string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, found := r.rows[transactionId]; found {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (r *fakePaymentRepo) CompletePending(ctx context.Context, transactionId string, status entity.PaymentState, rawResponse []byte, errorMessage string, completedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, found := r.rows[transactionId]
	if !found || row.Status != entity.PaymentStatePending {
		return false, nil
	}
	row.Status = status
	row.RawResponse = rawResponse
	row.ErrorMessage = errorMessage
	row.CompletedAt = &completedAt
	row.UpdatedAt = completedAt
	return true, nil
}

func (r *fakePaymentRepo) AttachProviderSession(ctx context.Context, transactionId, token, redirectURL string, expiresAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, found := r.rows[transactionId]
	if !found || row.Status != entity.PaymentStatePending {
		return false, nil
	}
	row.ProviderToken = token
	row.RedirectURL = redirectURL
	row.ExpiresAt = expiresAt
	row.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakePaymentRepo) SumCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, row := range r.rows {
		if row.Status != entity.PaymentStateSuccess || row.CompletedAt == nil {
			continue
		}
		if !row.CompletedAt.Before(from) && row.CompletedAt.Before(to) {
			sum += row.Amount
		}
	}
	return sum, nil
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	account *entity.WalletAccount
}

func (r *fakeWalletRepo) FindForUpdate(ctx context.Context) (*entity.WalletAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.account == nil {
		r.account = &entity.WalletAccount{Id: uuid.New(), CreatedAt: time.Now()}
	}
	cp := *r.account
	return &cp, nil
}

func (r *fakeWalletRepo) Find(ctx context.Context) (*entity.WalletAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.account == nil {
		return nil, nil
	}
	cp := *r.account
	return &cp, nil
}

func (r *fakeWalletRepo) Save(ctx context.Context, account *entity.WalletAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *account
	r.account = &cp
	return nil
}

type fakeWithdrawalRepo struct {
	mu   sync.Mutex
	rows map[string]*entity.WithdrawalRequest
}

func (r *fakeWithdrawalRepo) Create(ctx context.Context, request *entity.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *request
	r.rows[request.Reference] = &cp
	return nil
}

func (r *fakeWithdrawalRepo) Update(ctx context.Context, request *entity.WithdrawalRequest) error {
	return r.Create(ctx, request)
}

func (r *fakeWithdrawalRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byRef, ok := spec.(specification.ByReference); ok {
			if row, found := r.rows[byRef.Reference]; found {
				cp := *row
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeWithdrawalRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := ""
	for _, spec := range specs {
		if byStatus, ok := spec.(specification.ByStatus); ok {
			status = byStatus.Status
		}
	}
	var out []*entity.WithdrawalRequest
	for _, row := range r.rows {
		if status != "" && string(row.Status) != status {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeWithdrawalRepo) FindByReference(ctx context.Context, reference string) (*entity.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, found := r.rows[reference]; found {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

type fakeReferralRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.ReferralEdge // keyed by ReferredOwnerId
}

func (r *fakeReferralRepo) CreateEdge(ctx context.Context, edge *entity.ReferralEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *edge
	r.rows[edge.ReferredOwnerId] = &cp
	return nil
}

func (r *fakeReferralRepo) UpdateEdge(ctx context.Context, edge *entity.ReferralEdge) error {
	return r.CreateEdge(ctx, edge)
}

func (r *fakeReferralRepo) FindEdgeByReferredOwner(ctx context.Context, ownerId uuid.UUID) (*entity.ReferralEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, found := r.rows[ownerId]; found {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeReferralRepo) FindEdges(ctx context.Context, specs ...specification.Specification) ([]*entity.ReferralEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ReferralEdge
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeReferralRepo) MarkBonusGranted(ctx context.Context, edgeId uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Id != edgeId {
			continue
		}
		if row.BonusGranted {
			return false, nil
		}
		now := time.Now()
		row.BonusGranted = true
		row.BonusGrantedAt = &now
		return true, nil
	}
	return false, nil
}

type fakeOwnerRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.Owner
}

func (r *fakeOwnerRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, found := r.rows[id]; found {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeOwnerRepo) FindByReferralCode(ctx context.Context, code string) (*entity.Owner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ReferralCode == code {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeStatsRepo struct {
	mu   sync.Mutex
	rows map[string]*entity.DailyStats // keyed by date
	subs *fakeSubscriptionRepo
}

func (r *fakeStatsRepo) Upsert(ctx context.Context, stats *entity.DailyStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *stats
	r.rows[stats.Date.Format("2006-01-02")] = &cp
	return nil
}

func (r *fakeStatsRepo) FindByDate(ctx context.Context, date time.Time) (*entity.DailyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, found := r.rows[date.Format("2006-01-02")]; found {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeStatsRepo) FindRange(ctx context.Context, from, to time.Time) ([]*entity.DailyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DailyStats
	for _, row := range r.rows {
		if !row.Date.Before(from) && row.Date.Before(to) {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStatsRepo) CountSubscriptionsCreatedBetween(ctx context.Context, from, to time.Time) (map[string]int, error) {
	r.subs.mu.Lock()
	defer r.subs.mu.Unlock()
	counts := map[string]int{}
	for _, row := range r.subs.rows {
		if !row.CreatedAt.Before(from) && row.CreatedAt.Before(to) {
			counts[string(row.Plan)]++
		}
	}
	return counts, nil
}

// --- unit of work ---

type fakeUow struct {
	subs        *fakeSubscriptionRepo
	payments    *fakePaymentRepo
	wallet      *fakeWalletRepo
	withdrawals *fakeWithdrawalRepo
	referrals   *fakeReferralRepo
	owners      *fakeOwnerRepo
	stats       *fakeStatsRepo
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) SubscriptionRepository() contract.SubscriptionRepository { return u.subs }
func (u *fakeUow) PaymentRepository() contract.PaymentRepository           { return u.payments }
func (u *fakeUow) WalletRepository() contract.WalletRepository             { return u.wallet }
func (u *fakeUow) WithdrawalRepository() contract.WithdrawalRepository     { return u.withdrawals }
func (u *fakeUow) ReferralRepository() contract.ReferralRepository         { return u.referrals }
func (u *fakeUow) OwnerRepository() contract.OwnerRepository               { return u.owners }
func (u *fakeUow) StatsRepository() contract.StatsRepository               { return u.stats }

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// --- wiring ---

type testEnv struct {
	factory   *fakeFactory
	uow       *fakeUow
	publisher *recordingPublisher
	gw        *fakeGateway
	cfg       config.BillingConfig
}

func newTestEnv() *testEnv {
	subs := &fakeSubscriptionRepo{rows: map[uuid.UUID]*entity.Subscription{}}
	uow := &fakeUow{
		subs:        subs,
		payments:    &fakePaymentRepo{rows: map[string]*entity.Payment{}},
		wallet:      &fakeWalletRepo{},
		withdrawals: &fakeWithdrawalRepo{rows: map[string]*entity.WithdrawalRequest{}},
		referrals:   &fakeReferralRepo{rows: map[uuid.UUID]*entity.ReferralEdge{}},
		owners:      &fakeOwnerRepo{rows: map[uuid.UUID]*entity.Owner{}},
	}
	uow.stats = &fakeStatsRepo{rows: map[string]*entity.DailyStats{}, subs: subs}

	return &testEnv{
		factory:   &fakeFactory{uow: uow},
		uow:       uow,
		publisher: &recordingPublisher{},
		gw:        &fakeGateway{serverKey: "test-server-key"},
		cfg: config.BillingConfig{
			Currency:           "XOF",
			TrialDays:          30,
			ReferralBonusDays:  30,
			MaxRenewalAttempts: 3,
			SweepBatchSize:     200,
			SweepLeaseTTL:      5 * time.Minute,
		},
	}
}

func (e *testEnv) addOwner(referralCode string) *entity.Owner {
	owner := &entity.Owner{
		Id:           uuid.New(),
		FullName:     "Test Owner",
		Phone:        "+22501020304",
		Email:        "owner@example.com",
		ReferralCode: referralCode,
		IsActive:     true,
	}
	e.uow.owners.rows[owner.Id] = owner
	return owner
}

func (e *testEnv) newSubscriptionService() ISubscriptionService {
	return NewSubscriptionService(e.factory, e.gw, nil, e.publisher, nil, e.cfg, nopLogger{})
}

func (e *testEnv) newWalletService() IWalletService {
	return NewWalletService(e.factory, e.publisher, nopLogger{})
}

func (e *testEnv) newReferralService() IReferralService {
	return NewReferralService(e.factory, e.publisher, nopLogger{})
}

func (e *testEnv) newStatsService() IStatsService {
	return NewStatsService(e.factory, nopLogger{})
}
