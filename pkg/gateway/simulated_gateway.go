package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"marketplace-billing-be/internal/entity"
)

// NotifyFunc delivers a signed notification back into the reconciliation
// pipeline, exactly the way an external webhook delivery would.
type SimulatedNotifyFunc func(ctx context.Context, notification *Notification) error

type SimulatedConfig struct {
	ServerKey   string
	RedirectURL string
	// ConfirmAfter is how long the fake provider "processes" before it
	// fires the success webhook.
	ConfirmAfter time.Duration
}

// SimulatedGateway approves every checkout after a short delay and delivers
// the confirmation through the same signed-webhook path real providers use.
// Demo environments run on it; nothing downstream can tell the difference.
type SimulatedGateway struct {
	cfg SimulatedConfig

	mu     sync.RWMutex
	notify SimulatedNotifyFunc
}

func NewSimulatedGateway(cfg SimulatedConfig, notify SimulatedNotifyFunc) *SimulatedGateway {
	if cfg.ConfirmAfter == 0 {
		cfg.ConfirmAfter = 5 * time.Second
	}
	return &SimulatedGateway{
		cfg:    cfg,
		notify: notify,
	}
}

// SetNotify binds the webhook consumer after construction. The container
// builds the gateway before the reconciler exists, and the confirmation timer
// fires from its own goroutine, so both sides go through the lock.
func (g *SimulatedGateway) SetNotify(notify SimulatedNotifyFunc) {
	g.mu.Lock()
	g.notify = notify
	g.mu.Unlock()
}

func (g *SimulatedGateway) notifyFunc() SimulatedNotifyFunc {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.notify
}

func (g *SimulatedGateway) Name() entity.PaymentProvider {
	return entity.ProviderSimulated
}

func (g *SimulatedGateway) CreateCheckout(ctx context.Context, payment *entity.Payment, customer Customer, description string) (*CheckoutSession, error) {
	token := fmt.Sprintf("sim-%s", payment.TransactionId)
	expiresAt := time.Now().Add(30 * time.Minute)

	session := &CheckoutSession{
		TransactionId: payment.TransactionId,
		Token:         token,
		RedirectURL:   g.cfg.RedirectURL,
		ExpiresAt:     &expiresAt,
	}

	g.scheduleConfirmation(payment.TransactionId, payment.Amount)

	return session, nil
}

func (g *SimulatedGateway) CheckStatus(ctx context.Context, transactionId string) (entity.PaymentState, error) {
	// The fake provider settles everything it accepted; anything still
	// unknown here is pending.
	return entity.PaymentStatePending, nil
}

func (g *SimulatedGateway) scheduleConfirmation(transactionId string, amount int64) {
	time.AfterFunc(g.cfg.ConfirmAfter, func() {
		notify := g.notifyFunc()
		if notify == nil {
			return
		}
		n := g.BuildNotification(transactionId, amount, "settlement", "200")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Delivery failures are the reconciler's problem to log; the
		// fake provider does not retry.
		_ = notify(ctx, n)
	})
}

// BuildNotification assembles a correctly signed notification for the given
// transaction. Tests use it to emulate deliveries without the timer.
func (g *SimulatedGateway) BuildNotification(transactionId string, amount int64, transactionStatus, statusCode string) *Notification {
	grossAmount := FormatGrossAmount(amount)
	raw, _ := json.Marshal(map[string]string{
		"transaction_id":     transactionId,
		"transaction_status": transactionStatus,
		"status_code":        statusCode,
		"gross_amount":       grossAmount,
	})
	return &Notification{
		TransactionId:     transactionId,
		TransactionStatus: transactionStatus,
		StatusCode:        statusCode,
		GrossAmount:       grossAmount,
		SignatureKey:      Sign(transactionId, statusCode, grossAmount, g.cfg.ServerKey),
		Raw:               raw,
	}
}
