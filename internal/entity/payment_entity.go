package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentProvider string

const (
	ProviderSimulated PaymentProvider = "simulated"
	ProviderMidtrans  PaymentProvider = "midtrans"
)

// Payment is one reconciliation attempt against the gateway. TransactionId is
// the idempotency key: exactly one payment row exists per gateway transaction.
type Payment struct {
	Id             uuid.UUID
	TransactionId  string
	OwnerId        uuid.UUID
	SubscriptionId uuid.UUID
	Provider       PaymentProvider
	Amount         int64
	Currency       string
	Status         PaymentState
	ProviderRef    string
	ProviderToken  string
	RedirectURL    string
	RawResponse    []byte
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
	ExpiresAt      *time.Time
}

// IsTerminal reports whether the payment has settled. Terminal payments
// never change state again.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStateSuccess || p.Status == PaymentStateFailed
}
