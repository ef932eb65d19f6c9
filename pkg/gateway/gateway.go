package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"time"

	"marketplace-billing-be/internal/entity"
)

// CheckoutSession is what a provider hands back when a pending payment is
// registered with it.
type CheckoutSession struct {
	TransactionId string
	Token         string
	RedirectURL   string
	ExpiresAt     *time.Time
	Raw           []byte
}

// Notification is the normalized webhook body. Every provider adapter folds
// its own payload into this shape before it reaches the reconciler.
type Notification struct {
	TransactionId     string
	TransactionStatus string
	StatusCode        string
	GrossAmount       string
	SignatureKey      string
	Raw               []byte
}

// Customer carries the fields providers want about the paying owner.
type Customer struct {
	FullName string
	Email    string
	Phone    string
}

// Gateway abstracts a payment provider. Both the simulated provider and the
// real one sign notifications the same way, so the reconciler has a single
// verification path.
type Gateway interface {
	Name() entity.PaymentProvider

	// CreateCheckout registers the pending payment with the provider and
	// returns the session the client needs to complete it.
	CreateCheckout(ctx context.Context, payment *entity.Payment, customer Customer, description string) (*CheckoutSession, error)

	// CheckStatus queries the provider for the authoritative state of a
	// transaction. Used when webhook delivery is in doubt.
	CheckStatus(ctx context.Context, transactionId string) (entity.PaymentState, error)
}

// Sign computes the notification signature:
// SHA512(transaction_id + status_code + gross_amount + server_key).
func Sign(transactionId, statusCode, grossAmount, serverKey string) string {
	input := transactionId + statusCode + grossAmount + serverKey
	return fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
}

// VerifySignature checks a notification's signature in constant time.
func VerifySignature(n *Notification, serverKey string) bool {
	expected := Sign(n.TransactionId, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}

// FormatGrossAmount renders an integer minor-unit amount the way provider
// notifications carry it.
func FormatGrossAmount(amount int64) string {
	return fmt.Sprintf("%d.00", amount)
}
