package contract

import (
	"context"
	"time"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/repository/specification"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error)
	FindByTransactionId(ctx context.Context, transactionId string) (*entity.Payment, error)

	// CompletePending flips a payment from pending to the given terminal state
	// only if it is still pending. Returns false when another writer already
	// settled the row, which is how duplicate webhook deliveries are absorbed.
	CompletePending(ctx context.Context, transactionId string, status entity.PaymentState, rawResponse []byte, errorMessage string, completedAt time.Time) (bool, error)

	// AttachProviderSession stores the checkout token and redirect for a
	// payment that is still pending. Settled rows are left untouched, so a
	// webhook that outruns the session write can never be rolled back.
	AttachProviderSession(ctx context.Context, transactionId, token, redirectURL string, expiresAt *time.Time) (bool, error)

	SumCompletedBetween(ctx context.Context, from, to time.Time) (int64, error)
}
