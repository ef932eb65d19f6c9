package contract

import (
	"context"

	"marketplace-billing-be/internal/entity"

	"github.com/google/uuid"
)

// OwnerRepository is a read-only view over the identity store. Billing never
// mutates owner records.
type OwnerRepository interface {
	FindById(ctx context.Context, id uuid.UUID) (*entity.Owner, error)
	FindByReferralCode(ctx context.Context, code string) (*entity.Owner, error)
}
