package contract

import (
	"context"
	"time"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	Update(ctx context.Context, subscription *entity.Subscription) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)

	// FindLiveByOwner returns the owner's current access-granting subscription
	// (trial or active, end date in the future), or nil when there is none.
	FindLiveByOwner(ctx context.Context, ownerId uuid.UUID, now time.Time) (*entity.Subscription, error)

	// FindExpired returns subscriptions whose end date has passed while the
	// status still says trial or active. Used by the expiration sweep.
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Subscription, error)

	// HasTrialHistory reports whether the owner ever held a trial,
	// regardless of its current status.
	HasTrialHistory(ctx context.Context, ownerId uuid.UUID) (bool, error)

	CountByStatus(ctx context.Context, status entity.SubscriptionStatus) (int64, error)
}
