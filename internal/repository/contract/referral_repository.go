package contract

import (
	"context"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReferralRepository interface {
	CreateEdge(ctx context.Context, edge *entity.ReferralEdge) error
	UpdateEdge(ctx context.Context, edge *entity.ReferralEdge) error
	FindEdgeByReferredOwner(ctx context.Context, ownerId uuid.UUID) (*entity.ReferralEdge, error)
	FindEdges(ctx context.Context, specs ...specification.Specification) ([]*entity.ReferralEdge, error)

	// MarkBonusGranted flips bonus_granted from false to true for the edge,
	// returning false if the bonus was already granted. Same compare-and-set
	// shape as PaymentRepository.CompletePending.
	MarkBonusGranted(ctx context.Context, edgeId uuid.UUID) (bool, error)
}
