package contract

import (
	"context"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/repository/specification"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, request *entity.WithdrawalRequest) error
	Update(ctx context.Context, request *entity.WithdrawalRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WithdrawalRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WithdrawalRequest, error)
	FindByReference(ctx context.Context, reference string) (*entity.WithdrawalRequest, error)
}
