package contract

import (
	"context"

	"marketplace-billing-be/internal/entity"
)

type WalletRepository interface {
	// FindForUpdate loads the singleton platform wallet row under a row lock.
	// Must be called inside an open unit of work; creates the row on first use.
	FindForUpdate(ctx context.Context) (*entity.WalletAccount, error)

	Find(ctx context.Context) (*entity.WalletAccount, error)
	Save(ctx context.Context, account *entity.WalletAccount) error
}
