package unitofwork

import (
	"context"

	"marketplace-billing-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SubscriptionRepository() contract.SubscriptionRepository
	PaymentRepository() contract.PaymentRepository
	WalletRepository() contract.WalletRepository
	WithdrawalRepository() contract.WithdrawalRepository
	ReferralRepository() contract.ReferralRepository
	OwnerRepository() contract.OwnerRepository
	StatsRepository() contract.StatsRepository
}
