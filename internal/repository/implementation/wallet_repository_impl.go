package implementation

import (
	"context"
	"errors"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/mapper"
	"marketplace-billing-be/internal/model"
	"marketplace-billing-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WalletMapper
}

func NewWalletRepository(db *gorm.DB) contract.WalletRepository {
	return &WalletRepositoryImpl{
		db:     db,
		mapper: mapper.NewWalletMapper(),
	}
}

func (r *WalletRepositoryImpl) FindForUpdate(ctx context.Context) (*entity.WalletAccount, error) {
	var m model.WalletAccount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("created_at ASC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = model.WalletAccount{}
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return nil, err
		}
		// Re-read under the lock so concurrent first-use races serialize.
		err = r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "id = ?", m.Id).Error
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.AccountToEntity(&m), nil
}

func (r *WalletRepositoryImpl) Find(ctx context.Context) (*entity.WalletAccount, error) {
	var m model.WalletAccount
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.AccountToEntity(&m), nil
}

func (r *WalletRepositoryImpl) Save(ctx context.Context, account *entity.WalletAccount) error {
	m := r.mapper.AccountToModel(account)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*account = *r.mapper.AccountToEntity(m)
	return nil
}
