package implementation

import (
	"context"
	"errors"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/mapper"
	"marketplace-billing-be/internal/model"
	"marketplace-billing-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OwnerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReferralMapper
}

func NewOwnerRepository(db *gorm.DB) contract.OwnerRepository {
	return &OwnerRepositoryImpl{
		db:     db,
		mapper: mapper.NewReferralMapper(),
	}
}

func (r *OwnerRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	var m model.Owner
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.OwnerToEntity(&m), nil
}

func (r *OwnerRepositoryImpl) FindByReferralCode(ctx context.Context, code string) (*entity.Owner, error) {
	var m model.Owner
	err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.OwnerToEntity(&m), nil
}
