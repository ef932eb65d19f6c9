package implementation

import (
	"context"
	"errors"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/mapper"
	"marketplace-billing-be/internal/model"
	"marketplace-billing-be/internal/repository/contract"
	"marketplace-billing-be/internal/repository/specification"

	"gorm.io/gorm"
)

type WithdrawalRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WalletMapper
}

func NewWithdrawalRepository(db *gorm.DB) contract.WithdrawalRepository {
	return &WithdrawalRepositoryImpl{
		db:     db,
		mapper: mapper.NewWalletMapper(),
	}
}

func (r *WithdrawalRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WithdrawalRepositoryImpl) Create(ctx context.Context, request *entity.WithdrawalRequest) error {
	m := r.mapper.WithdrawalToModel(request)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*request = *r.mapper.WithdrawalToEntity(m)
	return nil
}

func (r *WithdrawalRepositoryImpl) Update(ctx context.Context, request *entity.WithdrawalRequest) error {
	m := r.mapper.WithdrawalToModel(request)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*request = *r.mapper.WithdrawalToEntity(m)
	return nil
}

func (r *WithdrawalRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WithdrawalRequest, error) {
	var m model.WithdrawalRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.WithdrawalToEntity(&m), nil
}

func (r *WithdrawalRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WithdrawalRequest, error) {
	var models []*model.WithdrawalRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.WithdrawalRequest, len(models))
	for i, m := range models {
		entities[i] = r.mapper.WithdrawalToEntity(m)
	}
	return entities, nil
}

func (r *WithdrawalRepositoryImpl) FindByReference(ctx context.Context, reference string) (*entity.WithdrawalRequest, error) {
	return r.FindOne(ctx, specification.ByReference{Reference: reference})
}
