package implementation

import (
	"context"
	"errors"
	"time"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/mapper"
	"marketplace-billing-be/internal/model"
	"marketplace-billing-be/internal/repository/contract"
	"marketplace-billing-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var m model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Subscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) FindLiveByOwner(ctx context.Context, ownerId uuid.UUID, now time.Time) (*entity.Subscription, error) {
	return r.FindOne(ctx,
		specification.ByOwnerID{OwnerID: ownerId},
		specification.LiveSubscription{Now: now},
		specification.OrderBy{Field: "end_date", Desc: true},
	)
}

func (r *SubscriptionRepositoryImpl) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Subscription, error) {
	specs := []specification.Specification{
		specification.ExpiredActive{Now: now},
		specification.OrderBy{Field: "end_date", Desc: false},
	}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit})
	}
	return r.FindAll(ctx, specs...)
}

func (r *SubscriptionRepositoryImpl) HasTrialHistory(ctx context.Context, ownerId uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("owner_id = ?", ownerId).
		Where("trial_start_date IS NOT NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *SubscriptionRepositoryImpl) CountByStatus(ctx context.Context, status entity.SubscriptionStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	return count, err
}
