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

type ReferralRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReferralMapper
}

func NewReferralRepository(db *gorm.DB) contract.ReferralRepository {
	return &ReferralRepositoryImpl{
		db:     db,
		mapper: mapper.NewReferralMapper(),
	}
}

func (r *ReferralRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReferralRepositoryImpl) CreateEdge(ctx context.Context, edge *entity.ReferralEdge) error {
	m := r.mapper.EdgeToModel(edge)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*edge = *r.mapper.EdgeToEntity(m)
	return nil
}

func (r *ReferralRepositoryImpl) UpdateEdge(ctx context.Context, edge *entity.ReferralEdge) error {
	m := r.mapper.EdgeToModel(edge)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*edge = *r.mapper.EdgeToEntity(m)
	return nil
}

func (r *ReferralRepositoryImpl) FindEdgeByReferredOwner(ctx context.Context, ownerId uuid.UUID) (*entity.ReferralEdge, error) {
	var m model.ReferralEdge
	err := r.db.WithContext(ctx).Where("referred_owner_id = ?", ownerId).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.EdgeToEntity(&m), nil
}

func (r *ReferralRepositoryImpl) FindEdges(ctx context.Context, specs ...specification.Specification) ([]*entity.ReferralEdge, error) {
	var models []*model.ReferralEdge
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ReferralEdge, len(models))
	for i, m := range models {
		entities[i] = r.mapper.EdgeToEntity(m)
	}
	return entities, nil
}

func (r *ReferralRepositoryImpl) MarkBonusGranted(ctx context.Context, edgeId uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.ReferralEdge{}).
		Where("id = ? AND bonus_granted = ?", edgeId, false).
		Updates(map[string]interface{}{
			"bonus_granted":    true,
			"bonus_granted_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
