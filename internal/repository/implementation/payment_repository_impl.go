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

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *PaymentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *entity.Payment) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, payment *entity.Payment) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error) {
	var m model.Payment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PaymentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error) {
	var models []*model.Payment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Payment, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PaymentRepositoryImpl) FindByTransactionId(ctx context.Context, transactionId string) (*entity.Payment, error) {
	return r.FindOne(ctx, specification.ByTransactionID{TransactionID: transactionId})
}

func (r *PaymentRepositoryImpl) CompletePending(ctx context.Context, transactionId string, status entity.PaymentState, rawResponse []byte, errorMessage string, completedAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":       string(status),
		"completed_at": completedAt,
	}
	if len(rawResponse) > 0 {
		updates["raw_response"] = datatypes.JSON(rawResponse)
	}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	result := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("transaction_id = ? AND status = ?", transactionId, string(entity.PaymentStatePending)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) AttachProviderSession(ctx context.Context, transactionId, token, redirectURL string, expiresAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"provider_token": token,
		"redirect_url":   redirectURL,
		"updated_at":     time.Now(),
	}
	if expiresAt != nil {
		updates["expires_at"] = *expiresAt
	}
	result := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("transaction_id = ? AND status = ?", transactionId, string(entity.PaymentStatePending)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) SumCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", string(entity.PaymentStateSuccess)).
		Where("completed_at >= ? AND completed_at < ?", from, to).
		Scan(&total).Error
	return total, err
}
