package mapper

import (
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/model"

	"gorm.io/datatypes"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) ToModel(e *entity.Payment) *model.Payment {
	if e == nil {
		return nil
	}
	return &model.Payment{
		Id:             e.Id,
		TransactionId:  e.TransactionId,
		OwnerId:        e.OwnerId,
		SubscriptionId: e.SubscriptionId,
		Provider:       string(e.Provider),
		Amount:         e.Amount,
		Currency:       e.Currency,
		Status:         string(e.Status),
		ProviderRef:    e.ProviderRef,
		ProviderToken:  e.ProviderToken,
		RedirectURL:    e.RedirectURL,
		RawResponse:    datatypes.JSON(e.RawResponse),
		ErrorMessage:   e.ErrorMessage,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		CompletedAt:    e.CompletedAt,
		ExpiresAt:      e.ExpiresAt,
	}
}

func (m *PaymentMapper) ToEntity(md *model.Payment) *entity.Payment {
	if md == nil {
		return nil
	}
	return &entity.Payment{
		Id:             md.Id,
		TransactionId:  md.TransactionId,
		OwnerId:        md.OwnerId,
		SubscriptionId: md.SubscriptionId,
		Provider:       entity.PaymentProvider(md.Provider),
		Amount:         md.Amount,
		Currency:       md.Currency,
		Status:         entity.PaymentState(md.Status),
		ProviderRef:    md.ProviderRef,
		ProviderToken:  md.ProviderToken,
		RedirectURL:    md.RedirectURL,
		RawResponse:    []byte(md.RawResponse),
		ErrorMessage:   md.ErrorMessage,
		CreatedAt:      md.CreatedAt,
		UpdatedAt:      md.UpdatedAt,
		CompletedAt:    md.CompletedAt,
		ExpiresAt:      md.ExpiresAt,
	}
}
