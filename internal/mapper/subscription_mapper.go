package mapper

import (
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToModel(e *entity.Subscription) *model.Subscription {
	if e == nil {
		return nil
	}
	return &model.Subscription{
		Id:                 e.Id,
		OwnerId:            e.OwnerId,
		Plan:               string(e.Plan),
		Status:             string(e.Status),
		Price:              e.Price,
		OriginalPrice:      e.OriginalPrice,
		Discount:           e.Discount,
		StartDate:          e.StartDate,
		EndDate:            e.EndDate,
		TrialStartDate:     e.TrialStartDate,
		TrialEndDate:       e.TrialEndDate,
		PaymentMethod:      e.PaymentMethod,
		PaymentReference:   e.PaymentReference,
		PaymentStatus:      string(e.PaymentStatus),
		AutoRenewal:        e.AutoRenewal,
		RenewalAttempts:    e.RenewalAttempts,
		MaxRenewalAttempts: e.MaxRenewalAttempts,
		ReferralCode:       e.ReferralCode,
		Notes:              e.Notes,
		ActivatedAt:        e.ActivatedAt,
		CancelledAt:        e.CancelledAt,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToEntity(md *model.Subscription) *entity.Subscription {
	if md == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                 md.Id,
		OwnerId:            md.OwnerId,
		Plan:               entity.SubscriptionPlan(md.Plan),
		Status:             entity.SubscriptionStatus(md.Status),
		Price:              md.Price,
		OriginalPrice:      md.OriginalPrice,
		Discount:           md.Discount,
		StartDate:          md.StartDate,
		EndDate:            md.EndDate,
		TrialStartDate:     md.TrialStartDate,
		TrialEndDate:       md.TrialEndDate,
		PaymentMethod:      md.PaymentMethod,
		PaymentReference:   md.PaymentReference,
		PaymentStatus:      entity.PaymentState(md.PaymentStatus),
		AutoRenewal:        md.AutoRenewal,
		RenewalAttempts:    md.RenewalAttempts,
		MaxRenewalAttempts: md.MaxRenewalAttempts,
		ReferralCode:       md.ReferralCode,
		Notes:              md.Notes,
		ActivatedAt:        md.ActivatedAt,
		CancelledAt:        md.CancelledAt,
		CreatedAt:          md.CreatedAt,
		UpdatedAt:          md.UpdatedAt,
	}
}
