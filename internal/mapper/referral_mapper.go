package mapper

import (
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/model"
)

type ReferralMapper struct{}

func NewReferralMapper() *ReferralMapper {
	return &ReferralMapper{}
}

func (m *ReferralMapper) EdgeToModel(e *entity.ReferralEdge) *model.ReferralEdge {
	if e == nil {
		return nil
	}
	return &model.ReferralEdge{
		Id:              e.Id,
		ReferrerCode:    e.ReferrerCode,
		ReferredOwnerId: e.ReferredOwnerId,
		BonusGranted:    e.BonusGranted,
		BonusGrantedAt:  e.BonusGrantedAt,
		CreatedAt:       e.CreatedAt,
	}
}

func (m *ReferralMapper) EdgeToEntity(md *model.ReferralEdge) *entity.ReferralEdge {
	if md == nil {
		return nil
	}
	return &entity.ReferralEdge{
		Id:              md.Id,
		ReferrerCode:    md.ReferrerCode,
		ReferredOwnerId: md.ReferredOwnerId,
		BonusGranted:    md.BonusGranted,
		BonusGrantedAt:  md.BonusGrantedAt,
		CreatedAt:       md.CreatedAt,
	}
}

func (m *ReferralMapper) OwnerToEntity(md *model.Owner) *entity.Owner {
	if md == nil {
		return nil
	}
	return &entity.Owner{
		Id:           md.Id,
		FullName:     md.FullName,
		Phone:        md.Phone,
		Email:        md.Email,
		ReferralCode: md.ReferralCode,
		ReferredBy:   md.ReferredBy,
		IsActive:     md.IsActive,
	}
}
