package mapper

import (
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/model"
)

type WalletMapper struct{}

func NewWalletMapper() *WalletMapper {
	return &WalletMapper{}
}

func (m *WalletMapper) AccountToModel(e *entity.WalletAccount) *model.WalletAccount {
	if e == nil {
		return nil
	}
	return &model.WalletAccount{
		Id:                e.Id,
		TotalBalance:      e.TotalBalance,
		AvailableBalance:  e.AvailableBalance,
		PendingBalance:    e.PendingBalance,
		WithdrawnBalance:  e.WithdrawnBalance,
		LastTransactionAt: e.LastTransactionAt,
		LastWithdrawalAt:  e.LastWithdrawalAt,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func (m *WalletMapper) AccountToEntity(md *model.WalletAccount) *entity.WalletAccount {
	if md == nil {
		return nil
	}
	return &entity.WalletAccount{
		Id:                md.Id,
		TotalBalance:      md.TotalBalance,
		AvailableBalance:  md.AvailableBalance,
		PendingBalance:    md.PendingBalance,
		WithdrawnBalance:  md.WithdrawnBalance,
		LastTransactionAt: md.LastTransactionAt,
		LastWithdrawalAt:  md.LastWithdrawalAt,
		CreatedAt:         md.CreatedAt,
		UpdatedAt:         md.UpdatedAt,
	}
}

func (m *WalletMapper) WithdrawalToModel(e *entity.WithdrawalRequest) *model.WithdrawalRequest {
	if e == nil {
		return nil
	}
	return &model.WithdrawalRequest{
		Id:                e.Id,
		Reference:         e.Reference,
		Amount:            e.Amount,
		Provider:          e.Provider,
		DestinationNumber: e.DestinationNumber,
		DestinationName:   e.DestinationName,
		Status:            string(e.Status),
		ProviderRef:       e.ProviderRef,
		ErrorMessage:      e.ErrorMessage,
		Notes:             e.Notes,
		ReservedAt:        e.ReservedAt,
		ProcessedAt:       e.ProcessedAt,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func (m *WalletMapper) WithdrawalToEntity(md *model.WithdrawalRequest) *entity.WithdrawalRequest {
	if md == nil {
		return nil
	}
	return &entity.WithdrawalRequest{
		Id:                md.Id,
		Reference:         md.Reference,
		Amount:            md.Amount,
		Provider:          md.Provider,
		DestinationNumber: md.DestinationNumber,
		DestinationName:   md.DestinationName,
		Status:            entity.WithdrawalStatus(md.Status),
		ProviderRef:       md.ProviderRef,
		ErrorMessage:      md.ErrorMessage,
		Notes:             md.Notes,
		ReservedAt:        md.ReservedAt,
		ProcessedAt:       md.ProcessedAt,
		CreatedAt:         md.CreatedAt,
		UpdatedAt:         md.UpdatedAt,
	}
}
