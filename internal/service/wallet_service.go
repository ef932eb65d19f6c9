package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/dto"
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/pkg/logger"
	"marketplace-billing-be/internal/repository/specification"
	"marketplace-billing-be/internal/repository/unitofwork"
	"marketplace-billing-be/pkg/events"

	"github.com/google/uuid"
)

type IWalletService interface {
	GetWallet(ctx context.Context) (*entity.WalletAccount, error)

	// Credit adds settled revenue to the wallet inside the caller's open
	// unit of work, so the ledger moves atomically with the payment.
	Credit(ctx context.Context, uow unitofwork.UnitOfWork, amount int64, at time.Time) error

	ReserveWithdrawal(ctx context.Context, req *dto.WithdrawalCreateRequest) (*entity.WithdrawalRequest, error)
	CompleteWithdrawal(ctx context.Context, reference, providerRef string) (*entity.WithdrawalRequest, error)
	CancelWithdrawal(ctx context.Context, reference, reason string) (*entity.WithdrawalRequest, error)
	ListWithdrawals(ctx context.Context, status string, limit, offset int) ([]*entity.WithdrawalRequest, error)

	// Halted reports whether ledger writes are refused after a detected
	// imbalance.
	Halted() bool
}

type walletService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher IEventPublisherService
	logger         logger.ILogger
	halted         atomic.Bool
}

func NewWalletService(uowFactory unitofwork.RepositoryFactory, eventPublisher IEventPublisherService, log logger.ILogger) IWalletService {
	return &walletService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *walletService) Halted() bool {
	return s.halted.Load()
}

func (s *walletService) guard() error {
	if s.halted.Load() {
		return &apperror.InvariantViolation{Message: "wallet ledger halted, manual reconciliation required"}
	}
	return nil
}

// verifyAndSave persists the mutated wallet only when the conservation
// invariant holds. A broken invariant is never auto-corrected: writes stop
// until someone reconciles the ledger by hand.
func (s *walletService) verifyAndSave(ctx context.Context, uow unitofwork.UnitOfWork, wallet *entity.WalletAccount, op string) error {
	if !wallet.Balanced() {
		s.halted.Store(true)
		s.logger.Error("wallet", "Ledger imbalance detected, halting wallet writes", map[string]interface{}{
			"operation": op,
			"total":     wallet.TotalBalance,
			"available": wallet.AvailableBalance,
			"pending":   wallet.PendingBalance,
			"withdrawn": wallet.WithdrawnBalance,
		})
		return &apperror.InvariantViolation{Message: fmt.Sprintf("wallet imbalance after %s", op)}
	}
	return uow.WalletRepository().Save(ctx, wallet)
}

func (s *walletService) GetWallet(ctx context.Context) (*entity.WalletAccount, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	wallet, err := uow.WalletRepository().Find(ctx)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return &entity.WalletAccount{}, nil
	}
	return wallet, nil
}

func (s *walletService) Credit(ctx context.Context, uow unitofwork.UnitOfWork, amount int64, at time.Time) error {
	if err := s.guard(); err != nil {
		return err
	}
	if amount <= 0 {
		return apperror.NewValidation("amount", "credit amount must be positive")
	}

	wallet, err := uow.WalletRepository().FindForUpdate(ctx)
	if err != nil {
		return err
	}

	wallet.TotalBalance += amount
	wallet.AvailableBalance += amount
	wallet.LastTransactionAt = &at

	return s.verifyAndSave(ctx, uow, wallet, "credit")
}

func (s *walletService) ReserveWithdrawal(ctx context.Context, req *dto.WithdrawalCreateRequest) (*entity.WithdrawalRequest, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, apperror.NewValidation("amount", "withdrawal amount must be positive")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().FindForUpdate(ctx)
	if err != nil {
		return nil, err
	}

	if wallet.AvailableBalance < req.Amount {
		return nil, &apperror.InsufficientFundsError{
			Requested: req.Amount,
			Available: wallet.AvailableBalance,
		}
	}

	now := time.Now()
	wallet.AvailableBalance -= req.Amount
	wallet.PendingBalance += req.Amount

	if err := s.verifyAndSave(ctx, uow, wallet, "reserve"); err != nil {
		return nil, err
	}

	withdrawal := &entity.WithdrawalRequest{
		Id:                uuid.New(),
		Reference:         newWithdrawalReference(now),
		Amount:            req.Amount,
		Provider:          req.Provider,
		DestinationNumber: req.DestinationNumber,
		DestinationName:   req.DestinationName,
		Status:            entity.WithdrawalStatusPending,
		Notes:             req.Notes,
		ReservedAt:        now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uow.WithdrawalRepository().Create(ctx, withdrawal); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("wallet", "Withdrawal reserved", map[string]interface{}{
		"reference": withdrawal.Reference,
		"amount":    withdrawal.Amount,
	})
	return withdrawal, nil
}

func (s *walletService) CompleteWithdrawal(ctx context.Context, reference, providerRef string) (*entity.WithdrawalRequest, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	withdrawal, err := uow.WithdrawalRepository().FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, apperror.NewNotFound("withdrawal", reference)
	}
	if withdrawal.IsTerminal() {
		return nil, apperror.NewConflict(fmt.Sprintf("withdrawal %s already %s", reference, withdrawal.Status))
	}

	wallet, err := uow.WalletRepository().FindForUpdate(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	wallet.PendingBalance -= withdrawal.Amount
	wallet.WithdrawnBalance += withdrawal.Amount
	wallet.LastWithdrawalAt = &now

	if err := s.verifyAndSave(ctx, uow, wallet, "complete withdrawal"); err != nil {
		return nil, err
	}

	withdrawal.Status = entity.WithdrawalStatusCompleted
	withdrawal.ProviderRef = providerRef
	withdrawal.ProcessedAt = &now
	withdrawal.UpdatedAt = now
	if err := uow.WithdrawalRepository().Update(ctx, withdrawal); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.NewWithdrawalCompleted(withdrawal.Reference, withdrawal.Amount)); err != nil {
			s.logger.Warn("wallet", "Failed to publish withdrawal event", map[string]interface{}{"error": err.Error()})
		}
	}
	return withdrawal, nil
}

func (s *walletService) CancelWithdrawal(ctx context.Context, reference, reason string) (*entity.WithdrawalRequest, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	withdrawal, err := uow.WithdrawalRepository().FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, apperror.NewNotFound("withdrawal", reference)
	}
	if withdrawal.IsTerminal() {
		return nil, apperror.NewConflict(fmt.Sprintf("withdrawal %s already %s", reference, withdrawal.Status))
	}

	wallet, err := uow.WalletRepository().FindForUpdate(ctx)
	if err != nil {
		return nil, err
	}

	// Release the reservation back into the available pool.
	now := time.Now()
	wallet.PendingBalance -= withdrawal.Amount
	wallet.AvailableBalance += withdrawal.Amount

	if err := s.verifyAndSave(ctx, uow, wallet, "cancel withdrawal"); err != nil {
		return nil, err
	}

	withdrawal.Status = entity.WithdrawalStatusCancelled
	withdrawal.ErrorMessage = reason
	withdrawal.ProcessedAt = &now
	withdrawal.UpdatedAt = now
	if err := uow.WithdrawalRepository().Update(ctx, withdrawal); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func (s *walletService) ListWithdrawals(ctx context.Context, status string, limit, offset int) ([]*entity.WithdrawalRequest, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit, Offset: offset})
	}
	return uow.WithdrawalRepository().FindAll(ctx, specs...)
}

func newWithdrawalReference(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("WDR-%s-%s", now.Format("20060102"), suffix)
}
