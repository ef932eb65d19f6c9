package entity

import (
	"time"

	"github.com/google/uuid"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusFailed     WithdrawalStatus = "failed"
	WithdrawalStatusCancelled  WithdrawalStatus = "cancelled"
)

// WalletAccount is the singleton platform wallet. All subscription revenue
// lands here; withdrawals move money through pending into withdrawn.
type WalletAccount struct {
	Id                uuid.UUID
	TotalBalance      int64
	AvailableBalance  int64
	PendingBalance    int64
	WithdrawnBalance  int64
	LastTransactionAt *time.Time
	LastWithdrawalAt  *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Balanced checks the conservation invariant:
// total == available + pending + withdrawn, with no negative component.
func (w *WalletAccount) Balanced() bool {
	if w.AvailableBalance < 0 || w.PendingBalance < 0 || w.WithdrawnBalance < 0 {
		return false
	}
	return w.TotalBalance == w.AvailableBalance+w.PendingBalance+w.WithdrawnBalance
}

// WithdrawalRequest tracks one payout from the platform wallet. Reference is
// the human-facing WDR number.
type WithdrawalRequest struct {
	Id                uuid.UUID
	Reference         string
	Amount            int64
	Provider          string
	DestinationNumber string
	DestinationName   string
	Status            WithdrawalStatus
	ProviderRef       string
	ErrorMessage      string
	Notes             string
	ReservedAt        time.Time
	ProcessedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (r *WithdrawalRequest) IsTerminal() bool {
	switch r.Status {
	case WithdrawalStatusCompleted, WithdrawalStatusFailed, WithdrawalStatusCancelled:
		return true
	}
	return false
}
