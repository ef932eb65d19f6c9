package model

import (
	"time"

	"github.com/google/uuid"
)

type WalletAccount struct {
	Id                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TotalBalance      int64      `gorm:"not null;default:0"`
	AvailableBalance  int64      `gorm:"not null;default:0"`
	PendingBalance    int64      `gorm:"not null;default:0"`
	WithdrawnBalance  int64      `gorm:"not null;default:0"`
	LastTransactionAt *time.Time ``
	LastWithdrawalAt  *time.Time ``
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}

func (WalletAccount) TableName() string {
	return "wallet_accounts"
}

type WithdrawalRequest struct {
	Id                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference         string     `gorm:"type:varchar(20);uniqueIndex;not null"`
	Amount            int64      `gorm:"not null"`
	Provider          string     `gorm:"type:varchar(20);not null"`
	DestinationNumber string     `gorm:"type:varchar(20);not null"`
	DestinationName   string     `gorm:"type:varchar(100)"`
	Status            string     `gorm:"type:varchar(20);not null;index"`
	ProviderRef       string     `gorm:"type:varchar(100)"`
	ErrorMessage      string     `gorm:"type:varchar(500)"`
	Notes             string     `gorm:"type:text"`
	ReservedAt        time.Time  `gorm:"not null"`
	ProcessedAt       *time.Time ``
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
