package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Payment struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionId  string         `gorm:"type:varchar(100);uniqueIndex;not null"`
	OwnerId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	SubscriptionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Provider       string         `gorm:"type:varchar(20);not null"`
	Amount         int64          `gorm:"not null"`
	Currency       string         `gorm:"type:varchar(3);not null;default:'XOF'"`
	Status         string         `gorm:"type:varchar(20);not null;index"`
	ProviderRef    string         `gorm:"type:varchar(100)"`
	ProviderToken  string         `gorm:"type:varchar(255)"`
	RedirectURL    string         `gorm:"type:text"`
	RawResponse    datatypes.JSON ``
	ErrorMessage   string         `gorm:"type:text"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	CompletedAt    *time.Time     `gorm:"index"`
	ExpiresAt      *time.Time     ``
}

func (Payment) TableName() string {
	return "payments"
}
