package model

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Plan               string     `gorm:"type:varchar(20);not null"`
	Status             string     `gorm:"type:varchar(20);not null;index"`
	Price              int64      `gorm:"not null"`
	OriginalPrice      int64      `gorm:"not null;default:0"`
	Discount           int64      `gorm:"not null;default:0"`
	StartDate          time.Time  `gorm:"not null"`
	EndDate            time.Time  `gorm:"not null;index"`
	TrialStartDate     *time.Time ``
	TrialEndDate       *time.Time ``
	PaymentMethod      string     `gorm:"type:varchar(20)"`
	PaymentReference   string     `gorm:"type:varchar(100)"`
	PaymentStatus      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	AutoRenewal        bool       `gorm:"default:false"`
	RenewalAttempts    int        `gorm:"default:0"`
	MaxRenewalAttempts int        `gorm:"default:3"`
	ReferralCode       string     `gorm:"type:varchar(20)"`
	Notes              string     `gorm:"type:text"`
	ActivatedAt        *time.Time ``
	CancelledAt        *time.Time ``
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
