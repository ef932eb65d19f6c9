package model

import (
	"time"

	"github.com/google/uuid"
)

type ReferralEdge struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReferrerCode    string     `gorm:"type:varchar(20);not null;index"`
	ReferredOwnerId uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	BonusGranted    bool       `gorm:"default:false"`
	BonusGrantedAt  *time.Time ``
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
}

func (ReferralEdge) TableName() string {
	return "referral_edges"
}

// Owner mirrors the external identity store. This core only reads it.
type Owner struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName     string    `gorm:"type:varchar(100)"`
	Phone        string    `gorm:"type:varchar(20)"`
	Email        string    `gorm:"type:varchar(255)"`
	ReferralCode string    `gorm:"type:varchar(20);uniqueIndex"`
	ReferredBy   string    `gorm:"type:varchar(20)"`
	IsActive     bool      `gorm:"default:true"`
}

func (Owner) TableName() string {
	return "owners"
}
