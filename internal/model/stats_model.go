package model

import (
	"time"

	"github.com/google/uuid"
)

type DailyStats struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date             time.Time `gorm:"type:date;uniqueIndex;not null"`
	Revenue          int64     `gorm:"not null;default:0"`
	NewSubscriptions int       `gorm:"not null;default:0"`
	MonthlyCount     int       `gorm:"not null;default:0"`
	QuarterlyCount   int       `gorm:"not null;default:0"`
	BiannualCount    int       `gorm:"not null;default:0"`
	AnnualCount      int       `gorm:"not null;default:0"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (DailyStats) TableName() string {
	return "daily_stats"
}
