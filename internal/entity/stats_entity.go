package entity

import (
	"time"

	"github.com/google/uuid"
)

// DailyStats is one aggregate row per calendar day. Rows are always rebuilt
// from the underlying payments and subscriptions, never incremented in place.
type DailyStats struct {
	Id               uuid.UUID
	Date             time.Time
	Revenue          int64
	NewSubscriptions int
	MonthlyCount     int
	QuarterlyCount   int
	BiannualCount    int
	AnnualCount      int
	UpdatedAt        time.Time
}
