package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByOwnerID filters rows belonging to a single owner
type ByOwnerID struct {
	OwnerID uuid.UUID
}

func (s ByOwnerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerID)
}

// ByTransactionID filters payments by the gateway-facing transaction id
type ByTransactionID struct {
	TransactionID string
}

func (s ByTransactionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("transaction_id = ?", s.TransactionID)
}

// ByStatus filters by the status column
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByReference filters withdrawal requests by their WDR reference
type ByReference struct {
	Reference string
}

func (s ByReference) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("reference = ?", s.Reference)
}

// ByReferrerCode filters referral edges by the referrer's code
type ByReferrerCode struct {
	Code string
}

func (s ByReferrerCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("referrer_code = ?", s.Code)
}

// LiveSubscription matches the owner's current open subscription: a pending
// checkout regardless of dates, or a trial/active one whose end date has not
// passed yet.
type LiveSubscription struct {
	Now time.Time
}

func (s LiveSubscription) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? OR (status IN ? AND end_date > ?)",
		"pending", []string{"trial", "active"}, s.Now)
}

// NonCancelled matches subscriptions in every state except cancelled. A new
// checkout supersedes whatever it returns, keeping one open row per owner.
type NonCancelled struct{}

func (s NonCancelled) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", "cancelled")
}

// ExpiredActive matches subscriptions whose end date has passed but whose
// status has not been moved to a terminal state yet. The sweep job consumes it.
type ExpiredActive struct {
	Now time.Time
}

func (s ExpiredActive) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", []string{"trial", "active"}).
		Where("end_date <= ?", s.Now)
}

// CreatedBetween bounds rows by their creation timestamp, upper bound exclusive.
type CreatedBetween struct {
	From time.Time
	To   time.Time
}

func (s CreatedBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ? AND created_at < ?", s.From, s.To)
}

// ByDate filters daily stats rows by their calendar date
type ByDate struct {
	Date time.Time
}

func (s ByDate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("date = ?", s.Date)
}
