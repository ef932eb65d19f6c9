package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Plan / Checkout DTOs ---

type PlanResponse struct {
	Plan          string `json:"plan"`
	Name          string `json:"name"`
	DurationDays  int    `json:"duration_days"`
	Price         int64  `json:"price"`
	OriginalPrice int64  `json:"original_price"`
	Discount      int64  `json:"discount"`
	IsPopular     bool   `json:"is_popular"`
}

type CheckoutRequest struct {
	Plan          string `json:"plan" validate:"required,oneof=monthly quarterly biannual annual"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,max=20"`
	ReferralCode  string `json:"referral_code" validate:"omitempty,max=20"`
	AutoRenewal   bool   `json:"auto_renewal"`
}

type CheckoutResponse struct {
	SubscriptionId uuid.UUID `json:"subscription_id"`
	TransactionId  string    `json:"transaction_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	PaymentToken   string    `json:"payment_token,omitempty"`
	PaymentUrl     string    `json:"payment_url,omitempty"`
}

type TrialResponse struct {
	SubscriptionId uuid.UUID `json:"subscription_id"`
	TrialEndDate   time.Time `json:"trial_end_date"`
}

type RenewRequest struct {
	Plan          string `json:"plan" validate:"omitempty,oneof=monthly quarterly biannual annual"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,max=20"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type SubscriptionStatusResponse struct {
	SubscriptionId uuid.UUID  `json:"subscription_id,omitempty"`
	Plan           string     `json:"plan,omitempty"`
	Status         string     `json:"status"`
	IsActive       bool       `json:"is_active"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	DaysRemaining  int        `json:"days_remaining"`
	AutoRenewal    bool       `json:"auto_renewal"`
}

// --- Webhook DTOs ---

type WebhookNotificationRequest struct {
	TransactionId     string `json:"transaction_id" validate:"required"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	StatusCode        string `json:"status_code" validate:"required"`
	GrossAmount       string `json:"gross_amount" validate:"required"`
	SignatureKey      string `json:"signature_key" validate:"required"`
}

type PaymentStatusResponse struct {
	TransactionId  string `json:"transaction_id"`
	Status         string `json:"status"`
	ProviderStatus string `json:"provider_status,omitempty"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// --- Wallet / Withdrawal DTOs ---

type WalletResponse struct {
	TotalBalance      int64      `json:"total_balance"`
	AvailableBalance  int64      `json:"available_balance"`
	PendingBalance    int64      `json:"pending_balance"`
	WithdrawnBalance  int64      `json:"withdrawn_balance"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
	LastWithdrawalAt  *time.Time `json:"last_withdrawal_at,omitempty"`
}

type WithdrawalCreateRequest struct {
	Amount            int64  `json:"amount" validate:"required,gt=0"`
	Provider          string `json:"provider" validate:"required,max=20"`
	DestinationNumber string `json:"destination_number" validate:"required,max=20"`
	DestinationName   string `json:"destination_name" validate:"omitempty,max=100"`
	Notes             string `json:"notes" validate:"omitempty,max=500"`
}

type WithdrawalResponse struct {
	Reference         string     `json:"reference"`
	Amount            int64      `json:"amount"`
	Provider          string     `json:"provider"`
	DestinationNumber string     `json:"destination_number"`
	Status            string     `json:"status"`
	ReservedAt        time.Time  `json:"reserved_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
}

type WithdrawalSettleRequest struct {
	ProviderRef  string `json:"provider_ref" validate:"omitempty,max=100"`
	ErrorMessage string `json:"error_message" validate:"omitempty,max=500"`
}

// --- Stats DTOs ---

type DailyStatsResponse struct {
	Date             string `json:"date"`
	Revenue          int64  `json:"revenue"`
	NewSubscriptions int    `json:"new_subscriptions"`
	MonthlyCount     int    `json:"monthly_count"`
	QuarterlyCount   int    `json:"quarterly_count"`
	BiannualCount    int    `json:"biannual_count"`
	AnnualCount      int    `json:"annual_count"`
}

type StatsRangeRequest struct {
	From string `query:"from" validate:"required,datetime=2006-01-02"`
	To   string `query:"to" validate:"required,datetime=2006-01-02"`
}

type SweepResponse struct {
	Expired int `json:"expired"`
}
