package apperror

import "fmt"

// ValidationError signals a malformed or unsupported input (bad plan, bad amount).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return e.Message
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError signals an unknown subscription, payment or withdrawal.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

func NewNotFound(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// ConflictError signals a state clash (duplicate live subscription, double reservation).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// InsufficientFundsError signals a withdrawal reservation exceeding the available balance.
type InsufficientFundsError struct {
	Requested int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: requested %d, available %d", e.Requested, e.Available)
}

// GatewayError signals a failed or timed-out gateway initiation call.
// Retryable at the call site.
type GatewayError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %s error [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway %s error: %s", e.Provider, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// AuthenticityError signals an invalid webhook signature. Rejected without
// mutation; the provider redelivers, so there is no internal retry.
type AuthenticityError struct {
	Reason string
}

func (e *AuthenticityError) Error() string {
	return "webhook authenticity check failed: " + e.Reason
}

// InvariantViolation signals a detected ledger imbalance. Fatal: ledger
// writes halt until manual reconciliation, never auto-corrected.
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Message
}
