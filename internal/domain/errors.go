package domain

import "fmt"

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so constructors
// and the sentinel values below compare equal under errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable interface for errors that can be retried
type Retryable interface {
	IsRetryable() bool
}

const (
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidSignature     = "INVALID_SIGNATURE"
	ErrCodeInvalidAccount       = "INVALID_ACCOUNT"
	ErrCodeTransactionNotFound  = "TRANSACTION_NOT_FOUND"
	ErrCodeVerificationNotFound = "VERIFICATION_NOT_FOUND"
	ErrCodeReservationLost      = "RESERVATION_LOST"
)

var (
	ErrMissingRequiredField = &DomainError{Code: ErrCodeMissingRequiredField, Message: "missing required field"}
	ErrInvalidAmount        = &DomainError{Code: ErrCodeInvalidAmount, Message: "invalid amount"}
	ErrInvalidSignature     = &DomainError{Code: ErrCodeInvalidSignature, Message: "invalid transaction signature"}
	ErrInvalidAccount       = &DomainError{Code: ErrCodeInvalidAccount, Message: "invalid account address"}

	// ErrTransactionNotFound is returned by ledger clients when the ledger has
	// no record of the signature at the requested commitment level.
	ErrTransactionNotFound = &DomainError{Code: ErrCodeTransactionNotFound, Message: "transaction not found on ledger"}

	ErrVerificationNotFound = &DomainError{Code: ErrCodeVerificationNotFound, Message: "verification record not found"}

	// ErrReservationLost is returned by replay stores when Commit no longer
	// finds a pending reservation for the signature.
	ErrReservationLost = &DomainError{Code: ErrCodeReservationLost, Message: "signature reservation lost before commit"}
)

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidAmountError(amount string, reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %s: %s", amount, reason),
	}
}

func NewInvalidSignatureError(signature string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidSignature,
		Message: fmt.Sprintf("invalid transaction signature %q", signature),
		Err:     err,
	}
}

func NewInvalidAccountError(account string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAccount,
		Message: fmt.Sprintf("invalid account address %q", account),
		Err:     err,
	}
}

func NewTransactionNotFoundError(signature string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTransactionNotFound,
		Message: fmt.Sprintf("transaction %s not found on ledger", signature),
	}
}

func NewVerificationNotFoundError(signature string) *DomainError {
	return &DomainError{
		Code:    ErrCodeVerificationNotFound,
		Message: fmt.Sprintf("no accepted verification for %s", signature),
	}
}

func NewReservationLostError(signature string) *DomainError {
	return &DomainError{
		Code:    ErrCodeReservationLost,
		Message: fmt.Sprintf("reservation for %s lost before commit", signature),
	}
}
