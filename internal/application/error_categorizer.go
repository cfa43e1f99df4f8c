package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
)

// ErrorCategory represents the nature of an error for retry logic
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines error category for retry and logging purposes
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	// Caller gave up; retrying on its behalf is pointless.
	if errors.Is(err, context.Canceled) {
		return CategoryPermanent
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTransient
	}

	// The ledger answered: the record does not exist at this commitment.
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return CategoryClientError
	}

	if errors.Is(err, domain.ErrInvalidSignature) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrInvalidAccount) ||
		errors.Is(err, domain.ErrMissingRequiredField) {
		return CategoryClientError
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput, ErrCodeNotFound, ErrCodeUnknownService:
			return CategoryClientError
		case ErrCodeTimeout:
			return CategoryTransient
		default:
			return CategoryInfrastructure
		}
	}

	var retryable domain.Retryable
	if errors.As(err, &retryable) {
		if retryable.IsRetryable() {
			return CategoryTransient
		}
		return CategoryPermanent
	}

	// Default: Transient (network errors from the RPC provider land here)
	return CategoryTransient
}

// IsRetryable returns true if the error category suggests retry
func IsRetryable(err error) bool {
	category := CategorizeError(err)
	return category == CategoryTransient || category == CategoryInfrastructure
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrMissingRequiredField):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrVerificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}

	return ErrCodeInternal
}

// RejectionHTTPStatus maps a rejection reason to the status a paid service
// answers with. Everything that is the payer's fault is 402.
func RejectionHTTPStatus(reason domain.RejectionReason) int {
	switch reason {
	case domain.ReasonRateLimitExceeded:
		return http.StatusTooManyRequests
	case domain.ReasonInternalError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusPaymentRequired
	}
}

// PublicRejectionCode is the code shown to end users. Most reasons collapse
// into PAYMENT_REJECTED so the endpoint cannot be used to probe which check
// a forged payment failed.
func PublicRejectionCode(reason domain.RejectionReason) string {
	switch reason {
	case domain.ReasonRateLimitExceeded:
		return ErrCodeRateLimited
	case domain.ReasonInternalError:
		return ErrCodeServiceUnavailable
	default:
		return ErrCodePaymentRejected
	}
}
