package application_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
)

type retryableErr struct{ retry bool }

func (e retryableErr) Error() string     { return "rpc failure" }
func (e retryableErr) IsRetryable() bool { return e.retry }

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want application.ErrorCategory
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded), want: application.CategoryTransient},
		{name: "canceled", err: context.Canceled, want: application.CategoryPermanent},
		{name: "not found", err: domain.NewTransactionNotFoundError("sig"), want: application.CategoryClientError},
		{name: "bad signature", err: domain.NewInvalidSignatureError("x", nil), want: application.CategoryClientError},
		{name: "invalid input", err: application.NewInvalidInputError(errors.New("bad")), want: application.CategoryClientError},
		{name: "internal", err: application.NewInternalError(errors.New("boom")), want: application.CategoryInfrastructure},
		{name: "retryable rpc", err: retryableErr{retry: true}, want: application.CategoryTransient},
		{name: "non retryable rpc", err: retryableErr{retry: false}, want: application.CategoryPermanent},
		{name: "unknown", err: errors.New("connection reset"), want: application.CategoryTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, application.CategorizeError(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, application.IsRetryable(errors.New("connection reset")))
	assert.True(t, application.IsRetryable(context.DeadlineExceeded))
	assert.False(t, application.IsRetryable(domain.ErrTransactionNotFound))
	assert.False(t, application.IsRetryable(context.Canceled))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, application.ToHTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, application.ToHTTPStatus(domain.NewMissingRequiredFieldError("signature")))
	assert.Equal(t, http.StatusNotFound, application.ToHTTPStatus(domain.NewVerificationNotFoundError("sig")))
	assert.Equal(t, http.StatusPaymentRequired, application.ToHTTPStatus(application.NewPaymentRequiredError()))
	assert.Equal(t, http.StatusInternalServerError, application.ToHTTPStatus(errors.New("boom")))
}

func TestToErrorCode(t *testing.T) {
	assert.Equal(t, application.ErrCodeInvalidInput, application.ToErrorCode(application.NewInvalidInputError(nil)))
	assert.Equal(t, domain.ErrCodeInvalidAmount, application.ToErrorCode(domain.NewInvalidAmountError("0", "must be positive")))
	assert.Equal(t, application.ErrCodeTimeout, application.ToErrorCode(context.DeadlineExceeded))
	assert.Equal(t, application.ErrCodeInternal, application.ToErrorCode(errors.New("boom")))
}

func TestRejectionMapping(t *testing.T) {
	tests := []struct {
		reason domain.RejectionReason
		status int
		code   string
	}{
		{domain.ReasonAlreadyUsed, http.StatusPaymentRequired, application.ErrCodePaymentRejected},
		{domain.ReasonTooOld, http.StatusPaymentRequired, application.ErrCodePaymentRejected},
		{domain.ReasonWrongRecipient, http.StatusPaymentRequired, application.ErrCodePaymentRejected},
		{domain.ReasonRateLimitExceeded, http.StatusTooManyRequests, application.ErrCodeRateLimited},
		{domain.ReasonInternalError, http.StatusServiceUnavailable, application.ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			assert.Equal(t, tt.status, application.RejectionHTTPStatus(tt.reason))
			assert.Equal(t, tt.code, application.PublicRejectionCode(tt.reason))
		})
	}
}
