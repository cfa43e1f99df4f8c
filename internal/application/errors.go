package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodePaymentRequired    = "PAYMENT_REQUIRED"
	ErrCodePaymentRejected    = "PAYMENT_REJECTED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeUnknownService     = "UNKNOWN_SERVICE"
	ErrCodeTimeout            = "TIMEOUT"
)

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewNotFoundError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    "Resource not found",
		HTTPStatus: http.StatusNotFound,
		Err:        err,
	}
}

func NewPaymentRequiredError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodePaymentRequired,
		Message:    "Payment required: send the transaction signature in the X-Payment-Signature header",
		HTTPStatus: http.StatusPaymentRequired,
	}
}

func NewUnknownServiceError(service string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeUnknownService,
		Message:    fmt.Sprintf("service %q is not offered", service),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewServiceUnavailableError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeServiceUnavailable,
		Message:    "Feature not available in this deployment",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
