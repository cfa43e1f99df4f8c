package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/api"
	"github.com/DanielPopoola/solpay-gateway/internal/application"
)

// Timeout bounds the whole request, ledger retries included. Verification
// with the default retry policy can take up to ~47s, so the timeout should
// sit above that.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(api.ErrorResponse{
		Success: false,
		Error: api.ErrorDetail{
			Code:    application.ErrCodeTimeout,
			Message: "Request timeout",
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
