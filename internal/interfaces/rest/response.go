package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/solpay-gateway/internal/api"
	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
)

// WriteJSON writes data inside the success envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Envelope{Success: true, Data: data})
}

// WriteError maps application errors to HTTP responses. Internal errors are
// logged and replaced by a generic message.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode := application.ToHTTPStatus(err)
	errorCode := application.ToErrorCode(err)

	message := err.Error()
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request failed", "code", errorCode, "error", err)
		message = "An internal error occurred"
	}

	writeErrorBody(w, statusCode, api.ErrorDetail{Code: errorCode, Message: message})
}

// WriteRejection answers a payment that did not verify. Unless
// exposeReasons is set the body only says the payment was not accepted;
// the precise reason is for the logs.
func WriteRejection(w http.ResponseWriter, result *domain.VerificationResult, exposeReasons bool) {
	detail := api.ErrorDetail{
		Code:    application.PublicRejectionCode(result.Reason),
		Message: rejectionMessage(result.Reason),
	}
	if exposeReasons {
		detail.Details = map[string]string{"reason": string(result.Reason)}
		if result.Detail != "" && result.Reason != domain.ReasonInternalError {
			detail.Details["detail"] = result.Detail
		}
	}

	writeErrorBody(w, application.RejectionHTTPStatus(result.Reason), detail)
}

func rejectionMessage(reason domain.RejectionReason) string {
	switch reason {
	case domain.ReasonRateLimitExceeded:
		return "Too many payment verifications, try again later"
	case domain.ReasonInternalError:
		return "Payment could not be verified right now, try again later"
	default:
		return "Payment not accepted"
	}
}

func writeErrorBody(w http.ResponseWriter, status int, detail api.ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Success: false, Error: detail})
}
