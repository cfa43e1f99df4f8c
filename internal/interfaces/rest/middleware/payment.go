package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

const PaymentSignatureHeader = "X-Payment-Signature"

// RequirePayment gates a paid route. The service name comes from the
// {service} path value and its price from prices. The wrapped handler only
// runs for an accepted payment, which it finds in the request context.
func RequirePayment(
	verifier rest.PaymentVerifier,
	prices map[string]decimal.Decimal,
	exposeReasons bool,
	logger *slog.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			service := r.PathValue("service")
			price, ok := prices[service]
			if !ok {
				rest.WriteError(w, application.NewUnknownServiceError(service), logger)
				return
			}

			signature := strings.TrimSpace(r.Header.Get(PaymentSignatureHeader))
			if signature == "" {
				w.Header().Set("X-Payment-Amount", price.String())
				rest.WriteError(w, application.NewPaymentRequiredError(), logger)
				return
			}

			result, err := verifier.VerifyPayment(r.Context(), signature, price)
			if err != nil {
				rest.WriteError(w, err, logger)
				return
			}

			if !result.Valid {
				logger.Info("paid service access denied",
					"service", service,
					"signature", signature,
					"reason", result.Reason,
					"request_id", rest.RequestIDFromContext(r.Context()),
				)
				w.Header().Set("X-Payment-Amount", price.String())
				rest.WriteRejection(w, result, exposeReasons)
				return
			}

			next.ServeHTTP(w, r.WithContext(rest.WithVerification(r.Context(), result)))
		})
	}
}
