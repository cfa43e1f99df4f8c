package handlers

import (
	"errors"
	"net/http"

	"github.com/DanielPopoola/solpay-gateway/internal/api"
	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest"
)

// AccessService handles POST /api/v1/services/{service}/access. It only runs
// behind middleware.RequirePayment, which leaves the accepted verification
// in the request context.
func (h *Handlers) AccessService(w http.ResponseWriter, r *http.Request) {
	result, ok := rest.VerificationFromContext(r.Context())
	if !ok || !result.Valid {
		rest.WriteError(w, application.NewInternalError(errors.New("access handler reached without a verified payment")), h.logger)
		return
	}

	receipt := api.AccessReceipt{
		Service:   r.PathValue("service"),
		Signature: result.Signature,
		Payer:     result.Payer,
		Price:     domain.FromLamports(result.RequiredLamports).String(),
		Paid:      result.Amount().String(),
		GrantedAt: result.CheckedAt,
		RequestID: rest.RequestIDFromContext(r.Context()),
	}

	h.logger.Info("paid service access granted",
		"service", receipt.Service,
		"signature", receipt.Signature,
		"payer", receipt.Payer,
		"request_id", receipt.RequestID,
	)

	rest.WriteJSON(w, http.StatusOK, receipt)
}
