package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DanielPopoola/solpay-gateway/internal/api"
	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest"
)

// VerifyPayment handles POST /api/v1/verifications.
func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	amount, err := domain.ParseAmount(req.RequiredAmount)
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	result, err := h.verifier.VerifyPayment(r.Context(), req.Signature, amount)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	if !result.Valid {
		rest.WriteRejection(w, result, h.exposeReasons)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToAPIVerification(result, h.exposeReasons))
}
