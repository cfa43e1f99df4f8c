package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/DanielPopoola/solpay-gateway/internal/api"
	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest"
)

// GetVerification handles GET /api/v1/verifications/{signature}.
func (h *Handlers) GetVerification(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		rest.WriteError(w, application.NewServiceUnavailableError(errors.New("verification log is disabled")), h.logger)
		return
	}

	result, err := h.querier.FindAccepted(r.Context(), r.PathValue("signature"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToAPIVerification(result, h.exposeReasons))
}

// GetVerificationHistory handles GET /api/v1/verifications/{signature}/history.
func (h *Handlers) GetVerificationHistory(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		rest.WriteError(w, application.NewServiceUnavailableError(errors.New("verification log is disabled")), h.logger)
		return
	}

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
			return
		}
		limit = n
	}

	results, err := h.querier.History(r.Context(), r.PathValue("signature"), limit)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	history := make([]api.Verification, 0, len(results))
	for _, result := range results {
		history = append(history, rest.ToAPIVerification(result, h.exposeReasons))
	}
	rest.WriteJSON(w, http.StatusOK, history)
}
