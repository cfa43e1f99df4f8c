package handlers

import "net/http"

// RegisterRoutes mounts every endpoint. requirePayment wraps the paid routes.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux, requirePayment func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("POST /api/v1/verifications", h.VerifyPayment)
	mux.HandleFunc("GET /api/v1/verifications/{signature}", h.GetVerification)
	mux.HandleFunc("GET /api/v1/verifications/{signature}/history", h.GetVerificationHistory)
	mux.Handle("POST /api/v1/services/{service}/access", requirePayment(http.HandlerFunc(h.AccessService)))
}
