package handlers

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	verifier      rest.PaymentVerifier
	querier       rest.VerificationQuerier
	checks        map[string]HealthCheck
	exposeReasons bool
	logger        *slog.Logger
}

// NewHandlers wires the HTTP handlers. querier may be nil when the
// verification log is disabled.
func NewHandlers(
	verifier rest.PaymentVerifier,
	querier rest.VerificationQuerier,
	checks map[string]HealthCheck,
	exposeReasons bool,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		verifier:      verifier,
		querier:       querier,
		checks:        checks,
		exposeReasons: exposeReasons,
		logger:        logger,
	}
}
