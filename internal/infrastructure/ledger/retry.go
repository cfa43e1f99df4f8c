package ledger

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/retry"
)

// RetryClient decorates a LedgerClient with the retry policy. Not-found and
// malformed-signature answers are final and pass through untouched.
type RetryClient struct {
	inner  application.LedgerClient
	policy retry.Policy
	logger *slog.Logger
}

func NewRetryClient(inner application.LedgerClient, policy retry.Policy, logger *slog.Logger) *RetryClient {
	return &RetryClient{
		inner:  inner,
		policy: policy,
		logger: logger,
	}
}

func (r *RetryClient) FetchTransaction(ctx context.Context, signature string) (*domain.LedgerTransaction, error) {
	return retry.Do(
		ctx,
		r.policy,
		func(ctx context.Context) (*domain.LedgerTransaction, error) {
			return r.inner.FetchTransaction(ctx, signature)
		},
		retry.WithRetryable(application.IsRetryable),
		retry.WithHook(func(attempt int, err error) {
			if !application.IsRetryable(err) {
				return
			}
			attrs := []any{
				"signature", signature,
				"attempt", attempt,
				"max_attempts", r.policy.MaxRetries+1,
				"category", application.CategorizeError(err),
				"error", err,
			}
			if rpcErr, ok := IsRPCError(err); ok {
				attrs = append(attrs, "rpc_op", rpcErr.Op)
			}
			r.logger.Warn("ledger fetch attempt failed", attrs...)
		}),
	)
}
