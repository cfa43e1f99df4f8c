package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
)

// LedgerClient is the port for the remote ledger RPC provider.
// Implementations return domain.ErrTransactionNotFound when the ledger has
// no record of the signature.
type LedgerClient interface {
	FetchTransaction(ctx context.Context, signature string) (*domain.LedgerTransaction, error)
}

// ReplayStore tracks consumed transaction signatures.
//
// Reserve is an atomic insert-if-absent: exactly one concurrent caller gets
// true for a given signature. A reservation is either committed (the
// signature is spent for good) or released (the signature may be tried
// again). Commit only succeeds on a pending reservation and returns
// domain.ErrReservationLost otherwise.
type ReplayStore interface {
	Reserve(ctx context.Context, signature string) (bool, error)
	Commit(ctx context.Context, signature string) error
	Release(ctx context.Context, signature string) error
	Seen(ctx context.Context, signature string) (bool, error)
	Reset(ctx context.Context) error
}

// ReplayPruner is implemented by replay stores that need explicit cleanup.
type ReplayPruner interface {
	Prune(ctx context.Context, committedBefore, pendingBefore time.Time) (int64, error)
}

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	Hit(ctx context.Context, key string) (domain.RateLimitDecision, error)
	Reset(ctx context.Context) error
}

// VerificationRecorder persists verification decisions as proof records.
type VerificationRecorder interface {
	Record(ctx context.Context, result *domain.VerificationResult) error
}

// VerificationFinder looks up persisted proof records.
type VerificationFinder interface {
	FindAccepted(ctx context.Context, signature string) (*domain.VerificationResult, error)
	FindBySignature(ctx context.Context, signature string, limit int) ([]*domain.VerificationResult, error)
}
