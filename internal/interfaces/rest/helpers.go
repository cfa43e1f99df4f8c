package rest

import (
	"context"

	"github.com/DanielPopoola/solpay-gateway/internal/api"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentVerifier is the inbound port every paid route goes through.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, signature string, requiredAmount decimal.Decimal) (*domain.VerificationResult, error)
}

// VerificationQuerier reads the proof log.
type VerificationQuerier interface {
	FindAccepted(ctx context.Context, signature string) (*domain.VerificationResult, error)
	History(ctx context.Context, signature string, limit int) ([]*domain.VerificationResult, error)
}

type contextKey int

const (
	verificationKey contextKey = iota
	requestIDKey
)

func WithVerification(ctx context.Context, result *domain.VerificationResult) context.Context {
	return context.WithValue(ctx, verificationKey, result)
}

func VerificationFromContext(ctx context.Context) (*domain.VerificationResult, bool) {
	result, ok := ctx.Value(verificationKey).(*domain.VerificationResult)
	return result, ok
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ToAPIVerification hides the reason unless exposeReasons is set.
func ToAPIVerification(r *domain.VerificationResult, exposeReasons bool) api.Verification {
	v := api.Verification{
		Signature:      r.Signature,
		Valid:          r.Valid,
		Payer:          r.Payer,
		RequiredAmount: domain.FromLamports(r.RequiredLamports).String(),
		BlockTime:      r.Timestamp,
		CheckedAt:      r.CheckedAt,
	}
	if r.AmountLamports > 0 {
		v.Amount = r.Amount().String()
	}
	if exposeReasons {
		v.Reason = string(r.Reason)
	}
	return v
}
