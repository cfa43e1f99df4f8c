package postgres

import (
	"fmt"
	"math"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/google/uuid"
)

// toDomainResult maps a verification_log row to the domain result.
func toDomainResult(m VerificationRecordModel) *domain.VerificationResult {
	r := &domain.VerificationResult{
		Signature:        m.Signature,
		Valid:            m.Valid,
		AmountLamports:   uint64(m.AmountLamports),   //nolint:gosec // non-negative by CHECK constraint
		RequiredLamports: uint64(m.RequiredLamports), //nolint:gosec // non-negative by CHECK constraint
		Timestamp:        m.BlockTime,
		CheckedAt:        m.CheckedAt,
	}
	if m.Reason != nil {
		r.Reason = domain.RejectionReason(*m.Reason)
	}
	if m.Detail != nil {
		r.Detail = *m.Detail
	}
	if m.Payer != nil {
		r.Payer = *m.Payer
	}
	return r
}

// toRecordModel maps a domain result to a new verification_log row.
func toRecordModel(r *domain.VerificationResult) (VerificationRecordModel, error) {
	amount, err := toBigint(r.AmountLamports)
	if err != nil {
		return VerificationRecordModel{}, err
	}
	required, err := toBigint(r.RequiredLamports)
	if err != nil {
		return VerificationRecordModel{}, err
	}

	return VerificationRecordModel{
		ID:               uuid.New().String(),
		Signature:        r.Signature,
		Valid:            r.Valid,
		Reason:           optional(string(r.Reason)),
		Detail:           optional(r.Detail),
		Payer:            optional(r.Payer),
		AmountLamports:   amount,
		RequiredLamports: required,
		BlockTime:        r.Timestamp,
		CheckedAt:        r.CheckedAt,
	}, nil
}

func toBigint(lamports uint64) (int64, error) {
	if lamports > math.MaxInt64 {
		return 0, fmt.Errorf("lamport amount %d does not fit in BIGINT", lamports)
	}
	return int64(lamports), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
