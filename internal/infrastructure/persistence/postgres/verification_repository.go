package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

// VerificationRepository is the proof log: one row per decision, and at
// most one accepted row per signature.
type VerificationRepository struct {
	db *DB
}

func NewVerificationRepository(db *DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Record(ctx context.Context, result *domain.VerificationResult) error {
	query := `
		INSERT INTO verification_log (
			id, signature, valid, reason, detail, payer,
			amount_lamports, required_lamports, block_time, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	m, err := toRecordModel(result)
	if err != nil {
		return err
	}

	_, err = r.db.Pool.Exec(ctx, query,
		m.ID,
		m.Signature,
		m.Valid,
		m.Reason,
		m.Detail,
		m.Payer,
		m.AmountLamports,
		m.RequiredLamports,
		m.BlockTime,
		m.CheckedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("signature %s already has an accepted record: %w", m.Signature, err)
		}
		return fmt.Errorf("failed to record verification: %w", err)
	}
	return nil
}

func (r *VerificationRepository) FindAccepted(ctx context.Context, signature string) (*domain.VerificationResult, error) {
	query := `
		SELECT id, signature, valid, reason, detail, payer,
		       amount_lamports, required_lamports, block_time, checked_at
		FROM verification_log
		WHERE signature = $1 AND valid
	`

	result, err := scanRecord(r.db.Pool.QueryRow(ctx, query, signature))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewVerificationNotFoundError(signature)
		}
		return nil, fmt.Errorf("failed to find accepted verification: %w", err)
	}
	return result, nil
}

func (r *VerificationRepository) FindBySignature(ctx context.Context, signature string, limit int) ([]*domain.VerificationResult, error) {
	query := `
		SELECT id, signature, valid, reason, detail, payer,
		       amount_lamports, required_lamports, block_time, checked_at
		FROM verification_log
		WHERE signature = $1
		ORDER BY checked_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, signature, limit)
	if err != nil {
		return nil, fmt.Errorf("query verifications by signature: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.VerificationResult, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan verifications: %w", err)
	}
	return results, nil
}

func scanRecord(row pgx.Row) (*domain.VerificationResult, error) {
	var m VerificationRecordModel
	err := row.Scan(
		&m.ID, &m.Signature, &m.Valid, &m.Reason, &m.Detail, &m.Payer,
		&m.AmountLamports, &m.RequiredLamports, &m.BlockTime, &m.CheckedAt,
	)
	if err != nil {
		return nil, err
	}
	return toDomainResult(m), nil
}
