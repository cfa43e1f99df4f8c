package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ReplayStore keeps spent signatures in used_signatures so every gateway
// instance sharing the database sees the same replay state.
type ReplayStore struct {
	db         *DB
	pendingTTL time.Duration
	batchSize  int
	now        func() time.Time
}

func NewReplayStore(db *DB, pendingTTL time.Duration, batchSize int) *ReplayStore {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &ReplayStore{
		db:         db,
		pendingTTL: pendingTTL,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// Reserve inserts a PENDING row. A PENDING row older than pendingTTL was left
// behind by a crashed instance and may be taken over.
func (s *ReplayStore) Reserve(ctx context.Context, signature string) (bool, error) {
	query := `
		INSERT INTO used_signatures (signature, state, reserved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (signature) DO UPDATE
			SET reserved_at = EXCLUDED.reserved_at
			WHERE used_signatures.state = $2
			  AND used_signatures.reserved_at < $4
		RETURNING signature
	`

	now := s.now()
	var reserved string
	err := s.db.Pool.QueryRow(ctx, query, signature, signaturePending, now, now.Add(-s.pendingTTL)).Scan(&reserved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to reserve signature: %w", err)
	}
	return true, nil
}

// Commit moves a PENDING row to USED. A missing or already USED row means the
// reservation was pruned or taken over, and the signature must not be
// accepted a second time.
func (s *ReplayStore) Commit(ctx context.Context, signature string) error {
	query := `
		UPDATE used_signatures
		SET state = $2, committed_at = $3
		WHERE signature = $1 AND state = $4
	`

	tag, err := s.db.Pool.Exec(ctx, query, signature, signatureUsed, s.now(), signaturePending)
	if err != nil {
		return fmt.Errorf("failed to commit signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewReservationLostError(signature)
	}
	return nil
}

// Release only removes PENDING rows; a committed signature stays spent.
func (s *ReplayStore) Release(ctx context.Context, signature string) error {
	query := `DELETE FROM used_signatures WHERE signature = $1 AND state = $2`

	_, err := s.db.Pool.Exec(ctx, query, signature, signaturePending)
	if err != nil {
		return fmt.Errorf("failed to release signature: %w", err)
	}
	return nil
}

func (s *ReplayStore) Seen(ctx context.Context, signature string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM used_signatures WHERE signature = $1)`

	var exists bool
	if err := s.db.Pool.QueryRow(ctx, query, signature).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check signature: %w", err)
	}
	return exists, nil
}

func (s *ReplayStore) Reset(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, `TRUNCATE TABLE used_signatures`); err != nil {
		return fmt.Errorf("failed to reset replay store: %w", err)
	}
	return nil
}

// Prune deletes, in batches, USED rows committed before committedBefore and
// PENDING rows reserved before pendingBefore.
func (s *ReplayStore) Prune(ctx context.Context, committedBefore, pendingBefore time.Time) (int64, error) {
	query := `
		DELETE FROM used_signatures
		WHERE signature IN (
			SELECT signature FROM used_signatures
			WHERE (state = $1 AND committed_at < $2)
			   OR (state = $3 AND reserved_at < $4)
			LIMIT $5
		)
	`

	var total int64
	for {
		tag, err := s.db.Pool.Exec(ctx, query, signatureUsed, committedBefore, signaturePending, pendingBefore, s.batchSize)
		if err != nil {
			return total, fmt.Errorf("failed to prune signatures: %w", err)
		}
		total += tag.RowsAffected()
		if tag.RowsAffected() < int64(s.batchSize) {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}
