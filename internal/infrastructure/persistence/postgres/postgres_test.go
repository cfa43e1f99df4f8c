package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/solpay-gateway/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PostgresStoreTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDatabase
	replay  *postgres.ReplayStore
	limiter *postgres.RateLimitStore
	repo    *postgres.VerificationRepository
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreTestSuite))
}

func (suite *PostgresStoreTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.replay = postgres.NewReplayStore(suite.testDB.DB, 2*time.Minute, 2)
	suite.limiter = postgres.NewRateLimitStore(suite.testDB.DB, time.Minute, 3)
	suite.repo = postgres.NewVerificationRepository(suite.testDB.DB)
}

func (suite *PostgresStoreTestSuite) TearDownSuite() {
	if suite.testDB != nil {
		suite.testDB.Cleanup(suite.T())
	}
}

func (suite *PostgresStoreTestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
}

// ============================================================================
// REPLAY STORE
// ============================================================================

func (suite *PostgresStoreTestSuite) Test_Replay_ReserveCommitRelease() {
	t := suite.T()
	ctx := context.Background()

	ok, err := suite.replay.Reserve(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = suite.replay.Reserve(ctx, "sig-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, suite.replay.Release(ctx, "sig-1"))
	ok, err = suite.replay.Reserve(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, suite.replay.Commit(ctx, "sig-1"))
	require.NoError(t, suite.replay.Release(ctx, "sig-1"))

	seen, err := suite.replay.Seen(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, seen, "committed signature survives release")

	ok, err = suite.replay.Reserve(ctx, "sig-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func (suite *PostgresStoreTestSuite) Test_Replay_CommitRequiresPendingRow() {
	t := suite.T()
	ctx := context.Background()

	assert.ErrorIs(t, suite.replay.Commit(ctx, "never-reserved"), domain.ErrReservationLost)
	seen, err := suite.replay.Seen(ctx, "never-reserved")
	require.NoError(t, err)
	assert.False(t, seen, "failed commit must not insert a row")

	_, err = suite.replay.Reserve(ctx, "sig-1")
	require.NoError(t, err)
	require.NoError(t, suite.replay.Commit(ctx, "sig-1"))
	assert.ErrorIs(t, suite.replay.Commit(ctx, "sig-1"), domain.ErrReservationLost)

	// Reservation pruned as abandoned while its holder was still working.
	_, err = suite.replay.Reserve(ctx, "slow")
	require.NoError(t, err)
	_, err = suite.replay.Prune(ctx, time.Now().Add(-24*time.Hour), time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.ErrorIs(t, suite.replay.Commit(ctx, "slow"), domain.ErrReservationLost)

	seen, err = suite.replay.Seen(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, seen, "committed rows outlive the pending cutoff")
}

func (suite *PostgresStoreTestSuite) Test_Replay_ConcurrentReserve() {
	t := suite.T()
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := suite.replay.Reserve(ctx, "contested")
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func (suite *PostgresStoreTestSuite) Test_Replay_StalePendingCanBeTakenOver() {
	t := suite.T()
	ctx := context.Background()

	_, err := suite.testDB.DB.Pool.Exec(ctx,
		`INSERT INTO used_signatures (signature, state, reserved_at) VALUES ($1, 'PENDING', $2)`,
		"abandoned", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	ok, err := suite.replay.Reserve(ctx, "abandoned")
	require.NoError(t, err)
	assert.True(t, ok)
}

func (suite *PostgresStoreTestSuite) Test_Replay_Prune() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now()

	for _, sig := range []string{"old-1", "old-2", "old-3"} {
		_, err := suite.testDB.DB.Pool.Exec(ctx,
			`INSERT INTO used_signatures (signature, state, reserved_at, committed_at) VALUES ($1, 'USED', $2, $2)`,
			sig, now.Add(-48*time.Hour))
		require.NoError(t, err)
	}
	_, err := suite.testDB.DB.Pool.Exec(ctx,
		`INSERT INTO used_signatures (signature, state, reserved_at) VALUES ($1, 'PENDING', $2)`,
		"stale", now.Add(-time.Hour))
	require.NoError(t, err)

	_, err = suite.replay.Reserve(ctx, "fresh")
	require.NoError(t, err)
	require.NoError(t, suite.replay.Commit(ctx, "fresh"))

	// Batch size is 2, so this takes several rounds
	removed, err := suite.replay.Prune(ctx, now.Add(-24*time.Hour), now.Add(-2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)

	seen, err := suite.replay.Seen(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = suite.replay.Seen(ctx, "old-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func (suite *PostgresStoreTestSuite) Test_Replay_Reset() {
	t := suite.T()
	ctx := context.Background()

	_, err := suite.replay.Reserve(ctx, "sig-1")
	require.NoError(t, err)
	require.NoError(t, suite.replay.Reset(ctx))

	seen, err := suite.replay.Seen(ctx, "sig-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

// ============================================================================
// RATE LIMIT STORE
// ============================================================================

func (suite *PostgresStoreTestSuite) Test_RateLimit_CapsWindow() {
	t := suite.T()
	ctx := context.Background()

	for i := range 3 {
		d, err := suite.limiter.Hit(ctx, "payer")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "hit %d", i+1)
		assert.Equal(t, 2-i, d.Remaining)
	}

	for range 2 {
		d, err := suite.limiter.Hit(ctx, "payer")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 0, d.Remaining)
	}

	d, err := suite.limiter.Hit(ctx, "other-payer")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func (suite *PostgresStoreTestSuite) Test_RateLimit_ExpiredWindowRestarts() {
	t := suite.T()
	ctx := context.Background()

	_, err := suite.testDB.DB.Pool.Exec(ctx,
		`INSERT INTO rate_limit_windows (key, window_start, count) VALUES ($1, $2, 4)`,
		"payer", time.Now().Add(-2*time.Minute))
	require.NoError(t, err)

	d, err := suite.limiter.Hit(ctx, "payer")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
	assert.WithinDuration(t, time.Now().Add(time.Minute), d.ResetAt, 5*time.Second)
}

func (suite *PostgresStoreTestSuite) Test_RateLimit_ConcurrentHits() {
	t := suite.T()
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := suite.limiter.Hit(ctx, "busy-payer")
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), allowed.Load())
}

func (suite *PostgresStoreTestSuite) Test_RateLimit_Reset() {
	t := suite.T()
	ctx := context.Background()

	for range 4 {
		_, err := suite.limiter.Hit(ctx, "payer")
		require.NoError(t, err)
	}
	require.NoError(t, suite.limiter.Reset(ctx))

	d, err := suite.limiter.Hit(ctx, "payer")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

// ============================================================================
// VERIFICATION LOG
// ============================================================================

func (suite *PostgresStoreTestSuite) Test_Log_RecordAndFind() {
	t := suite.T()
	ctx := context.Background()
	blockTime := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)

	rejected := &domain.VerificationResult{
		Signature:        "sig-1",
		Reason:           domain.ReasonRateLimitExceeded,
		Detail:           "window resets soon",
		Payer:            "payer",
		RequiredLamports: 50_000_000,
		Timestamp:        &blockTime,
		CheckedAt:        time.Now().Add(-time.Second).UTC(),
	}
	accepted := &domain.VerificationResult{
		Signature:        "sig-1",
		Valid:            true,
		Payer:            "payer",
		AmountLamports:   50_000_000,
		RequiredLamports: 50_000_000,
		Timestamp:        &blockTime,
		CheckedAt:        time.Now().UTC(),
	}
	require.NoError(t, suite.repo.Record(ctx, rejected))
	require.NoError(t, suite.repo.Record(ctx, accepted))

	got, err := suite.repo.FindAccepted(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Equal(t, "payer", got.Payer)
	assert.Equal(t, uint64(50_000_000), got.AmountLamports)
	require.NotNil(t, got.Timestamp)
	assert.True(t, blockTime.Equal(*got.Timestamp))

	history, err := suite.repo.FindBySignature(ctx, "sig-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Valid, "newest first")
	assert.Equal(t, domain.ReasonRateLimitExceeded, history[1].Reason)
	assert.Equal(t, "window resets soon", history[1].Detail)
}

func (suite *PostgresStoreTestSuite) Test_Log_SecondAcceptanceIsRefused() {
	t := suite.T()
	ctx := context.Background()

	result := &domain.VerificationResult{Signature: "sig-1", Valid: true, RequiredLamports: 1, AmountLamports: 1, CheckedAt: time.Now()}
	require.NoError(t, suite.repo.Record(ctx, result))

	err := suite.repo.Record(ctx, result)
	require.Error(t, err)
	assert.True(t, postgres.IsUniqueViolation(err))
}

func (suite *PostgresStoreTestSuite) Test_Log_FindAcceptedNotFound() {
	_, err := suite.repo.FindAccepted(context.Background(), "missing")
	suite.ErrorIs(err, domain.ErrVerificationNotFound)
}
