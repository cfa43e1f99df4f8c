package ledger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/ledger"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/retry"
	"github.com/DanielPopoola/solpay-gateway/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRetryClient(inner *mocks.MockLedgerClient) *ledger.RetryClient {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ledger.NewRetryClient(inner, retry.Policy{
		MaxRetries:     3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       8 * time.Millisecond,
		AttemptTimeout: time.Second,
	}, logger)
}

func TestRetryClient_FetchTransaction_Success(t *testing.T) {
	mockClient := mocks.NewMockLedgerClient(t)
	client := newRetryClient(mockClient)

	expected := &domain.LedgerTransaction{Signature: "sig-1", AccountKeys: []string{"payer"}}

	mockClient.EXPECT().
		FetchTransaction(mock.Anything, "sig-1").
		Return(expected, nil).
		Once()

	tx, err := client.FetchTransaction(context.Background(), "sig-1")

	require.NoError(t, err)
	assert.Equal(t, expected, tx)
}

func TestRetryClient_FetchTransaction_RetriesTransientFailures(t *testing.T) {
	mockClient := mocks.NewMockLedgerClient(t)
	client := newRetryClient(mockClient)

	expected := &domain.LedgerTransaction{Signature: "sig-1"}

	// First two calls fail at the transport level
	mockClient.EXPECT().
		FetchTransaction(mock.Anything, "sig-1").
		Return(nil, errors.New("503 service unavailable")).
		Twice()

	// Third call succeeds
	mockClient.EXPECT().
		FetchTransaction(mock.Anything, "sig-1").
		Return(expected, nil).
		Once()

	tx, err := client.FetchTransaction(context.Background(), "sig-1")

	require.NoError(t, err)
	assert.Equal(t, expected, tx)
}

func TestRetryClient_FetchTransaction_DoesNotRetryNotFound(t *testing.T) {
	mockClient := mocks.NewMockLedgerClient(t)
	client := newRetryClient(mockClient)

	// Should only be called once (absence is an answer, not a failure)
	mockClient.EXPECT().
		FetchTransaction(mock.Anything, "sig-1").
		Return(nil, domain.NewTransactionNotFoundError("sig-1")).
		Once()

	tx, err := client.FetchTransaction(context.Background(), "sig-1")

	assert.Nil(t, tx)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestRetryClient_FetchTransaction_ExhaustsRetries(t *testing.T) {
	mockClient := mocks.NewMockLedgerClient(t)
	client := newRetryClient(mockClient)

	// All 4 attempts fail
	mockClient.EXPECT().
		FetchTransaction(mock.Anything, "sig-1").
		Return(nil, errors.New("429 too many requests")).
		Times(4)

	tx, err := client.FetchTransaction(context.Background(), "sig-1")

	require.Error(t, err)
	assert.Nil(t, tx)

	var aggErr *retry.AggregateError
	require.True(t, errors.As(err, &aggErr))
	assert.Len(t, aggErr.Errors, 4)
	assert.Contains(t, err.Error(), "429 too many requests")
}

func TestRetryClient_RespectsContextCancellation(t *testing.T) {
	mockClient := mocks.NewMockLedgerClient(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := ledger.NewRetryClient(mockClient, retry.Policy{
		MaxRetries:     10, // High retry count
		InitialDelay:   time.Second,
		MaxDelay:       time.Second,
		AttemptTimeout: time.Second,
	}, logger)

	// First call fails
	mockClient.EXPECT().
		FetchTransaction(mock.Anything, "sig-1").
		Return(nil, errors.New("connection refused")).
		Once()

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel after first failure
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	tx, err := client.FetchTransaction(ctx, "sig-1")

	require.Error(t, err)
	assert.Nil(t, tx)
	assert.Equal(t, context.Canceled, err)
}
