package ledger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryClient_LogsFailedRPCOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	inner := &SolanaClient{rpc: &stubGetter{err: errors.New("connection reset by peer")}}
	client := NewRetryClient(inner, retry.Policy{
		MaxRetries:     1,
		InitialDelay:   time.Millisecond,
		MaxDelay:       time.Millisecond,
		AttemptTimeout: time.Second,
	}, logger)

	_, err := client.FetchTransaction(context.Background(), testSignature())
	require.Error(t, err)

	var agg *retry.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 2)
	assert.Contains(t, buf.String(), "rpc_op=getTransaction")
	assert.Contains(t, buf.String(), "attempt=2")
}
