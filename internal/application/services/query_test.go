package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/application/services"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder struct {
	accepted  *domain.VerificationResult
	history   []*domain.VerificationResult
	err       error
	lastLimit int
}

func (f *stubFinder) FindAccepted(_ context.Context, signature string) (*domain.VerificationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.accepted == nil {
		return nil, domain.NewVerificationNotFoundError(signature)
	}
	return f.accepted, nil
}

func (f *stubFinder) FindBySignature(_ context.Context, _ string, limit int) ([]*domain.VerificationResult, error) {
	f.lastLimit = limit
	return f.history, f.err
}

func TestQueryService_FindAccepted(t *testing.T) {
	ctx := context.Background()

	t.Run("returns accepted record", func(t *testing.T) {
		record := &domain.VerificationResult{Signature: "sig", Valid: true}
		svc := services.NewQueryService(&stubFinder{accepted: record})

		got, err := svc.FindAccepted(ctx, "sig")

		require.NoError(t, err)
		assert.Equal(t, record, got)
	})

	t.Run("maps missing record to not found", func(t *testing.T) {
		svc := services.NewQueryService(&stubFinder{})

		_, err := svc.FindAccepted(ctx, "sig")

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeNotFound, svcErr.Code)
		assert.ErrorIs(t, err, domain.ErrVerificationNotFound)
	})

	t.Run("maps store failure to internal", func(t *testing.T) {
		svc := services.NewQueryService(&stubFinder{err: errors.New("connection refused")})

		_, err := svc.FindAccepted(ctx, "sig")

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeInternal, svcErr.Code)
	})

	t.Run("rejects empty signature", func(t *testing.T) {
		svc := services.NewQueryService(&stubFinder{})

		_, err := svc.FindAccepted(ctx, "")

		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})
}

func TestQueryService_History(t *testing.T) {
	ctx := context.Background()
	finder := &stubFinder{history: []*domain.VerificationResult{{Signature: "sig"}, {Signature: "sig"}}}
	svc := services.NewQueryService(finder)

	got, err := svc.History(ctx, "sig", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 100, finder.lastLimit)

	_, err = svc.History(ctx, "sig", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, finder.lastLimit)
}
