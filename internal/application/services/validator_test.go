package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/application/services"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reasonOf(t *testing.T, err error) domain.RejectionReason {
	t.Helper()
	var rejection *domain.RejectionError
	require.True(t, errors.As(err, &rejection), "expected a rejection, got %v", err)
	return rejection.Reason
}

func TestPaymentValidator_CheckTransaction(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	validator := services.NewPaymentValidator(treasury, 5*time.Minute)

	tests := []struct {
		name   string
		tx     *domain.LedgerTransaction
		reason domain.RejectionReason
	}{
		{
			name:   "missing transaction",
			tx:     nil,
			reason: domain.ReasonNotFoundOnLedger,
		},
		{
			name: "execution failed",
			tx: func() *domain.LedgerTransaction {
				tx := paymentTx(payer, now, 1)
				tx.ExecutionError = map[string]any{"InstructionError": []any{0, "Custom"}}
				return tx
			}(),
			reason: domain.ReasonTransactionFailed,
		},
		{
			name: "missing block time",
			tx: func() *domain.LedgerTransaction {
				tx := paymentTx(payer, now, 1)
				tx.BlockTime = nil
				return tx
			}(),
			reason: domain.ReasonMissingTimestamp,
		},
		{
			name:   "five minutes and one second old",
			tx:     paymentTx(payer, now.Add(-5*time.Minute-time.Second), 1),
			reason: domain.ReasonTooOld,
		},
		{
			name: "too old is reported before wrong recipient",
			tx: func() *domain.LedgerTransaction {
				tx := paymentTx(payer, now.Add(-time.Hour), 1)
				tx.AccountKeys = []string{payer, "someone-else"}
				return tx
			}(),
			reason: domain.ReasonTooOld,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.CheckTransaction(tt.tx, now)
			assert.Equal(t, tt.reason, reasonOf(t, err))
		})
	}

	t.Run("four minutes fifty nine seconds old passes", func(t *testing.T) {
		err := validator.CheckTransaction(paymentTx(payer, now.Add(-4*time.Minute-59*time.Second), 1), now)
		assert.NoError(t, err)
	})

	t.Run("exactly at the limit passes", func(t *testing.T) {
		err := validator.CheckTransaction(paymentTx(payer, now.Add(-5*time.Minute), 1), now)
		assert.NoError(t, err)
	})
}

func TestPaymentValidator_CheckTransfer(t *testing.T) {
	validator := services.NewPaymentValidator(treasury, 5*time.Minute)
	now := time.Now()
	const required = uint64(50_000_000)

	t.Run("exact amount succeeds", func(t *testing.T) {
		received, err := validator.CheckTransfer(paymentTx(payer, now, required), required)
		require.NoError(t, err)
		assert.Equal(t, required, received)
	})

	t.Run("overpayment succeeds", func(t *testing.T) {
		received, err := validator.CheckTransfer(paymentTx(payer, now, required+1), required)
		require.NoError(t, err)
		assert.Equal(t, required+1, received)
	})

	t.Run("one lamport short fails", func(t *testing.T) {
		received, err := validator.CheckTransfer(paymentTx(payer, now, required-1), required)
		assert.Equal(t, domain.ReasonInsufficientAmount, reasonOf(t, err))
		assert.Equal(t, required-1, received)
	})

	t.Run("treasury absent fails", func(t *testing.T) {
		tx := paymentTx(payer, now, required)
		tx.AccountKeys = []string{payer, "not-the-treasury"}
		_, err := validator.CheckTransfer(tx, required)
		assert.Equal(t, domain.ReasonWrongRecipient, reasonOf(t, err))
	})

	t.Run("treasury debited counts as nothing received", func(t *testing.T) {
		tx := paymentTx(payer, now, 0)
		tx.PostBalances[1] = tx.PreBalances[1] - 10
		_, err := validator.CheckTransfer(tx, required)
		assert.Equal(t, domain.ReasonInsufficientAmount, reasonOf(t, err))
	})
}

func TestPaymentValidator_AgeJudgedBeforeAmount(t *testing.T) {
	validator := services.NewPaymentValidator(treasury, 5*time.Minute)
	now := time.Now()

	tx := paymentTx(payer, now.Add(-time.Hour), 1)
	err := validator.CheckTransaction(tx, now)
	assert.Equal(t, domain.ReasonTooOld, reasonOf(t, err))

	tx = paymentTx(payer, now.Add(-time.Minute), 10)
	require.NoError(t, validator.CheckTransaction(tx, now))
	received, err := validator.CheckTransfer(tx, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), received)
}
