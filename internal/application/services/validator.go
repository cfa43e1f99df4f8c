package services

import (
	"fmt"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
)

// PaymentValidator applies the business checks to a fetched transaction.
// Each check is a hard gate; the first failure decides the reason.
type PaymentValidator struct {
	treasury string
	maxAge   time.Duration
}

func NewPaymentValidator(treasury string, maxAge time.Duration) *PaymentValidator {
	return &PaymentValidator{
		treasury: treasury,
		maxAge:   maxAge,
	}
}

// CheckTransaction covers existence, execution outcome and age. Age is judged
// before anything about the transfer so a stale payment is rejected the same
// way whether or not it paid the right amount.
func (v *PaymentValidator) CheckTransaction(tx *domain.LedgerTransaction, now time.Time) error {
	if tx == nil {
		return domain.NewRejection(domain.ReasonNotFoundOnLedger, "")
	}

	if !tx.Succeeded() {
		return domain.NewRejection(domain.ReasonTransactionFailed, fmt.Sprintf("execution error: %v", tx.ExecutionError))
	}

	if tx.BlockTime == nil {
		return domain.NewRejection(domain.ReasonMissingTimestamp, "")
	}

	if age := now.Sub(*tx.BlockTime); age > v.maxAge {
		return domain.NewRejection(domain.ReasonTooOld,
			fmt.Sprintf("committed %s ago, limit is %s", age.Truncate(time.Second), v.maxAge))
	}

	return nil
}

// CheckTransfer covers recipient presence and amount sufficiency. It returns
// the lamports credited to the treasury even when they fall short.
func (v *PaymentValidator) CheckTransfer(tx *domain.LedgerTransaction, requiredLamports uint64) (uint64, error) {
	if !tx.HasAccount(v.treasury) {
		return 0, domain.NewRejection(domain.ReasonWrongRecipient, "")
	}

	received := tx.Received(v.treasury)
	if received < requiredLamports {
		return received, domain.NewRejection(domain.ReasonInsufficientAmount,
			fmt.Sprintf("received %d lamports, required %d", received, requiredLamports))
	}

	return received, nil
}
