// Package domain holds the payment verification model: requests, ledger
// transaction snapshots, rejection reasons and verification results.
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// RejectionReason classifies why a claimed payment was not accepted.
type RejectionReason string

const (
	ReasonAlreadyUsed        RejectionReason = "ALREADY_USED"
	ReasonNotFoundOnLedger   RejectionReason = "NOT_FOUND_ON_LEDGER"
	ReasonTransactionFailed  RejectionReason = "TRANSACTION_FAILED"
	ReasonMissingTimestamp   RejectionReason = "MISSING_TIMESTAMP"
	ReasonTooOld             RejectionReason = "TOO_OLD"
	ReasonRateLimitExceeded  RejectionReason = "RATE_LIMIT_EXCEEDED"
	ReasonWrongRecipient     RejectionReason = "WRONG_RECIPIENT"
	ReasonInsufficientAmount RejectionReason = "INSUFFICIENT_AMOUNT"
	ReasonInternalError      RejectionReason = "VERIFICATION_INTERNAL_ERROR"
)

// VerificationRequest is a caller's claim that Signature paid RequiredAmount SOL.
type VerificationRequest struct {
	Signature      string
	RequiredAmount decimal.Decimal
}

func NewVerificationRequest(signature string, requiredAmount decimal.Decimal) (VerificationRequest, error) {
	if signature == "" {
		return VerificationRequest{}, NewMissingRequiredFieldError("signature")
	}
	if !requiredAmount.IsPositive() {
		return VerificationRequest{}, NewInvalidAmountError(requiredAmount.String(), "must be positive")
	}
	return VerificationRequest{
		Signature:      signature,
		RequiredAmount: requiredAmount,
	}, nil
}

// LedgerTransaction is a read-only snapshot of a committed transaction.
// AccountKeys, PreBalances and PostBalances share the same index order;
// the first key is the fee payer.
type LedgerTransaction struct {
	Signature      string
	Slot           uint64
	ExecutionError any
	BlockTime      *time.Time
	AccountKeys    []string
	PreBalances    []uint64
	PostBalances   []uint64
}

func (t *LedgerTransaction) Succeeded() bool {
	return t.ExecutionError == nil
}

// FeePayer returns the first signer of the transaction.
func (t *LedgerTransaction) FeePayer() (string, bool) {
	if len(t.AccountKeys) == 0 {
		return "", false
	}
	return t.AccountKeys[0], true
}

func (t *LedgerTransaction) HasAccount(account string) bool {
	return slices.Contains(t.AccountKeys, account)
}

// Received returns the net lamports credited to account. Debits and
// accounts without balance entries report zero.
func (t *LedgerTransaction) Received(account string) uint64 {
	idx := slices.Index(t.AccountKeys, account)
	if idx < 0 || idx >= len(t.PreBalances) || idx >= len(t.PostBalances) {
		return 0
	}
	pre, post := t.PreBalances[idx], t.PostBalances[idx]
	if post <= pre {
		return 0
	}
	return post - pre
}

// VerificationResult is the single decision produced for a request.
type VerificationResult struct {
	Signature        string
	Valid            bool
	Reason           RejectionReason
	Detail           string
	Payer            string
	AmountLamports   uint64
	RequiredLamports uint64
	Timestamp        *time.Time
	CheckedAt        time.Time
}

func (r *VerificationResult) Amount() decimal.Decimal {
	return FromLamports(r.AmountLamports)
}

// RateLimitDecision is the outcome of counting one request against a window.
type RateLimitDecision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RejectionError carries the classified reason a verification step failed.
type RejectionError struct {
	Reason RejectionReason
	Detail string
}

func NewRejection(reason RejectionReason, detail string) *RejectionError {
	return &RejectionError{Reason: reason, Detail: detail}
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return string(e.Reason) + ": " + e.Detail
}
