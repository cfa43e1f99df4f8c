package postgres

import (
	"time"
)

// Signature states in used_signatures.
const (
	signaturePending = "PENDING"
	signatureUsed    = "USED"
)

// VerificationRecordModel is one row of verification_log. Lamport amounts
// are stored as BIGINT; total SOL supply fits comfortably in int64.
type VerificationRecordModel struct {
	ID               string
	Signature        string
	Valid            bool
	Reason           *string
	Detail           *string
	Payer            *string
	AmountLamports   int64
	RequiredLamports int64
	BlockTime        *time.Time
	CheckedAt        time.Time
}
