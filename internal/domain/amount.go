package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// LamportDecimals is the number of fractional digits between SOL and its
// smallest unit.
const LamportDecimals = 9

// ToLamports converts a positive SOL amount into lamports. Amounts finer
// than one lamport are rejected rather than rounded.
func ToLamports(amount decimal.Decimal) (uint64, error) {
	if !amount.IsPositive() {
		return 0, NewInvalidAmountError(amount.String(), "must be positive")
	}

	scaled := amount.Shift(LamportDecimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, NewInvalidAmountError(amount.String(), "more precise than one lamport")
	}

	lamports := scaled.BigInt()
	if !lamports.IsUint64() {
		return 0, NewInvalidAmountError(amount.String(), "out of range")
	}
	return lamports.Uint64(), nil
}

// FromLamports converts lamports back into a SOL amount.
func FromLamports(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -LamportDecimals)
}

// ParseAmount parses a decimal SOL amount as sent by clients and configuration.
func ParseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, NewMissingRequiredFieldError("amount")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &DomainError{
			Code:    ErrCodeInvalidAmount,
			Message: "amount is not a decimal number",
			Err:     err,
		}
	}
	return amount, nil
}
