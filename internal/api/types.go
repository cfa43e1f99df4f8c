package api

import "time"

type VerifyPaymentRequest struct {
	Signature      string `json:"signature"`
	RequiredAmount string `json:"required_amount"`
}

type Verification struct {
	Signature      string     `json:"signature"`
	Valid          bool       `json:"valid"`
	Reason         string     `json:"reason,omitempty"`
	Payer          string     `json:"payer,omitempty"`
	Amount         string     `json:"amount,omitempty"`
	RequiredAmount string     `json:"required_amount"`
	BlockTime      *time.Time `json:"block_time,omitempty"`
	CheckedAt      time.Time  `json:"checked_at"`
}

type AccessReceipt struct {
	Service   string    `json:"service"`
	Signature string    `json:"signature"`
	Payer     string    `json:"payer,omitempty"`
	Price     string    `json:"price"`
	Paid      string    `json:"paid,omitempty"`
	GrantedAt time.Time `json:"granted_at"`
	RequestID string    `json:"request_id,omitempty"`
}

type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Envelope wraps every success response.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}
