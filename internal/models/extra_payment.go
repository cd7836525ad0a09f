package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExtraPaymentType defines whether an out-of-schedule payment reduces
// principal or settles the credit in full.
type ExtraPaymentType string

const (
	ExtraPaymentTypePrincipal ExtraPaymentType = "principal"
	ExtraPaymentTypeFull      ExtraPaymentType = "full"
)

// Strategy selects how the unpaid tail is re-amortized after a principal
// reduction.
type Strategy string

const (
	StrategyReduceTerm    Strategy = "reduce_term"
	StrategyReducePayment Strategy = "reduce_payment"
)

// ExtraPayment is an append-only log entry describing an out-of-schedule
// payment event. It does not reference specific installments; the effect on
// the schedule is derived.
type ExtraPayment struct {
	ID        uuid.UUID        `json:"id"`
	CreditID  int64            `json:"credit_id"`
	Amount    decimal.Decimal  `json:"amount"`
	Date      time.Time        `json:"date"`
	Type      ExtraPaymentType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
}

// PaymentRecord is an audit entry linking a payment to the account or
// transaction it came from. AccountRef is opaque to the engine.
type PaymentRecord struct {
	ID                uuid.UUID       `json:"id"`
	CreditID          int64           `json:"credit_id"`
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	Date              time.Time       `json:"date"`
	AccountRef        string          `json:"account_ref"`
}
