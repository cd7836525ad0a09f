package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is derived from paid amount and due date, never stored
// as ground truth.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPartial InstallmentStatus = "partial"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

// Installment represents one due period of an installment credit.
// Amount = Principal + Interest + the credit's per-installment insurance and
// other charges.
type Installment struct {
	ID         int64           `json:"id"`
	CreditID   int64           `json:"credit_id"`
	Number     int             `json:"number"` // 1-based, contiguous
	DueDate    time.Time       `json:"due_date"`
	Principal  decimal.Decimal `json:"principal"`
	Interest   decimal.Decimal `json:"interest"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	PaidDate   *time.Time      `json:"paid_date,omitempty"`
}

// IsPaid reports whether the installment is fully settled.
func (i *Installment) IsPaid() bool {
	return i.PaidAmount.GreaterThanOrEqual(i.Amount)
}

// Remaining returns the outstanding amount on the installment.
func (i *Installment) Remaining() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// Clone returns a deep copy of the installment.
func (i *Installment) Clone() *Installment {
	out := *i
	if i.PaidDate != nil {
		d := *i.PaidDate
		out.PaidDate = &d
	}
	return &out
}
