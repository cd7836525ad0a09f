package engine

import (
	"github.com/shopspring/decimal"

	"github.com/fintrack/credit-engine/internal/models"
)

// CardBalance is the running-balance view of a revolving credit-card credit.
// There is no installment schedule; the billing day only determines which
// statement period the surrounding layer attributes charges to.
type CardBalance struct {
	Credit     *models.Credit
	PaidAmount decimal.Decimal
}

// NewCardBalance builds a balance view for a credit_card credit.
func NewCardBalance(credit *models.Credit, paidAmount decimal.Decimal) (*CardBalance, error) {
	if !credit.IsCreditCard() {
		return nil, ErrUnsupportedCreditType
	}
	return &CardBalance{Credit: credit, PaidAmount: paidAmount}, nil
}

// PendingAmount returns the outstanding balance, floored at zero.
func (b *CardBalance) PendingAmount() decimal.Decimal {
	pending := b.Credit.OriginalAmount.Sub(b.PaidAmount)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// AvailableCredit returns the credit limit minus the outstanding balance.
func (b *CardBalance) AvailableCredit() decimal.Decimal {
	return b.Credit.CreditLimit.Sub(b.PendingAmount())
}
