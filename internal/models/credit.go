package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditType defines the kind of credit product
type CreditType string

const (
	CreditTypeConsumer   CreditType = "consumer"
	CreditTypeMortgage   CreditType = "mortgage"
	CreditTypeAuto       CreditType = "auto"
	CreditTypeCreditCard CreditType = "credit_card"
	CreditTypePersonal   CreditType = "personal"
	CreditTypeOther      CreditType = "other"
)

// RateUnit defines how the interest rate is expressed
type RateUnit string

const (
	RateUnitAnnual  RateUnit = "annual"
	RateUnitMonthly RateUnit = "monthly"
)

// RateType defines whether the rate is fixed or resolved from the market at creation
type RateType string

const (
	RateTypeFixed    RateType = "fixed"
	RateTypeVariable RateType = "variable"
)

// Credit represents a credit's origination terms. For installment credits
// TermMonths drives the schedule; for credit_card credits CreditLimit and
// BillingDay apply and no schedule exists.
type Credit struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	AccountID      int64           `json:"account_id"`
	Type           CreditType      `json:"type"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Currency       string          `json:"currency"`
	InterestRate   decimal.Decimal `json:"interest_rate"` // percentage points
	RateUnit       RateUnit        `json:"interest_rate_unit"`
	RateType       RateType        `json:"rate_type"`
	TermMonths     int             `json:"term_months,omitempty"`
	StartDate      time.Time       `json:"start_date"`
	PaymentDay     int             `json:"payment_day"` // 1-31, clamped to month length
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	Insurance      decimal.Decimal `json:"insurance"`              // constant per installment
	OtherCharges   decimal.Decimal `json:"other_charges"`          // constant per installment
	CreditLimit    decimal.Decimal `json:"credit_limit,omitempty"` // credit_card only
	BillingDay     int             `json:"billing_day,omitempty"`  // credit_card only
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsCreditCard reports whether the credit is a revolving credit-card credit.
func (c *Credit) IsCreditCard() bool {
	return c.Type == CreditTypeCreditCard
}
