package models

import "github.com/shopspring/decimal"

// PrepaymentSimulation is the result of projecting a hypothetical extra
// payment against a credit. It is owned by the caller and never persisted.
type PrepaymentSimulation struct {
	Amount              decimal.Decimal `json:"amount"`
	Strategy            Strategy        `json:"strategy"`
	NewTermMonths       int             `json:"new_term_months,omitempty"`
	NewMonthlyPayment   decimal.Decimal `json:"new_monthly_payment,omitempty"`
	TotalInterestBefore decimal.Decimal `json:"total_interest_before"`
	TotalInterestAfter  decimal.Decimal `json:"total_interest_after"`
	InterestSaved       decimal.Decimal `json:"interest_saved"`
	MonthsSaved         int             `json:"months_saved"` // 0 for reduce_payment
}
