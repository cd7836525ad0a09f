package models

import "github.com/shopspring/decimal"

// ScheduleSummary represents aggregate statistics over a credit's schedule,
// grouped by derived installment status.
type ScheduleSummary struct {
	TotalInstallments   int             `json:"total_installments"`
	TotalPrincipal      decimal.Decimal `json:"total_principal"`
	TotalInterest       decimal.Decimal `json:"total_interest"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	PaidInstallments    int             `json:"paid_installments"`
	PaidAmount          decimal.Decimal `json:"paid_amount"`
	PendingInstallments int             `json:"pending_installments"`
	PendingAmount       decimal.Decimal `json:"pending_amount"`
	OverdueInstallments int             `json:"overdue_installments"`
	OverdueAmount       decimal.Decimal `json:"overdue_amount"`
}
