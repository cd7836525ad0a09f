package engine

import (
	"github.com/shopspring/decimal"

	"github.com/fintrack/credit-engine/internal/models"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
)

// MonthlyRate normalizes an interest rate into a per-month fraction.
// Annual rates use the nominal annual/12 convention, not the compounded
// effective-annual conversion; downstream schedules depend on this.
// A zero rate yields a zero monthly rate.
func MonthlyRate(rate decimal.Decimal, unit models.RateUnit) decimal.Decimal {
	if unit == models.RateUnitMonthly {
		return rate.Div(hundred)
	}
	return rate.Div(hundred).Div(monthsPerYear)
}
