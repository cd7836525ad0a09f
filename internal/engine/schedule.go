package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/credit-engine/internal/models"
)

// AnnuityPayment computes the constant monthly payment that amortizes
// balance over termMonths at monthlyRate (French method), rounded to two
// decimals. A zero rate falls back to a straight-line split.
func AnnuityPayment(balance, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	if monthlyRate.IsZero() {
		return balance.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	}

	// payment = B * r / (1 - (1+r)^-n). The power factor is computed in
	// float64, monetary arithmetic stays decimal.
	r := monthlyRate.InexactFloat64()
	discount := 1 - math.Pow(1+r, -float64(termMonths))
	payment := balance.InexactFloat64() * r / discount
	return decimal.NewFromFloat(payment).Round(2)
}

// GenerateSchedule builds the full installment schedule for a new
// installment-style credit and stores the computed monthly payment on the
// credit. Credit-card credits have no schedule.
func GenerateSchedule(credit *models.Credit) ([]*models.Installment, error) {
	if credit.IsCreditCard() {
		return nil, ErrUnsupportedCreditType
	}
	if credit.TermMonths < 1 {
		return nil, fmt.Errorf("%w: term must be at least 1 month", ErrPrecondition)
	}
	if !credit.OriginalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: original amount must be positive", ErrPrecondition)
	}
	if credit.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", ErrPrecondition)
	}

	rate := MonthlyRate(credit.InterestRate, credit.RateUnit)
	payment := AnnuityPayment(credit.OriginalAmount, rate, credit.TermMonths)

	installments := make([]*models.Installment, 0, credit.TermMonths)
	for i := 1; i <= credit.TermMonths; i++ {
		installments = append(installments, &models.Installment{
			CreditID:   credit.ID,
			Number:     i,
			DueDate:    DueDate(credit.StartDate, i, credit.PaymentDay),
			PaidAmount: decimal.Zero,
		})
	}
	amortizeTail(credit, installments, credit.OriginalAmount, rate, payment)

	credit.MonthlyPayment = payment
	return installments, nil
}

// DueDate returns startDate plus monthsAhead months with the day clamped to
// paymentDay, or to the last day of the month when paymentDay exceeds its
// length. A paymentDay of zero falls back to the start date's day.
func DueDate(startDate time.Time, monthsAhead, paymentDay int) time.Time {
	// Anchor on the first of the month so Go's date normalization cannot
	// roll a short month over (e.g. Jan 31 + 1 month).
	anchor := time.Date(startDate.Year(), startDate.Month(), 1, 0, 0, 0, 0, startDate.Location())
	anchor = anchor.AddDate(0, monthsAhead, 0)

	day := paymentDay
	if day < 1 {
		day = startDate.Day()
	}
	if last := daysInMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, startDate.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// amortizeTail rewrites principal, interest and amount on the given
// installments so that payment amortizes balance across them at monthlyRate.
// The final installment's principal is set to the running balance exactly,
// absorbing all accumulated rounding drift; without this the schedule leaves
// a residual balance. Due dates, numbers and paid amounts are untouched.
func amortizeTail(credit *models.Credit, installments []*models.Installment, balance, monthlyRate, payment decimal.Decimal) {
	extras := credit.Insurance.Add(credit.OtherCharges)
	remaining := balance
	last := len(installments) - 1

	for i, inst := range installments {
		interest := remaining.Mul(monthlyRate).Round(2)
		principal := payment.Sub(interest).Round(2)
		if i == last {
			principal = remaining
		}
		if principal.IsNegative() {
			principal = decimal.Zero
		}
		remaining = remaining.Sub(principal)

		inst.Principal = principal
		inst.Interest = interest
		inst.Amount = principal.Add(interest).Add(extras)
	}
}
