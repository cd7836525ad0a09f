package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/credit-engine/internal/models"
)

// ledgerWithFirstPaid returns the 1.2M/12%/12m ledger with installment 1
// settled, leaving 11 unpaid installments.
func ledgerWithFirstPaid(t *testing.T) *Ledger {
	t.Helper()
	l := testLedger(t)
	date := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	_, err := l.ApplyPayment(1, l.Installments[0].Amount, date, "txn")
	require.NoError(t, err)
	return l
}

func TestApplyExtraPayment_ReduceTerm(t *testing.T) {
	l := ledgerWithFirstPaid(t)
	oldPayment := l.Credit.MonthlyPayment
	oldRemaining := l.RemainingPrincipal()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	amount := decimal.RequireFromString("200000")
	outcome, err := ApplyExtraPayment(l, amount, date, models.ExtraPaymentTypePrincipal, models.StrategyReduceTerm)
	require.NoError(t, err)

	// 905,381.45 at 1% against a 106,618.55 payment amortizes in 9 months.
	assert.Equal(t, 9, outcome.RemainingInstallments)
	assert.Equal(t, 2, outcome.InstallmentsRemoved)
	assert.True(t, outcome.NewMonthlyPayment.Equal(oldPayment),
		"reduce_term keeps the payment constant, got %s", outcome.NewMonthlyPayment)
	assert.True(t, l.Credit.MonthlyPayment.Equal(oldPayment))

	// Conservation: remaining principal drops by exactly the extra amount.
	assert.True(t, l.RemainingPrincipal().Equal(oldRemaining.Sub(amount)),
		"got %s", l.RemainingPrincipal())

	// Surviving installments keep their calendar positions and numbers.
	unpaid := l.Unpaid()
	require.Len(t, unpaid, 9)
	assert.Equal(t, 2, unpaid[0].Number)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), unpaid[0].DueDate)
	assert.Equal(t, 10, unpaid[8].Number)
	assert.Equal(t, time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC), unpaid[8].DueDate)

	// Paid history untouched.
	assert.True(t, l.Installments[0].IsPaid())
	assertApprox(t, 94618.55, l.Installments[0].Principal, 0.05, "paid principal")

	// Event logged.
	require.Len(t, l.ExtraPayments, 1)
	assert.Equal(t, models.ExtraPaymentTypePrincipal, l.ExtraPayments[0].Type)
	assert.True(t, l.ExtraPayments[0].Amount.Equal(amount))
}

func TestApplyExtraPayment_ReducePayment(t *testing.T) {
	l := ledgerWithFirstPaid(t)
	oldPayment := l.Credit.MonthlyPayment
	oldRemaining := l.RemainingPrincipal()
	oldInterest := l.TotalInterest()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	amount := decimal.RequireFromString("200000")
	outcome, err := ApplyExtraPayment(l, amount, date, models.ExtraPaymentTypePrincipal, models.StrategyReducePayment)
	require.NoError(t, err)

	// Count stays, payment drops.
	assert.Equal(t, 11, outcome.RemainingInstallments)
	assert.Equal(t, 0, outcome.InstallmentsRemoved)
	assert.True(t, outcome.NewMonthlyPayment.LessThan(oldPayment),
		"reduce_payment must lower the payment, got %s", outcome.NewMonthlyPayment)
	assert.True(t, l.Credit.MonthlyPayment.Equal(outcome.NewMonthlyPayment))

	// Conservation holds exactly after the rewrite.
	assert.True(t, l.RemainingPrincipal().Equal(oldRemaining.Sub(amount)),
		"got %s", l.RemainingPrincipal())

	// Less principal outstanding means less interest over the schedule.
	assert.True(t, l.TotalInterest().LessThan(oldInterest))

	// All 11 unpaid installments rewritten against the new payment.
	unpaid := l.Unpaid()
	require.Len(t, unpaid, 11)
	for _, inst := range unpaid[:10] {
		assertApprox(t, outcome.NewMonthlyPayment.InexactFloat64(),
			inst.Principal.Add(inst.Interest), 0.02, "rewritten installment")
	}
}

func TestApplyExtraPayment_FullPayoff(t *testing.T) {
	l := ledgerWithFirstPaid(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	remaining := l.RemainingPrincipal()
	outcome, err := ApplyExtraPayment(l, remaining, date, models.ExtraPaymentTypeFull, "")
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.RemainingInstallments)
	assert.True(t, l.PendingAmount().IsZero())
	assert.Equal(t, 12, l.PaidCount())
	assert.Nil(t, l.NextInstallment(date))

	// Principal across the whole schedule still reconstructs the original
	// amount: paid history plus pro-rata payoff attribution.
	total := decimal.Zero
	for _, inst := range l.Installments {
		total = total.Add(inst.Principal)
		require.NotNil(t, inst.PaidDate)
	}
	assert.True(t, total.Equal(l.Credit.OriginalAmount), "got %s", total)

	require.Len(t, l.ExtraPayments, 1)
	assert.Equal(t, models.ExtraPaymentTypeFull, l.ExtraPayments[0].Type)
}

func TestApplyExtraPayment_Rejections(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	l := ledgerWithFirstPaid(t)
	remaining := l.RemainingPrincipal()

	_, err := ApplyExtraPayment(l, decimal.Zero, date, models.ExtraPaymentTypePrincipal, models.StrategyReduceTerm)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = ApplyExtraPayment(l, remaining, date, models.ExtraPaymentTypePrincipal, models.StrategyReduceTerm)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = ApplyExtraPayment(l, remaining.Add(decimal.RequireFromString("1")), date, models.ExtraPaymentTypePrincipal, models.StrategyReduceTerm)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = ApplyExtraPayment(l, remaining.Sub(decimal.RequireFromString("1")), date, models.ExtraPaymentTypeFull, "")
	assert.ErrorIs(t, err, ErrAmountMismatch)

	_, err = ApplyExtraPayment(l, decimal.RequireFromString("100"), date, models.ExtraPaymentTypePrincipal, "spread_evenly")
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = ApplyExtraPayment(l, decimal.RequireFromString("100"), date, "bonus", models.StrategyReduceTerm)
	assert.ErrorIs(t, err, ErrPrecondition)

	assert.Empty(t, l.ExtraPayments, "rejected payments must not be logged")
}

func TestApplyExtraPayment_CreditCardUnsupported(t *testing.T) {
	credit := testCredit("1000", "12", 0)
	credit.Type = models.CreditTypeCreditCard
	l := NewLedger(credit, nil)

	_, err := ApplyExtraPayment(l, decimal.RequireFromString("100"), time.Now(), models.ExtraPaymentTypePrincipal, models.StrategyReduceTerm)
	assert.ErrorIs(t, err, ErrUnsupportedCreditType)
}

func TestApplyExtraPayment_NoUnpaidInstallments(t *testing.T) {
	credit := testCredit("100", "0", 1)
	installments, err := GenerateSchedule(credit)
	require.NoError(t, err)
	l := NewLedger(credit, installments)

	date := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	_, err = l.ApplyPayment(1, installments[0].Amount, date, "txn")
	require.NoError(t, err)

	_, err = ApplyExtraPayment(l, decimal.RequireFromString("10"), date, models.ExtraPaymentTypePrincipal, models.StrategyReduceTerm)
	assert.ErrorIs(t, err, ErrNoUnpaidInstallments)
}

func TestApplyExtraPayment_ZeroRateReduceTerm(t *testing.T) {
	credit := testCredit("1200", "0", 12)
	installments, err := GenerateSchedule(credit)
	require.NoError(t, err)
	l := NewLedger(credit, installments)
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	// 1200 over 12 months is 100/month; 500 off leaves 700 = 7 payments.
	outcome, err := ApplyExtraPayment(l, decimal.RequireFromString("500"), date, models.ExtraPaymentTypePrincipal, models.StrategyReduceTerm)
	require.NoError(t, err)

	assert.Equal(t, 7, outcome.RemainingInstallments)
	assert.Equal(t, 5, outcome.InstallmentsRemoved)
	assert.True(t, l.RemainingPrincipal().Equal(decimal.RequireFromString("700")))
}
