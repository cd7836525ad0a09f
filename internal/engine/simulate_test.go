package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/credit-engine/internal/models"
)

func TestSimulatePrepayment_ReduceTerm(t *testing.T) {
	l := ledgerWithFirstPaid(t)
	amount := decimal.RequireFromString("200000")

	sim, err := SimulatePrepayment(l, amount, models.StrategyReduceTerm)
	require.NoError(t, err)

	assert.Equal(t, 2, sim.MonthsSaved)
	assert.Equal(t, 10, sim.NewTermMonths) // 1 paid + 9 remaining
	assert.True(t, sim.NewMonthlyPayment.Equal(l.Credit.MonthlyPayment))
	assert.True(t, sim.InterestSaved.IsPositive())
	assert.True(t, sim.InterestSaved.Equal(sim.TotalInterestBefore.Sub(sim.TotalInterestAfter)))
	assert.True(t, sim.TotalInterestAfter.LessThan(sim.TotalInterestBefore))
}

func TestSimulatePrepayment_ReducePayment(t *testing.T) {
	l := ledgerWithFirstPaid(t)
	amount := decimal.RequireFromString("200000")

	sim, err := SimulatePrepayment(l, amount, models.StrategyReducePayment)
	require.NoError(t, err)

	assert.Equal(t, 0, sim.MonthsSaved)
	assert.Equal(t, 12, sim.NewTermMonths)
	assert.True(t, sim.NewMonthlyPayment.LessThan(l.Credit.MonthlyPayment))
	assert.True(t, sim.InterestSaved.IsPositive())
}

func TestSimulatePrepayment_Idempotent(t *testing.T) {
	l := ledgerWithFirstPaid(t)
	amount := decimal.RequireFromString("200000")

	first, err := SimulatePrepayment(l, amount, models.StrategyReduceTerm)
	require.NoError(t, err)
	second, err := SimulatePrepayment(l, amount, models.StrategyReduceTerm)
	require.NoError(t, err)

	assert.Equal(t, first.MonthsSaved, second.MonthsSaved)
	assert.Equal(t, first.NewTermMonths, second.NewTermMonths)
	assert.True(t, first.NewMonthlyPayment.Equal(second.NewMonthlyPayment))
	assert.True(t, first.TotalInterestBefore.Equal(second.TotalInterestBefore))
	assert.True(t, first.TotalInterestAfter.Equal(second.TotalInterestAfter))
	assert.True(t, first.InterestSaved.Equal(second.InterestSaved))
}

func TestSimulatePrepayment_DoesNotTouchLedger(t *testing.T) {
	l := ledgerWithFirstPaid(t)

	countBefore := len(l.Installments)
	paymentBefore := l.Credit.MonthlyPayment
	interestBefore := l.TotalInterest()
	principalBefore := l.RemainingPrincipal()

	_, err := SimulatePrepayment(l, decimal.RequireFromString("200000"), models.StrategyReduceTerm)
	require.NoError(t, err)

	assert.Equal(t, countBefore, len(l.Installments))
	assert.True(t, l.Credit.MonthlyPayment.Equal(paymentBefore))
	assert.True(t, l.TotalInterest().Equal(interestBefore))
	assert.True(t, l.RemainingPrincipal().Equal(principalBefore))
	assert.Empty(t, l.ExtraPayments, "simulation must not log extra payments")
}

func TestSimulatePrepayment_MatchesRealApplication(t *testing.T) {
	l := ledgerWithFirstPaid(t)
	amount := decimal.RequireFromString("200000")

	sim, err := SimulatePrepayment(l, amount, models.StrategyReducePayment)
	require.NoError(t, err)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	outcome, err := ApplyExtraPayment(l, amount, date, models.ExtraPaymentTypePrincipal, models.StrategyReducePayment)
	require.NoError(t, err)

	assert.True(t, sim.NewMonthlyPayment.Equal(outcome.NewMonthlyPayment),
		"simulated payment %s must match applied payment %s", sim.NewMonthlyPayment, outcome.NewMonthlyPayment)
	assert.True(t, sim.TotalInterestAfter.Equal(sumInterest(l.Unpaid())))
}

func TestSimulatePrepayment_InvalidAmounts(t *testing.T) {
	l := ledgerWithFirstPaid(t)
	remaining := l.RemainingPrincipal()

	for _, amount := range []decimal.Decimal{
		decimal.Zero,
		decimal.RequireFromString("-50"),
		remaining,
		remaining.Add(decimal.RequireFromString("0.01")),
	} {
		_, err := SimulatePrepayment(l, amount, models.StrategyReduceTerm)
		assert.ErrorIs(t, err, ErrInvalidSimulationAmount, "amount %s", amount)
	}
}

func TestSimulatePrepayment_CreditCardUnsupported(t *testing.T) {
	credit := testCredit("1000", "12", 0)
	credit.Type = models.CreditTypeCreditCard
	l := NewLedger(credit, nil)

	_, err := SimulatePrepayment(l, decimal.RequireFromString("100"), models.StrategyReduceTerm)
	assert.ErrorIs(t, err, ErrUnsupportedCreditType)
}
