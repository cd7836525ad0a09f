package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/credit-engine/internal/models"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	credit := testCredit("1200000", "12", 12)
	installments, err := GenerateSchedule(credit)
	require.NoError(t, err)
	return NewLedger(credit, installments)
}

func TestStatusOf(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("100")

	tests := []struct {
		name       string
		dueDate    time.Time
		paidAmount string
		want       models.InstallmentStatus
	}{
		{"future due, nothing paid", now.AddDate(0, 1, 0), "0", models.InstallmentStatusPending},
		{"past due, nothing paid", now.AddDate(0, -1, 0), "0", models.InstallmentStatusOverdue},
		{"future due, partially paid", now.AddDate(0, 1, 0), "40", models.InstallmentStatusPartial},
		{"fully paid", now.AddDate(0, -1, 0), "100", models.InstallmentStatusPaid},
		{"overpaid counts as paid", now.AddDate(0, 1, 0), "120", models.InstallmentStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := &models.Installment{
				DueDate:    tt.dueDate,
				Amount:     amount,
				PaidAmount: decimal.RequireFromString(tt.paidAmount),
			}
			assert.Equal(t, tt.want, StatusOf(inst, now))
		})
	}
}

func TestStatusOf_PartialBeatsOverdue(t *testing.T) {
	// Explicit precedence rule: an installment past its due date with partial
	// payment activity is reported partial, not overdue.
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	inst := &models.Installment{
		DueDate:    now.AddDate(0, -2, 0),
		Amount:     decimal.RequireFromString("100"),
		PaidAmount: decimal.RequireFromString("60"),
	}
	assert.Equal(t, models.InstallmentStatusPartial, StatusOf(inst, now))
}

func TestApplyPayment_FullPayment(t *testing.T) {
	l := testLedger(t)
	first := l.Installments[0]
	date := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	inst, err := l.ApplyPayment(1, first.Amount, date, "txn-4711")
	require.NoError(t, err)

	assert.True(t, inst.IsPaid())
	require.NotNil(t, inst.PaidDate)
	assert.Equal(t, date, *inst.PaidDate)
	assert.Equal(t, models.InstallmentStatusPaid, StatusOf(inst, date))

	require.Len(t, l.Payments, 1)
	assert.Equal(t, "txn-4711", l.Payments[0].AccountRef)
	assert.Equal(t, 1, l.Payments[0].InstallmentNumber)
	assert.True(t, l.Payments[0].Amount.Equal(first.Amount))

	assert.Equal(t, 1, l.PaidCount())
	assert.Equal(t, 11, l.PendingCount())
}

func TestApplyPayment_PartialThenComplete(t *testing.T) {
	l := testLedger(t)
	first := l.Installments[0]
	date := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	half := first.Amount.Div(decimal.NewFromInt(2)).Round(2)
	inst, err := l.ApplyPayment(1, half, date, "txn-1")
	require.NoError(t, err)
	assert.Nil(t, inst.PaidDate)
	assert.Equal(t, models.InstallmentStatusPartial, StatusOf(inst, date))

	_, err = l.ApplyPayment(1, inst.Remaining(), date.AddDate(0, 0, 3), "txn-2")
	require.NoError(t, err)
	assert.True(t, first.IsPaid())
	require.NotNil(t, first.PaidDate)
	assert.Equal(t, date.AddDate(0, 0, 3), *first.PaidDate)
	assert.Len(t, l.Payments, 2)
}

func TestApplyPayment_Rejections(t *testing.T) {
	l := testLedger(t)
	first := l.Installments[0]
	date := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	_, err := l.ApplyPayment(1, decimal.Zero, date, "txn")
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = l.ApplyPayment(99, decimal.RequireFromString("10"), date, "txn")
	assert.ErrorIs(t, err, ErrInstallmentNotFound)

	over := first.Amount.Add(decimal.RequireFromString("0.01"))
	_, err = l.ApplyPayment(1, over, date, "txn")
	assert.ErrorIs(t, err, ErrOverpaymentRejected)

	_, err = l.ApplyPayment(1, first.Amount, date, "txn")
	require.NoError(t, err)
	_, err = l.ApplyPayment(1, decimal.RequireFromString("1"), date, "txn")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestPendingAmountAndNextInstallment(t *testing.T) {
	l := testLedger(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	total := decimal.Zero
	for _, inst := range l.Installments {
		total = total.Add(inst.Amount)
	}
	assert.True(t, l.PendingAmount().Equal(total))

	next := l.NextInstallment(now)
	require.NotNil(t, next)
	assert.Equal(t, 1, next.Number)

	// Settle the first installment; the next one moves forward.
	_, err := l.ApplyPayment(1, l.Installments[0].Amount, now, "txn")
	require.NoError(t, err)
	next = l.NextInstallment(now)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.Number)

	assert.True(t, l.PendingAmount().Equal(total.Sub(l.Installments[0].Amount)))
}

func TestNextInstallment_NilWhenSettled(t *testing.T) {
	credit := testCredit("100", "0", 1)
	installments, err := GenerateSchedule(credit)
	require.NoError(t, err)
	l := NewLedger(credit, installments)

	date := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	_, err = l.ApplyPayment(1, installments[0].Amount, date, "txn")
	require.NoError(t, err)

	assert.Nil(t, l.NextInstallment(date))
	assert.True(t, l.PendingAmount().IsZero())
	assert.Equal(t, 0, l.PendingCount())
}

func TestSummary(t *testing.T) {
	l := testLedger(t)
	// As of mid-April: installments 1 and 2 (Feb, Mar) are due. Pay the
	// first, leave the second overdue.
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err := l.ApplyPayment(1, l.Installments[0].Amount, now, "txn")
	require.NoError(t, err)

	s := l.Summary(now)
	assert.Equal(t, 12, s.TotalInstallments)
	assert.Equal(t, 1, s.PaidInstallments)
	assert.Equal(t, 1, s.OverdueInstallments)
	assert.Equal(t, 10, s.PendingInstallments)
	assert.True(t, s.TotalPrincipal.Equal(l.Credit.OriginalAmount))
	assert.True(t, s.OverdueAmount.Equal(l.Installments[1].Amount))
	assert.True(t, s.PaidAmount.Equal(l.Installments[0].Amount))
}

func TestClone_IsDeep(t *testing.T) {
	l := testLedger(t)
	clone := l.Clone()

	date := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	_, err := clone.ApplyPayment(1, clone.Installments[0].Amount, date, "txn")
	require.NoError(t, err)
	clone.Credit.MonthlyPayment = decimal.Zero

	assert.False(t, l.Installments[0].IsPaid(), "clone mutation must not reach the original")
	assert.Empty(t, l.Payments)
	assert.False(t, l.Credit.MonthlyPayment.IsZero())
}
