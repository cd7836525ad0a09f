package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrack/credit-engine/internal/models"
)

// ExtraPaymentOutcome describes the effect of an out-of-schedule payment.
type ExtraPaymentOutcome struct {
	ExtraPayment          *models.ExtraPayment `json:"extra_payment"`
	Strategy              models.Strategy      `json:"strategy,omitempty"`
	NewMonthlyPayment     decimal.Decimal      `json:"new_monthly_payment"`
	RemainingInstallments int                  `json:"remaining_installments"`
	InstallmentsRemoved   int                  `json:"installments_removed"`
}

// ApplyExtraPayment applies an out-of-schedule amount against outstanding
// principal and re-amortizes the unpaid tail. Paid installments are never
// touched. A full payoff settles every remaining installment; a principal
// reduction either shortens the remaining term at the same payment
// (reduce_term) or lowers the payment over the same remaining count
// (reduce_payment). An ExtraPayment log entry is appended on success.
func ApplyExtraPayment(l *Ledger, amount decimal.Decimal, date time.Time, typ models.ExtraPaymentType, strategy models.Strategy) (*ExtraPaymentOutcome, error) {
	if l.Credit.IsCreditCard() {
		return nil, ErrUnsupportedCreditType
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: extra payment amount must be positive", ErrPrecondition)
	}
	unpaid := l.Unpaid()
	if len(unpaid) == 0 {
		return nil, ErrNoUnpaidInstallments
	}
	remaining := l.RemainingPrincipal()

	outcome := &ExtraPaymentOutcome{Strategy: strategy}
	switch typ {
	case models.ExtraPaymentTypeFull:
		if !amount.Equal(remaining) {
			return nil, ErrAmountMismatch
		}
		settleInFull(l, unpaid, amount, remaining, date)
		outcome.Strategy = ""
		outcome.NewMonthlyPayment = l.Credit.MonthlyPayment

	case models.ExtraPaymentTypePrincipal:
		if amount.GreaterThanOrEqual(remaining) {
			return nil, ErrInsufficientBalance
		}
		newBalance := remaining.Sub(amount)
		switch strategy {
		case models.StrategyReduceTerm:
			outcome.InstallmentsRemoved = reduceTerm(l, unpaid, newBalance)
		case models.StrategyReducePayment:
			reducePayment(l, unpaid, newBalance)
		default:
			return nil, fmt.Errorf("%w: unknown strategy %q", ErrPrecondition, strategy)
		}
		outcome.NewMonthlyPayment = l.Credit.MonthlyPayment

	default:
		return nil, fmt.Errorf("%w: unknown extra payment type %q", ErrPrecondition, typ)
	}

	outcome.RemainingInstallments = len(l.Unpaid())
	outcome.ExtraPayment = &models.ExtraPayment{
		ID:        uuid.New(),
		CreditID:  l.Credit.ID,
		Amount:    amount,
		Date:      date,
		Type:      typ,
		CreatedAt: date,
	}
	l.ExtraPayments = append(l.ExtraPayments, outcome.ExtraPayment)
	return outcome, nil
}

// settleInFull marks every unpaid installment paid, attributing the payoff
// amount pro-rata by outstanding principal for audit. Future interest and
// per-installment charges are waived; the final share absorbs rounding so the
// attributed total equals the payoff amount exactly.
func settleInFull(l *Ledger, unpaid []*models.Installment, amount, remaining decimal.Decimal, date time.Time) {
	allocated := decimal.Zero
	last := len(unpaid) - 1

	for i, inst := range unpaid {
		share := amount.Mul(inst.Principal).Div(remaining).Round(2)
		if i == last {
			share = amount.Sub(allocated)
		}
		allocated = allocated.Add(share)

		d := date
		inst.Principal = share
		inst.Interest = decimal.Zero
		inst.Amount = inst.PaidAmount.Add(share)
		inst.PaidAmount = inst.Amount
		inst.PaidDate = &d
	}
}

// reduceTerm keeps the monthly payment constant and shortens the unpaid tail
// to the smallest count that amortizes the reduced balance. Surviving
// installments keep their original due dates and numbers; the excess tail is
// deleted. Returns the number of installments removed.
func reduceTerm(l *Ledger, unpaid []*models.Installment, newBalance decimal.Decimal) int {
	payment := l.Credit.MonthlyPayment
	rate := MonthlyRate(l.Credit.InterestRate, l.Credit.RateUnit)

	count := solveTermMonths(newBalance, rate, payment)
	if count > len(unpaid) {
		count = len(unpaid)
	}
	kept := unpaid[:count]
	amortizeTail(l.Credit, kept, newBalance, rate, payment)

	removed := make(map[int]bool, len(unpaid)-count)
	for _, inst := range unpaid[count:] {
		removed[inst.Number] = true
	}
	if len(removed) > 0 {
		installments := l.Installments[:0]
		for _, inst := range l.Installments {
			if !removed[inst.Number] {
				installments = append(installments, inst)
			}
		}
		l.Installments = installments
	}
	return len(removed)
}

// solveTermMonths returns the smallest number of periods in which payment
// amortizes balance at rate: ceil(-ln(1 - B*r/p) / ln(1+r)).
func solveTermMonths(balance, rate, payment decimal.Decimal) int {
	if rate.IsZero() {
		return int(balance.Div(payment).Ceil().IntPart())
	}
	b := balance.InexactFloat64()
	r := rate.InexactFloat64()
	p := payment.InexactFloat64()

	x := 1 - b*r/p
	if x <= 0 {
		// Payment does not cover interest on the balance; cannot shorten.
		return math.MaxInt32
	}
	n := int(math.Ceil(-math.Log(x) / math.Log(1+r)))
	if n < 1 {
		n = 1
	}
	return n
}

// reducePayment keeps the remaining installment count constant and recomputes
// a lower payment over the reduced balance, rewriting the whole unpaid tail.
func reducePayment(l *Ledger, unpaid []*models.Installment, newBalance decimal.Decimal) {
	rate := MonthlyRate(l.Credit.InterestRate, l.Credit.RateUnit)
	payment := AnnuityPayment(newBalance, rate, len(unpaid))
	amortizeTail(l.Credit, unpaid, newBalance, rate, payment)
	l.Credit.MonthlyPayment = payment
}
