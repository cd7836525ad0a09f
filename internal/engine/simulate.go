package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/credit-engine/internal/models"
)

// SimulatePrepayment projects the effect of a hypothetical principal
// reduction without touching the ledger. It clones the ledger, runs the same
// re-amortization code path as ApplyExtraPayment against the clone and diffs
// the unpaid tails, so the simulation can never drift from the real
// mutation. Repeated calls with unchanged input yield identical results.
func SimulatePrepayment(l *Ledger, amount decimal.Decimal, strategy models.Strategy) (*models.PrepaymentSimulation, error) {
	if l.Credit.IsCreditCard() {
		return nil, ErrUnsupportedCreditType
	}
	unpaidBefore := l.Unpaid()
	if len(unpaidBefore) == 0 {
		return nil, ErrNoUnpaidInstallments
	}
	if !amount.IsPositive() || amount.GreaterThanOrEqual(l.RemainingPrincipal()) {
		return nil, ErrInvalidSimulationAmount
	}

	before := sumInterest(unpaidBefore)

	clone := l.Clone()
	if _, err := ApplyExtraPayment(clone, amount, time.Time{}, models.ExtraPaymentTypePrincipal, strategy); err != nil {
		return nil, err
	}

	unpaidAfter := clone.Unpaid()
	after := sumInterest(unpaidAfter)

	sim := &models.PrepaymentSimulation{
		Amount:              amount,
		Strategy:            strategy,
		TotalInterestBefore: before,
		TotalInterestAfter:  after,
		InterestSaved:       before.Sub(after),
	}
	switch strategy {
	case models.StrategyReduceTerm:
		sim.MonthsSaved = len(unpaidBefore) - len(unpaidAfter)
		sim.NewTermMonths = l.PaidCount() + len(unpaidAfter)
		sim.NewMonthlyPayment = l.Credit.MonthlyPayment
	case models.StrategyReducePayment:
		sim.NewTermMonths = len(l.Installments)
		sim.NewMonthlyPayment = clone.Credit.MonthlyPayment
	}
	return sim, nil
}

func sumInterest(installments []*models.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range installments {
		total = total.Add(inst.Interest)
	}
	return total
}
