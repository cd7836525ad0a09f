package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrack/credit-engine/internal/models"
)

// Ledger is the authoritative in-memory view of one credit's installments.
// It owns the installment list, the extra payment log and the payment audit
// trail. Mutating operations must be serialized per credit by the caller;
// the ledger itself performs no I/O and no locking.
type Ledger struct {
	Credit        *models.Credit
	Installments  []*models.Installment
	ExtraPayments []*models.ExtraPayment
	Payments      []*models.PaymentRecord
}

// NewLedger builds a ledger over a credit and its installments.
func NewLedger(credit *models.Credit, installments []*models.Installment) *Ledger {
	return &Ledger{Credit: credit, Installments: installments}
}

// StatusOf derives an installment's status as of a date. It is recomputed on
// every read, never cached. Precedence: paid beats everything, then partial
// beats overdue — a partially paid installment is reported partial even after
// its due date, because payment activity is the more useful signal.
func StatusOf(inst *models.Installment, asOf time.Time) models.InstallmentStatus {
	switch {
	case inst.IsPaid():
		return models.InstallmentStatusPaid
	case inst.PaidAmount.IsPositive():
		return models.InstallmentStatusPartial
	case inst.DueDate.Before(asOf):
		return models.InstallmentStatusOverdue
	default:
		return models.InstallmentStatusPending
	}
}

// Installment returns the installment with the given number, or nil.
func (l *Ledger) Installment(number int) *models.Installment {
	for _, inst := range l.Installments {
		if inst.Number == number {
			return inst
		}
	}
	return nil
}

// ApplyPayment adds amount to an installment's paid amount and records an
// audit entry carrying the opaque account reference. Payments beyond the
// remaining amount are rejected rather than clamped.
func (l *Ledger) ApplyPayment(number int, amount decimal.Decimal, date time.Time, accountRef string) (*models.Installment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrPrecondition)
	}
	inst := l.Installment(number)
	if inst == nil {
		return nil, ErrInstallmentNotFound
	}
	if inst.IsPaid() {
		return nil, ErrAlreadyPaid
	}
	if amount.GreaterThan(inst.Remaining()) {
		return nil, ErrOverpaymentRejected
	}

	inst.PaidAmount = inst.PaidAmount.Add(amount)
	if inst.IsPaid() {
		d := date
		inst.PaidDate = &d
	}
	l.Payments = append(l.Payments, &models.PaymentRecord{
		ID:                uuid.New(),
		CreditID:          l.Credit.ID,
		InstallmentNumber: number,
		Amount:            amount,
		Date:              date,
		AccountRef:        accountRef,
	})
	return inst, nil
}

// Unpaid returns the installments that are not fully settled, in order.
func (l *Ledger) Unpaid() []*models.Installment {
	var out []*models.Installment
	for _, inst := range l.Installments {
		if !inst.IsPaid() {
			out = append(out, inst)
		}
	}
	return out
}

// PendingAmount returns the total outstanding amount across all unsettled
// installments.
func (l *Ledger) PendingAmount() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.Unpaid() {
		total = total.Add(inst.Remaining())
	}
	return total
}

// RemainingPrincipal returns the principal still owed across unsettled
// installments.
func (l *Ledger) RemainingPrincipal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.Unpaid() {
		total = total.Add(inst.Principal)
	}
	return total
}

// NextInstallment returns the first installment by number that still needs
// payment, or nil when the credit is fully settled.
func (l *Ledger) NextInstallment(asOf time.Time) *models.Installment {
	for _, inst := range l.Installments {
		if StatusOf(inst, asOf) != models.InstallmentStatusPaid {
			return inst
		}
	}
	return nil
}

// TotalInterest returns the interest over the whole schedule. The value
// changes after re-amortization.
func (l *Ledger) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.Installments {
		total = total.Add(inst.Interest)
	}
	return total
}

// PaidCount returns the number of fully settled installments.
func (l *Ledger) PaidCount() int {
	n := 0
	for _, inst := range l.Installments {
		if inst.IsPaid() {
			n++
		}
	}
	return n
}

// PendingCount returns the number of installments still awaiting payment.
func (l *Ledger) PendingCount() int {
	return len(l.Installments) - l.PaidCount()
}

// Summary aggregates the schedule by derived status for read-model rendering.
// Partially paid installments count toward the pending bucket.
func (l *Ledger) Summary(asOf time.Time) *models.ScheduleSummary {
	s := &models.ScheduleSummary{
		TotalInstallments: len(l.Installments),
		TotalPrincipal:    decimal.Zero,
		TotalInterest:     decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		PendingAmount:     decimal.Zero,
		OverdueAmount:     decimal.Zero,
	}
	for _, inst := range l.Installments {
		s.TotalPrincipal = s.TotalPrincipal.Add(inst.Principal)
		s.TotalInterest = s.TotalInterest.Add(inst.Interest)
		s.TotalAmount = s.TotalAmount.Add(inst.Amount)

		switch StatusOf(inst, asOf) {
		case models.InstallmentStatusPaid:
			s.PaidInstallments++
			s.PaidAmount = s.PaidAmount.Add(inst.PaidAmount)
		case models.InstallmentStatusOverdue:
			s.OverdueInstallments++
			s.OverdueAmount = s.OverdueAmount.Add(inst.Remaining())
		default:
			s.PendingInstallments++
			s.PendingAmount = s.PendingAmount.Add(inst.Remaining())
		}
	}
	return s
}

// Clone returns a deep copy of the ledger for side-effect-free projections.
func (l *Ledger) Clone() *Ledger {
	credit := *l.Credit
	installments := make([]*models.Installment, len(l.Installments))
	for i, inst := range l.Installments {
		installments[i] = inst.Clone()
	}
	extras := make([]*models.ExtraPayment, len(l.ExtraPayments))
	copy(extras, l.ExtraPayments)
	payments := make([]*models.PaymentRecord, len(l.Payments))
	copy(payments, l.Payments)
	return &Ledger{
		Credit:        &credit,
		Installments:  installments,
		ExtraPayments: extras,
		Payments:      payments,
	}
}
