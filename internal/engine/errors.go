package engine

import "errors"

// Domain errors returned by the engine. All are recoverable by the caller;
// none are fatal to the process. Check with errors.Is.
var (
	// ErrPrecondition marks invalid origination or payment parameters.
	ErrPrecondition = errors.New("invalid parameters")

	// ErrAmountMismatch is returned when a full payoff amount does not equal
	// the remaining principal balance.
	ErrAmountMismatch = errors.New("amount does not match remaining principal balance")

	// ErrInsufficientBalance is returned when a principal reduction equals or
	// exceeds the remaining principal balance.
	ErrInsufficientBalance = errors.New("amount must be below remaining principal balance")

	// ErrInvalidSimulationAmount is returned for simulation amounts outside
	// (0, remaining principal balance).
	ErrInvalidSimulationAmount = errors.New("simulation amount must be positive and below remaining principal balance")

	// ErrOverpaymentRejected is returned when a payment exceeds what is left
	// on the installment. Clamping silently would hide a caller bug.
	ErrOverpaymentRejected = errors.New("payment exceeds remaining installment amount")

	// ErrAlreadyPaid is returned for payments against a settled installment.
	ErrAlreadyPaid = errors.New("installment already paid")

	// ErrUnsupportedCreditType is returned when a schedule operation is
	// invoked against a credit_card credit.
	ErrUnsupportedCreditType = errors.New("operation not supported for credit card credits")

	// ErrNoUnpaidInstallments marks a fully settled credit. Terminal, not
	// retryable.
	ErrNoUnpaidInstallments = errors.New("credit has no unpaid installments")

	// ErrInstallmentNotFound is returned when the referenced installment
	// number does not exist in the ledger.
	ErrInstallmentNotFound = errors.New("installment not found")
)
