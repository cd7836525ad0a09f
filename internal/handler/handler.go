package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/fintrack/credit-engine/internal/engine"
	"github.com/fintrack/credit-engine/internal/models"
	"github.com/fintrack/credit-engine/internal/service"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateAccount handles account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.svc.CreateAccount(r.Context(), req.Currency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// CreateCredit originates a credit and, for installment credits, its schedule
func (h *Handler) CreateCredit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID      int64             `json:"account_id"`
		Type           models.CreditType `json:"type"`
		OriginalAmount decimal.Decimal   `json:"original_amount"`
		Currency       string            `json:"currency"`
		InterestRate   decimal.Decimal   `json:"interest_rate"`
		RateUnit       models.RateUnit   `json:"interest_rate_unit"`
		RateType       models.RateType   `json:"rate_type"`
		TermMonths     int               `json:"term_months"`
		StartDate      string            `json:"start_date"`
		PaymentDay     int               `json:"payment_day"`
		Insurance      decimal.Decimal   `json:"insurance"`
		OtherCharges   decimal.Decimal   `json:"other_charges"`
		CreditLimit    decimal.Decimal   `json:"credit_limit"`
		BillingDay     int               `json:"billing_day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date", http.StatusBadRequest)
		return
	}

	credit := &models.Credit{
		AccountID:      req.AccountID,
		Type:           req.Type,
		OriginalAmount: req.OriginalAmount,
		Currency:       req.Currency,
		InterestRate:   req.InterestRate,
		RateUnit:       req.RateUnit,
		RateType:       req.RateType,
		TermMonths:     req.TermMonths,
		StartDate:      startDate,
		PaymentDay:     req.PaymentDay,
		Insurance:      req.Insurance,
		OtherCharges:   req.OtherCharges,
		CreditLimit:    req.CreditLimit,
		BillingDay:     req.BillingDay,
	}

	installments, err := h.svc.CreateCredit(r.Context(), credit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"credit":       credit,
		"installments": installments,
	})
}

// GetSchedule returns a credit's installments with a derived-status summary
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	creditID, err := creditIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid credit ID", http.StatusBadRequest)
		return
	}

	credit, installments, summary, err := h.svc.GetSchedule(creditID, time.Now())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"credit":       credit,
		"installments": installments,
		"summary":      summary,
	})
}

// PayInstallment applies a regular payment to one installment
func (h *Handler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	creditID, err := creditIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid credit ID", http.StatusBadRequest)
		return
	}
	number, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil {
		http.Error(w, "invalid installment number", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount     decimal.Decimal `json:"amount"`
		Date       string          `json:"date"`
		AccountRef string          `json:"account_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	inst, err := h.svc.PayInstallment(creditID, number, req.Amount, date, req.AccountRef)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

// ApplyExtraPayment applies an out-of-schedule payment and re-amortizes
func (h *Handler) ApplyExtraPayment(w http.ResponseWriter, r *http.Request) {
	creditID, err := creditIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid credit ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount   decimal.Decimal         `json:"amount"`
		Date     string                  `json:"date"`
		Type     models.ExtraPaymentType `json:"type"`
		Strategy models.Strategy         `json:"strategy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	outcome, err := h.svc.ApplyExtraPayment(creditID, req.Amount, date, req.Type, req.Strategy)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// SimulatePrepayment projects a prepayment without committing anything
func (h *Handler) SimulatePrepayment(w http.ResponseWriter, r *http.Request) {
	creditID, err := creditIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid credit ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount   decimal.Decimal `json:"amount"`
		Strategy models.Strategy `json:"strategy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sim, err := h.svc.SimulatePrepayment(creditID, req.Amount, req.Strategy)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

// ListExtraPayments returns the extra payment log for a credit
func (h *Handler) ListExtraPayments(w http.ResponseWriter, r *http.Request) {
	creditID, err := creditIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid credit ID", http.StatusBadRequest)
		return
	}

	payments, err := h.svc.ListExtraPayments(creditID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// CardBalance returns pending and available amounts for a credit-card credit
func (h *Handler) CardBalance(w http.ResponseWriter, r *http.Request) {
	creditID, err := creditIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid credit ID", http.StatusBadRequest)
		return
	}

	balance, err := h.svc.CardBalance(creditID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pending_amount":   balance.PendingAmount(),
		"available_credit": balance.AvailableCredit(),
	})
}

func creditIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeEngineError maps the engine's typed errors onto HTTP statuses; the
// violated constraint is surfaced in the response body.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInstallmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrAlreadyPaid),
		errors.Is(err, engine.ErrNoUnpaidInstallments):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, engine.ErrPrecondition),
		errors.Is(err, engine.ErrAmountMismatch),
		errors.Is(err, engine.ErrInsufficientBalance),
		errors.Is(err, engine.ErrInvalidSimulationAmount),
		errors.Is(err, engine.ErrOverpaymentRejected),
		errors.Is(err, engine.ErrUnsupportedCreditType):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
