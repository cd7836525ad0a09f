package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/credit-engine/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO finance.users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM finance.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(account *models.Account) error {
	query := `
		INSERT INTO finance.accounts (user_id, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, account.UserID, account.Balance, account.Currency).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccountOwner returns the user id owning the given account
func (r *Repository) FindAccountOwner(accountID int64) (int64, error) {
	var userID int64
	query := `SELECT user_id FROM finance.accounts WHERE id = $1`
	err := r.db.QueryRow(query, accountID).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("account not found")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find account: %w", err)
	}
	return userID, nil
}

// CreateCredit stores a new credit with its origination terms
func (r *Repository) CreateCredit(credit *models.Credit) error {
	query := `
		INSERT INTO finance.credits (
			user_id, account_id, type, original_amount, currency,
			interest_rate, interest_rate_unit, rate_type, term_months,
			start_date, payment_day, monthly_payment, insurance,
			other_charges, credit_limit, billing_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query,
		credit.UserID, credit.AccountID, credit.Type, credit.OriginalAmount,
		credit.Currency, credit.InterestRate, credit.RateUnit, credit.RateType,
		credit.TermMonths, credit.StartDate, credit.PaymentDay,
		credit.MonthlyPayment, credit.Insurance, credit.OtherCharges,
		credit.CreditLimit, credit.BillingDay).
		Scan(&credit.ID, &credit.CreatedAt, &credit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create credit: %w", err)
	}
	return nil
}

// GetCredit retrieves a credit by id
func (r *Repository) GetCredit(id int64) (*models.Credit, error) {
	credit := &models.Credit{}
	query := `
		SELECT id, user_id, account_id, type, original_amount, currency,
			interest_rate, interest_rate_unit, rate_type, term_months,
			start_date, payment_day, monthly_payment, insurance,
			other_charges, credit_limit, billing_day, created_at, updated_at
		FROM finance.credits
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&credit.ID, &credit.UserID, &credit.AccountID, &credit.Type,
		&credit.OriginalAmount, &credit.Currency, &credit.InterestRate,
		&credit.RateUnit, &credit.RateType, &credit.TermMonths,
		&credit.StartDate, &credit.PaymentDay, &credit.MonthlyPayment,
		&credit.Insurance, &credit.OtherCharges, &credit.CreditLimit,
		&credit.BillingDay, &credit.CreatedAt, &credit.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("credit not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credit: %w", err)
	}
	return credit, nil
}

// SaveInstallments inserts a freshly generated schedule in one transaction
func (r *Repository) SaveInstallments(installments []*models.Installment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertInstallments(tx, installments); err != nil {
		return err
	}
	return tx.Commit()
}

// GetInstallments retrieves a credit's installments ordered by number
func (r *Repository) GetInstallments(creditID int64) ([]*models.Installment, error) {
	query := `
		SELECT id, credit_id, number, due_date, principal, interest, amount,
			paid_amount, paid_date
		FROM finance.installments
		WHERE credit_id = $1
		ORDER BY number`
	rows, err := r.db.Query(query, creditID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

	var installments []*models.Installment
	for rows.Next() {
		inst := &models.Installment{}
		var paidDate sql.NullTime
		if err := rows.Scan(&inst.ID, &inst.CreditID, &inst.Number,
			&inst.DueDate, &inst.Principal, &inst.Interest, &inst.Amount,
			&inst.PaidAmount, &paidDate); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		if paidDate.Valid {
			inst.PaidDate = &paidDate.Time
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

// UpdateInstallmentPayment persists the paid amount and paid date after a
// regular payment
func (r *Repository) UpdateInstallmentPayment(inst *models.Installment) error {
	query := `
		UPDATE finance.installments
		SET paid_amount = $1, paid_date = $2
		WHERE credit_id = $3 AND number = $4`
	var paidDate sql.NullTime
	if inst.PaidDate != nil {
		paidDate = sql.NullTime{Time: *inst.PaidDate, Valid: true}
	}
	if _, err := r.db.Exec(query, inst.PaidAmount, paidDate, inst.CreditID, inst.Number); err != nil {
		return fmt.Errorf("failed to update installment payment: %w", err)
	}
	return nil
}

// ReplaceSchedule rewrites a credit's full installment set and monthly
// payment in one transaction. Used after re-amortization, which treats the
// unpaid tail as disposable.
func (r *Repository) ReplaceSchedule(credit *models.Credit, installments []*models.Installment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM finance.installments WHERE credit_id = $1`, credit.ID); err != nil {
		return fmt.Errorf("failed to clear installments: %w", err)
	}
	if err := insertInstallments(tx, installments); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		UPDATE finance.credits
		SET monthly_payment = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`, credit.MonthlyPayment, credit.ID); err != nil {
		return fmt.Errorf("failed to update credit: %w", err)
	}
	return tx.Commit()
}

func insertInstallments(tx *sql.Tx, installments []*models.Installment) error {
	query := `
		INSERT INTO finance.installments (
			credit_id, number, due_date, principal, interest, amount,
			paid_amount, paid_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	for _, inst := range installments {
		var paidDate sql.NullTime
		if inst.PaidDate != nil {
			paidDate = sql.NullTime{Time: *inst.PaidDate, Valid: true}
		}
		err := tx.QueryRow(query, inst.CreditID, inst.Number, inst.DueDate,
			inst.Principal, inst.Interest, inst.Amount, inst.PaidAmount,
			paidDate).Scan(&inst.ID)
		if err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", inst.Number, err)
		}
	}
	return nil
}

// CreateExtraPayment appends an extra payment log entry
func (r *Repository) CreateExtraPayment(ep *models.ExtraPayment) error {
	query := `
		INSERT INTO finance.extra_payments (id, credit_id, amount, date, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.Exec(query, ep.ID, ep.CreditID, ep.Amount, ep.Date, ep.Type, ep.CreatedAt); err != nil {
		return fmt.Errorf("failed to create extra payment: %w", err)
	}
	return nil
}

// ListExtraPayments returns a credit's extra payment log, oldest first
func (r *Repository) ListExtraPayments(creditID int64) ([]*models.ExtraPayment, error) {
	query := `
		SELECT id, credit_id, amount, date, type, created_at
		FROM finance.extra_payments
		WHERE credit_id = $1
		ORDER BY created_at`
	rows, err := r.db.Query(query, creditID)
	if err != nil {
		return nil, fmt.Errorf("failed to query extra payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.ExtraPayment
	for rows.Next() {
		ep := &models.ExtraPayment{}
		if err := rows.Scan(&ep.ID, &ep.CreditID, &ep.Amount, &ep.Date, &ep.Type, &ep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan extra payment: %w", err)
		}
		payments = append(payments, ep)
	}
	return payments, rows.Err()
}

// CreatePaymentRecord stores a payment audit entry
func (r *Repository) CreatePaymentRecord(pr *models.PaymentRecord) error {
	query := `
		INSERT INTO finance.payment_records (id, credit_id, installment_number, amount, date, account_ref)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.Exec(query, pr.ID, pr.CreditID, pr.InstallmentNumber, pr.Amount, pr.Date, pr.AccountRef); err != nil {
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

// SumPaymentRecords returns the total amount paid against a credit. Used for
// credit-card running balances, which have no installment schedule.
func (r *Repository) SumPaymentRecords(creditID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM finance.payment_records
		WHERE credit_id = $1`
	if err := r.db.QueryRow(query, creditID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payment records: %w", err)
	}
	return total, nil
}

// DueInstallment pairs an unpaid installment with the owning user's contact
// details for reminder delivery.
type DueInstallment struct {
	Email       string
	Username    string
	Installment *models.Installment
}

// ListDueInstallments returns unpaid installments due before the given
// horizon, joined with user contact details
func (r *Repository) ListDueInstallments(before time.Time) ([]*DueInstallment, error) {
	query := `
		SELECT u.email, u.username,
			i.id, i.credit_id, i.number, i.due_date, i.principal, i.interest,
			i.amount, i.paid_amount, i.paid_date
		FROM finance.installments i
		JOIN finance.credits c ON c.id = i.credit_id
		JOIN finance.users u ON u.id = c.user_id
		WHERE i.due_date <= $1 AND i.paid_amount < i.amount
		ORDER BY i.due_date`
	rows, err := r.db.Query(query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query due installments: %w", err)
	}
	defer rows.Close()

	var due []*DueInstallment
	for rows.Next() {
		d := &DueInstallment{Installment: &models.Installment{}}
		inst := d.Installment
		var paidDate sql.NullTime
		if err := rows.Scan(&d.Email, &d.Username, &inst.ID, &inst.CreditID,
			&inst.Number, &inst.DueDate, &inst.Principal, &inst.Interest,
			&inst.Amount, &inst.PaidAmount, &paidDate); err != nil {
			return nil, fmt.Errorf("failed to scan due installment: %w", err)
		}
		if paidDate.Valid {
			inst.PaidDate = &paidDate.Time
		}
		due = append(due, d)
	}
	return due, rows.Err()
}
