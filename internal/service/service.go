package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/credit-engine/internal/config"
	"github.com/fintrack/credit-engine/internal/engine"
	"github.com/fintrack/credit-engine/internal/models"
	"github.com/fintrack/credit-engine/internal/repository"
)

// RateSource supplies the market rate used for variable-rate credits,
// resolved once at creation.
type RateSource interface {
	KeyRate() (decimal.Decimal, error)
}

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	rates  RateSource
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, rates RateSource) *Service {
	return &Service{repo: repo, log: log, config: cfg, rates: rates}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// CreateAccount creates a new account for the authenticated user
func (s *Service) CreateAccount(ctx context.Context, currency string) (*models.Account, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: currency,
	}
	if err := s.repo.CreateAccount(account); err != nil {
		return nil, err
	}

	s.log.Infof("Account created for user %d: %s", userID, account.Currency)
	return account, nil
}

// CreateCredit originates a credit for the authenticated user. Variable-rate
// credits resolve their rate from the market source at creation; installment
// credits also get their full schedule generated and stored.
func (s *Service) CreateCredit(ctx context.Context, credit *models.Credit) ([]*models.Installment, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	accountOwner, err := s.repo.FindAccountOwner(credit.AccountID)
	if err != nil {
		return nil, err
	}
	if accountOwner != userID {
		return nil, fmt.Errorf("account does not belong to user")
	}
	credit.UserID = userID

	if credit.RateType == models.RateTypeVariable {
		rate, err := s.rates.KeyRate()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve variable rate: %w", err)
		}
		credit.InterestRate = rate
		credit.RateUnit = models.RateUnitAnnual
		s.log.Infof("Resolved variable rate %s%% for new credit", rate.StringFixed(2))
	}

	if credit.IsCreditCard() {
		if err := s.repo.CreateCredit(credit); err != nil {
			return nil, err
		}
		s.log.Infof("Credit card credit %d created for user %d", credit.ID, userID)
		return nil, nil
	}

	installments, err := engine.GenerateSchedule(credit)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateCredit(credit); err != nil {
		return nil, err
	}
	for _, inst := range installments {
		inst.CreditID = credit.ID
	}
	if err := s.repo.SaveInstallments(installments); err != nil {
		return nil, err
	}

	s.log.Infof("Credit %d created for user %d: %s %s over %d months",
		credit.ID, userID, credit.OriginalAmount.StringFixed(2), credit.Currency, credit.TermMonths)
	return installments, nil
}

// GetSchedule returns a credit with its installments and a status summary
func (s *Service) GetSchedule(creditID int64, asOf time.Time) (*models.Credit, []*models.Installment, *models.ScheduleSummary, error) {
	ledger, err := s.loadLedger(creditID)
	if err != nil {
		return nil, nil, nil, err
	}
	return ledger.Credit, ledger.Installments, ledger.Summary(asOf), nil
}

// PayInstallment applies a regular payment against one installment
func (s *Service) PayInstallment(creditID int64, number int, amount decimal.Decimal, date time.Time, accountRef string) (*models.Installment, error) {
	ledger, err := s.loadLedger(creditID)
	if err != nil {
		return nil, err
	}

	inst, err := ledger.ApplyPayment(number, amount, date, accountRef)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInstallmentPayment(inst); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePaymentRecord(ledger.Payments[len(ledger.Payments)-1]); err != nil {
		return nil, err
	}

	s.log.Infof("Payment of %s applied to credit %d installment %d",
		amount.StringFixed(2), creditID, number)
	return inst, nil
}

// ApplyExtraPayment applies an out-of-schedule payment and persists the
// re-amortized schedule
func (s *Service) ApplyExtraPayment(creditID int64, amount decimal.Decimal, date time.Time, typ models.ExtraPaymentType, strategy models.Strategy) (*engine.ExtraPaymentOutcome, error) {
	ledger, err := s.loadLedger(creditID)
	if err != nil {
		return nil, err
	}

	outcome, err := engine.ApplyExtraPayment(ledger, amount, date, typ, strategy)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceSchedule(ledger.Credit, ledger.Installments); err != nil {
		return nil, err
	}
	if err := s.repo.CreateExtraPayment(outcome.ExtraPayment); err != nil {
		return nil, err
	}

	s.log.Infof("Extra payment of %s (%s/%s) applied to credit %d: %d installments remaining",
		amount.StringFixed(2), typ, strategy, creditID, outcome.RemainingInstallments)
	return outcome, nil
}

// SimulatePrepayment projects an extra payment without committing anything
func (s *Service) SimulatePrepayment(creditID int64, amount decimal.Decimal, strategy models.Strategy) (*models.PrepaymentSimulation, error) {
	ledger, err := s.loadLedger(creditID)
	if err != nil {
		return nil, err
	}
	return engine.SimulatePrepayment(ledger, amount, strategy)
}

// ListExtraPayments returns a credit's extra payment log
func (s *Service) ListExtraPayments(creditID int64) ([]*models.ExtraPayment, error) {
	return s.repo.ListExtraPayments(creditID)
}

// CardBalance computes the running balance view for a credit-card credit
func (s *Service) CardBalance(creditID int64) (*engine.CardBalance, error) {
	credit, err := s.repo.GetCredit(creditID)
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.SumPaymentRecords(creditID)
	if err != nil {
		return nil, err
	}
	return engine.NewCardBalance(credit, paid)
}

func (s *Service) loadLedger(creditID int64) (*engine.Ledger, error) {
	credit, err := s.repo.GetCredit(creditID)
	if err != nil {
		return nil, err
	}
	installments, err := s.repo.GetInstallments(creditID)
	if err != nil {
		return nil, err
	}
	return engine.NewLedger(credit, installments), nil
}

func userIDFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value("userID").(string)
	if !ok || userIDStr == "" {
		return 0, fmt.Errorf("user ID not found in context")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return userID, nil
}
