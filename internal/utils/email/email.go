package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/credit-engine/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder sends a payment reminder email for an installment that
// is due soon or already overdue
func (s *Sender) SendPaymentReminder(to, username string, dueDate time.Time, amount decimal.Decimal, isOverdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if isOverdue {
		e.Subject = "Overdue Credit Payment Notification"
	} else {
		e.Subject = "Upcoming Credit Payment Reminder"
	}

	body := fmt.Sprintf("Dear %s,\n\n", username)
	if isOverdue {
		body += fmt.Sprintf(
			"Your credit payment of %s was due on %s and is now overdue.\n"+
				"Please make the payment as soon as possible.\n",
			amount.StringFixed(2), dueDate.Format("2006-01-02"),
		)
	} else {
		body += fmt.Sprintf(
			"This is a reminder that your credit payment of %s is due on %s.\n"+
				"Please ensure sufficient funds are available in your account.\n",
			amount.StringFixed(2), dueDate.Format("2006-01-02"),
		)
	}
	body += "\nBest regards,\nFintrack"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
