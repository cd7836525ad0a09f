package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/credit-engine/internal/config"
	"github.com/fintrack/credit-engine/internal/engine"
	"github.com/fintrack/credit-engine/internal/models"
	"github.com/fintrack/credit-engine/internal/repository"
	"github.com/fintrack/credit-engine/internal/utils/email"
)

// Scheduler runs the daily scan for upcoming and overdue installments and
// sends payment reminders.
type Scheduler struct {
	repo   *repository.Repository
	sender *email.Sender
	log    *logrus.Logger
	config *config.Config
	cron   *cron.Cron
}

// NewScheduler initializes a new scheduler
func NewScheduler(repo *repository.Repository, sender *email.Sender, log *logrus.Logger, cfg *config.Config) *Scheduler {
	return &Scheduler{
		repo:   repo,
		sender: sender,
		log:    log,
		config: cfg,
		cron:   cron.New(),
	}
}

// Start schedules the daily reminder scan at 09:00
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 9 * * *", s.RunReminderScan); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running scan to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

// RunReminderScan sends a reminder for every unpaid installment due within
// the configured window, and an overdue notification for those past due.
func (s *Scheduler) RunReminderScan() {
	now := time.Now()
	horizon := now.AddDate(0, 0, s.config.ReminderDays)

	due, err := s.repo.ListDueInstallments(horizon)
	if err != nil {
		s.log.Errorf("Reminder scan failed: %v", err)
		return
	}

	sent := 0
	for _, d := range due {
		inst := d.Installment
		isOverdue := engine.StatusOf(inst, now) == models.InstallmentStatusOverdue
		if err := s.sender.SendPaymentReminder(d.Email, d.Username, inst.DueDate, inst.Remaining(), isOverdue); err != nil {
			s.log.Errorf("Failed to send reminder for credit %d installment %d: %v",
				inst.CreditID, inst.Number, err)
			continue
		}
		sent++
	}
	s.log.Infof("Reminder scan complete: %d installments due, %d reminders sent", len(due), sent)
}
