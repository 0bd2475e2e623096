package scheduler

import (
	"context"
	"fmt"
	"time"

	"eddies/bot"
	"eddies/config"
	"eddies/domain/interfaces"
	"eddies/domain/services"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the recurring economy jobs: the daily salary, the bet
// timeout sweep and the weekly revolution with its resolution tick.
type Scheduler struct {
	cfg        *config.Config
	uowFactory interfaces.UnitOfWorkFactory
	bot        *bot.Bot
	cron       *cron.Cron
}

// New creates a scheduler wired to the bot's features
func New(cfg *config.Config, uowFactory interfaces.UnitOfWorkFactory, b *bot.Bot) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		uowFactory: uowFactory,
		bot:        b,
		cron:       cron.New(),
	}
}

// Start registers the cron jobs and starts the ticker
func (s *Scheduler) Start() error {
	salarySpec := fmt.Sprintf("%d %d * * *", s.cfg.SalaryMinute, s.cfg.SalaryHour)
	if _, err := s.cron.AddFunc(salarySpec, s.runSalary); err != nil {
		return fmt.Errorf("failed to schedule salary job: %w", err)
	}

	// Sweep timed-out bets every five minutes
	if _, err := s.cron.AddFunc("*/5 * * * *", s.runBetSweep); err != nil {
		return fmt.Errorf("failed to schedule bet sweep: %w", err)
	}

	// A fresh uprising every Sunday afternoon
	if _, err := s.cron.AddFunc("0 16 * * 0", s.runRevolutionStart); err != nil {
		return fmt.Errorf("failed to schedule revolution start: %w", err)
	}

	// Resolve expired revolutions shortly after their window closes
	if _, err := s.cron.AddFunc("*/5 * * * *", s.runRevolutionResolve); err != nil {
		return fmt.Errorf("failed to schedule revolution resolve: %w", err)
	}

	s.cron.Start()
	log.WithField("salary", salarySpec).Info("Scheduler started")
	return nil
}

// Stop stops the ticker and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

// runSalary distributes the daily salary in every connected guild
func (s *Scheduler) runSalary() {
	ctx := context.Background()

	for _, guildID := range s.bot.GuildIDs() {
		gains := s.bot.Activity().Drain(guildID)

		uow := s.uowFactory.CreateForGuild(guildID)
		if err := uow.Begin(ctx); err != nil {
			log.WithError(err).WithField("guildID", guildID).Error("Salary: failed to begin transaction")
			continue
		}

		accounts := services.NewAccountService(
			uow.AccountRepository(),
			uow.TransactionRepository(),
			uow.EventPublisher(),
		)
		salary := services.NewSalaryService(
			accounts,
			uow.AccountRepository(),
			uow.GuildSettingsRepository(),
		)

		summary, err := salary.DistributeDailySalary(ctx, gains)
		if err != nil {
			uow.Rollback()
			log.WithError(err).WithField("guildID", guildID).Error("Salary distribution failed")
			continue
		}
		if err := uow.Commit(); err != nil {
			log.WithError(err).WithField("guildID", guildID).Error("Salary: failed to commit")
			continue
		}

		log.WithFields(log.Fields{
			"guildID":  guildID,
			"accounts": len(summary.NetGains),
			"total":    summary.Total(),
			"taxed":    summary.TaxGains,
		}).Info("Daily salary distributed")
	}
}

// runBetSweep locks open bets whose timeout has passed
func (s *Scheduler) runBetSweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	for _, guildID := range s.bot.GuildIDs() {
		if err := s.bot.BetsFeature().SweepExpired(ctx, guildID, now); err != nil {
			log.WithError(err).WithField("guildID", guildID).Error("Bet sweep failed")
		}
	}
}

// runRevolutionStart opens a new uprising in every guild with a king
func (s *Scheduler) runRevolutionStart() {
	ctx := context.Background()
	now := time.Now().UTC()

	for _, guildID := range s.bot.GuildIDs() {
		if err := s.bot.RevolutionFeature().StartScheduled(ctx, guildID, now); err != nil {
			log.WithError(err).WithField("guildID", guildID).Error("Revolution start failed")
		}
	}
}

// runRevolutionResolve resolves any revolution whose window has expired
func (s *Scheduler) runRevolutionResolve() {
	ctx := context.Background()
	now := time.Now().UTC()

	for _, guildID := range s.bot.GuildIDs() {
		if err := s.bot.RevolutionFeature().ResolveDue(ctx, guildID, now); err != nil {
			log.WithError(err).WithField("guildID", guildID).Error("Revolution resolve failed")
		}
	}
}
