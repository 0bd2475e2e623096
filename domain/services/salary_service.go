package services

import (
	"context"
	"fmt"

	"eddies/domain/entities"
	"eddies/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type salaryService struct {
	accounts     interfaces.AccountService
	accountRepo  interfaces.AccountRepository
	settingsRepo interfaces.GuildSettingsRepository
}

// NewSalaryService creates a new salary service
func NewSalaryService(
	accounts interfaces.AccountService,
	accountRepo interfaces.AccountRepository,
	settingsRepo interfaces.GuildSettingsRepository,
) interfaces.SalaryService {
	return &salaryService{
		accounts:     accounts,
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
	}
}

// DistributeDailySalary pays every active account in the guild. Each account
// receives max(activity gain, daily minimum); the king takes a cut of every
// non-king gain, collected in one credit at the end. Accounts with activity
// have their salary floor reset, idle accounts decay toward zero.
func (s *salaryService) DistributeDailySalary(ctx context.Context, activityGains map[int64]int64) (*entities.SalarySummary, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	accounts, err := s.accountRepo.GetAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}

	summary := &entities.SalarySummary{
		KingDiscordID: settings.KingDiscordID,
		NetGains:      make(map[int64]int64),
		Taxed:         make(map[int64]int64),
	}

	for _, account := range accounts {
		gain := activityGains[account.DiscordID]
		if gain < account.DailyMinimum {
			gain = account.DailyMinimum
		}

		tax := int64(0)
		if settings.KingDiscordID != nil && !settings.IsKing(account.DiscordID) {
			tax = int64(float64(gain) * settings.TaxRate)
		}
		net := gain - tax

		if net > 0 {
			if _, err := s.accounts.Credit(ctx, account.DiscordID, net, entities.TransactionDetails{
				Type: entities.TransactionTypeDailySalary,
			}); err != nil {
				log.WithError(err).WithField("discordID", account.DiscordID).Error("Failed to pay daily salary")
				continue
			}
			summary.NetGains[account.DiscordID] = net
		}
		if tax > 0 {
			summary.Taxed[account.DiscordID] = tax
			summary.TaxGains += tax
		}

		if err := s.adjustDailyMinimum(ctx, account, activityGains[account.DiscordID] > 0); err != nil {
			log.WithError(err).WithField("discordID", account.DiscordID).Error("Failed to adjust daily minimum")
		}
	}

	if summary.TaxGains > 0 && settings.KingDiscordID != nil {
		if _, err := s.accounts.Credit(ctx, *settings.KingDiscordID, summary.TaxGains, entities.TransactionDetails{
			Type: entities.TransactionTypeTaxGains,
		}); err != nil {
			return nil, fmt.Errorf("failed to credit king's tax: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"guildID":  settings.GuildID,
		"accounts": len(accounts),
		"paid":     len(summary.NetGains),
		"taxGains": summary.TaxGains,
	}).Info("Distributed daily salary")

	return summary, nil
}

// adjustDailyMinimum resets the salary floor for users who earned activity
// gains and decays it by one for idle users
func (s *salaryService) adjustDailyMinimum(ctx context.Context, account *entities.Account, active bool) error {
	if active {
		if account.DailyMinimum != entities.ActiveDailyMinimum {
			return s.accountRepo.SetDailyMinimum(ctx, account.DiscordID, entities.ActiveDailyMinimum)
		}
		return nil
	}
	if account.DailyMinimum > 0 {
		return s.accountRepo.DecayDailyMinimum(ctx, account.DiscordID)
	}
	return nil
}
