package services

import (
	"context"
	"fmt"

	"eddies/domain/entities"
	"eddies/domain/events"
	"eddies/domain/interfaces"
	"eddies/domain/utils"

	log "github.com/sirupsen/logrus"
)

type accountService struct {
	accountRepo interfaces.AccountRepository
	txRepo      interfaces.TransactionRepository
	publisher   interfaces.EventPublisher
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo interfaces.AccountRepository,
	txRepo interfaces.TransactionRepository,
	publisher interfaces.EventPublisher,
) interfaces.AccountService {
	return &accountService{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		publisher:   publisher,
	}
}

// GetAccount returns the account for a user in the scoped guild
func (s *accountService) GetAccount(ctx context.Context, discordID int64) (*entities.Account, error) {
	account, err := s.accountRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: user %d", entities.ErrAccountNotFound, discordID)
	}
	return account, nil
}

// EnsureAccount creates an account on first join or reactivates an inactive
// one. The balance of a returning user is preserved.
func (s *accountService) EnsureAccount(ctx context.Context, discordID int64) (*entities.Account, error) {
	existing, err := s.accountRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if existing != nil {
		if !existing.IsActive {
			if err := s.accountRepo.SetActive(ctx, discordID, true); err != nil {
				return nil, fmt.Errorf("failed to reactivate account: %w", err)
			}
			existing.IsActive = true
			log.WithFields(log.Fields{
				"discordID": discordID,
				"guildID":   existing.GuildID,
				"balance":   existing.Balance,
			}).Info("Reactivated returning account")
		}
		return existing, nil
	}

	account, err := s.accountRepo.Create(ctx, discordID, entities.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.recordEntry(ctx, account, entities.StartingBalance, entities.TransactionDetails{
		Type: entities.TransactionTypeUserCreate,
	}); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(events.AccountCreatedEvent{
		DiscordID:      discordID,
		GuildID:        account.GuildID,
		InitialBalance: account.Balance,
	}); err != nil {
		log.WithError(err).Error("Failed to publish account created event")
	}

	log.WithFields(log.Fields{
		"discordID": discordID,
		"guildID":   account.GuildID,
	}).Info("Created new eddies account")

	return account, nil
}

// Deactivate flags the account inactive when the user leaves the guild
func (s *accountService) Deactivate(ctx context.Context, discordID int64) error {
	if _, err := s.GetAccount(ctx, discordID); err != nil {
		return err
	}
	if err := s.accountRepo.SetActive(ctx, discordID, false); err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	return nil
}

// Credit adds eddies and appends the paired ledger entry
func (s *accountService) Credit(ctx context.Context, discordID int64, amount int64, details entities.TransactionDetails) (*entities.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit of %d", entities.ErrInvalidAmount, amount)
	}

	account, err := s.accountRepo.AdjustBalance(ctx, discordID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: user %d", entities.ErrAccountNotFound, discordID)
	}

	if err := s.recordEntry(ctx, account, amount, details); err != nil {
		return nil, err
	}
	return account, nil
}

// Debit subtracts eddies only when the balance covers the amount. The guard
// lives in the single conditional update, so two racing debits can never
// drive the balance negative.
func (s *accountService) Debit(ctx context.Context, discordID int64, amount int64, details entities.TransactionDetails) (*entities.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: debit of %d", entities.ErrInvalidAmount, amount)
	}

	account, debited, err := s.accountRepo.TryDebit(ctx, discordID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: user %d", entities.ErrAccountNotFound, discordID)
	}
	if !debited {
		return nil, fmt.Errorf("%w: have %s, need %s", entities.ErrInsufficientFunds,
			utils.FormatEddies(account.Balance), utils.FormatEddies(amount))
	}

	if err := s.recordEntry(ctx, account, -amount, details); err != nil {
		return nil, err
	}
	return account, nil
}

// SetBalance sets the balance to an absolute value (admin override), recording
// the difference so the ledger still sums to the balance
func (s *accountService) SetBalance(ctx context.Context, discordID int64, value int64, comment string) (*entities.Account, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: balance cannot be negative", entities.ErrInvalidAmount)
	}

	before, err := s.GetAccount(ctx, discordID)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.SetBalance(ctx, discordID, value)
	if err != nil {
		return nil, fmt.Errorf("failed to set balance: %w", err)
	}

	delta := value - before.Balance
	if delta != 0 {
		if err := s.recordEntry(ctx, account, delta, entities.TransactionDetails{
			Type:    entities.TransactionTypeOverride,
			Comment: &comment,
		}); err != nil {
			return nil, err
		}
	}
	return account, nil
}

// RecordMarker appends a comment-only history entry with no balance change
func (s *accountService) RecordMarker(ctx context.Context, discordID int64, details entities.TransactionDetails) error {
	account, err := s.GetAccount(ctx, discordID)
	if err != nil {
		return err
	}

	entry := &entities.TransactionEntry{
		DiscordID:      discordID,
		GuildID:        account.GuildID,
		Type:           details.Type,
		Amount:         0,
		BetID:          details.BetID,
		OtherDiscordID: details.OtherDiscordID,
		Comment:        details.Comment,
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid marker entry: %w", err)
	}
	if err := s.txRepo.Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record marker entry: %w", err)
	}
	return nil
}

// Gift moves eddies between two users, leaving a give/receive pair that
// references the counterparty on both sides
func (s *accountService) Gift(ctx context.Context, fromDiscordID, toDiscordID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: gift of %d", entities.ErrInvalidAmount, amount)
	}
	if fromDiscordID == toDiscordID {
		return fmt.Errorf("%w: cannot gift eddies to yourself", entities.ErrInvalidArgument)
	}

	// Recipient must exist before the giver is debited
	if _, err := s.GetAccount(ctx, toDiscordID); err != nil {
		return err
	}

	if _, err := s.Debit(ctx, fromDiscordID, amount, entities.TransactionDetails{
		Type:           entities.TransactionTypeGiftGive,
		OtherDiscordID: &toDiscordID,
	}); err != nil {
		return err
	}

	if _, err := s.Credit(ctx, toDiscordID, amount, entities.TransactionDetails{
		Type:           entities.TransactionTypeGiftReceive,
		OtherDiscordID: &fromDiscordID,
	}); err != nil {
		// Reverse the debit so the eddies are not lost in transit
		if _, reverseErr := s.Credit(ctx, fromDiscordID, amount, entities.TransactionDetails{
			Type:           entities.TransactionTypeGiftReceive,
			OtherDiscordID: &toDiscordID,
			Comment:        strPtr("gift reversal"),
		}); reverseErr != nil {
			log.WithError(reverseErr).WithFields(log.Fields{
				"from":   fromDiscordID,
				"to":     toDiscordID,
				"amount": amount,
			}).Error("Failed to reverse gift debit")
		}
		return err
	}
	return nil
}

// Transactions returns a user's ledger entries, newest first
func (s *accountService) Transactions(ctx context.Context, discordID int64, limit int) ([]*entities.TransactionEntry, error) {
	if _, err := s.GetAccount(ctx, discordID); err != nil {
		return nil, err
	}
	entries, err := s.txRepo.GetByUser(ctx, discordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return entries, nil
}

// ReconcileBalance replays the ledger and returns (balance, ledger sum)
func (s *accountService) ReconcileBalance(ctx context.Context, discordID int64) (int64, int64, error) {
	account, err := s.GetAccount(ctx, discordID)
	if err != nil {
		return 0, 0, err
	}
	sum, err := s.txRepo.SumByUser(ctx, discordID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum ledger: %w", err)
	}
	if sum != account.Balance {
		log.WithFields(log.Fields{
			"discordID": discordID,
			"guildID":   account.GuildID,
			"balance":   account.Balance,
			"ledgerSum": sum,
		}).Warn("Ledger sum does not match balance")
	}
	return account.Balance, sum, nil
}

// Leaderboard returns the top active balances
func (s *accountService) Leaderboard(ctx context.Context, limit int) ([]*entities.Account, error) {
	accounts, err := s.accountRepo.GetTopBalances(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return accounts, nil
}

// HighScores returns the top historical high scores
func (s *accountService) HighScores(ctx context.Context, limit int) ([]*entities.Account, error) {
	accounts, err := s.accountRepo.GetTopHighScores(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get high scores: %w", err)
	}
	return accounts, nil
}

// recordEntry appends the ledger entry paired with a balance change and
// publishes the balance change event
func (s *accountService) recordEntry(ctx context.Context, account *entities.Account, amount int64, details entities.TransactionDetails) error {
	entry := &entities.TransactionEntry{
		DiscordID:      account.DiscordID,
		GuildID:        account.GuildID,
		Type:           details.Type,
		Amount:         amount,
		BetID:          details.BetID,
		OtherDiscordID: details.OtherDiscordID,
		Comment:        details.Comment,
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid transaction entry: %w", err)
	}
	if err := s.txRepo.Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	if err := s.publisher.Publish(events.BalanceChangeEvent{
		DiscordID:       account.DiscordID,
		GuildID:         account.GuildID,
		OldBalance:      account.Balance - amount,
		NewBalance:      account.Balance,
		TransactionType: details.Type,
		ChangeAmount:    amount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
