package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eddies/domain/entities"
	"eddies/domain/events"
	"eddies/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const creatorQuotaBonus = 2

type bettingService struct {
	accounts     interfaces.AccountService
	betRepo      interfaces.BetRepository
	settingsRepo interfaces.GuildSettingsRepository
	publisher    interfaces.EventPublisher
	privileged   func(discordID int64) bool
}

// NewBettingService creates a new betting service. The privileged predicate
// reports whether a user carries the supporter role that raises their
// open-bet quota; pass nil when the surface has no such concept.
func NewBettingService(
	accounts interfaces.AccountService,
	betRepo interfaces.BetRepository,
	settingsRepo interfaces.GuildSettingsRepository,
	publisher interfaces.EventPublisher,
	privileged func(discordID int64) bool,
) interfaces.BettingService {
	return &bettingService{
		accounts:     accounts,
		betRepo:      betRepo,
		settingsRepo: settingsRepo,
		publisher:    publisher,
		privileged:   privileged,
	}
}

// CreateBet creates an open bet with the given outcome labels. Outcome keys
// are assigned from the numbered emoji set in option order.
func (s *bettingService) CreateBet(ctx context.Context, creatorID int64, title string, options []string, timeout time.Duration, private bool) (*entities.BetDetail, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", entities.ErrInvalidArgument)
	}
	if len(options) < entities.MinBetOptions || len(options) > entities.MaxBetOptions {
		return nil, fmt.Errorf("%w: need %d-%d options, got %d", entities.ErrInvalidArgument,
			entities.MinBetOptions, entities.MaxBetOptions, len(options))
	}
	seen := make(map[string]bool, len(options))
	for _, label := range options {
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("%w: empty option label", entities.ErrInvalidArgument)
		}
		if seen[label] {
			return nil, fmt.Errorf("%w: duplicate option %q", entities.ErrInvalidArgument, label)
		}
		seen[label] = true
	}

	account, err := s.accounts.GetAccount(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	quota, err := s.openBetQuota(ctx, account)
	if err != nil {
		return nil, err
	}
	openCount, err := s.betRepo.CountOpenByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count open bets: %w", err)
	}
	if openCount > quota {
		return nil, fmt.Errorf("%w: %d bets already open, quota is %d", entities.ErrForbidden, openCount, quota)
	}

	betID, err := s.betRepo.NextBetID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate bet ID: %w", err)
	}

	bet := &entities.Bet{
		BetID:            betID,
		GuildID:          account.GuildID,
		CreatorDiscordID: creatorID,
		Title:            title,
		State:            entities.BetStateOpen,
		IsPrivate:        private,
	}
	if timeout > 0 {
		timeoutAt := time.Now().UTC().Add(timeout)
		bet.TimeoutAt = &timeoutAt
	}

	betOptions := make([]*entities.BetOption, len(options))
	for i, label := range options {
		betOptions[i] = &entities.BetOption{
			OutcomeKey:  entities.OutcomeKeys[i],
			Label:       strings.TrimSpace(label),
			OptionOrder: int16(i),
		}
	}

	if err := s.betRepo.CreateWithOptions(ctx, bet, betOptions); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	log.WithFields(log.Fields{
		"betID":   betID,
		"guildID": bet.GuildID,
		"creator": creatorID,
		"options": len(options),
	}).Info("Created bet")

	s.publishStateChange(bet, "")
	return &entities.BetDetail{Bet: bet, Options: betOptions}, nil
}

// PlaceStake debits the better and records or grows their stake. A better is
// locked to the first outcome they chose.
func (s *bettingService) PlaceStake(ctx context.Context, betID string, betterID int64, outcomeKey string, amount int64) (*entities.BetDetail, error) {
	detail, err := s.betRepo.GetDetailByBetID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: bet %s", entities.ErrBetNotFound, betID)
	}
	if !detail.Bet.IsOpen() {
		return nil, fmt.Errorf("%w: bet %s is %s", entities.ErrBetNotOpen, betID, detail.Bet.State)
	}
	if detail.Option(outcomeKey) == nil {
		return nil, fmt.Errorf("%w: %s is not an outcome of bet %s", entities.ErrInvalidOutcome, outcomeKey, betID)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: stake of %d", entities.ErrInvalidAmount, amount)
	}

	existing := detail.StakeFor(betterID)
	if existing != nil && existing.OutcomeKey != outcomeKey {
		return nil, fmt.Errorf("%w: already staked on %s", entities.ErrWrongOutcome, existing.OutcomeKey)
	}

	if _, err := s.accounts.Debit(ctx, betterID, amount, entities.TransactionDetails{
		Type:  entities.TransactionTypeBetPlace,
		BetID: &betID,
	}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if existing != nil {
		err = s.betRepo.IncrementStake(ctx, existing.ID, amount, now)
	} else {
		err = s.betRepo.CreateStake(ctx, &entities.BetStake{
			BetID:      detail.Bet.ID,
			DiscordID:  betterID,
			OutcomeKey: outcomeKey,
			Amount:     amount,
			FirstBetAt: now,
			LastBetAt:  now,
		})
	}
	if err != nil {
		// The debit landed but the stake did not; give the eddies back
		if _, refundErr := s.accounts.Credit(ctx, betterID, amount, entities.TransactionDetails{
			Type:    entities.TransactionTypeBetRefund,
			BetID:   &betID,
			Comment: strPtr("stake write failed"),
		}); refundErr != nil {
			log.WithError(refundErr).WithFields(log.Fields{
				"betID":  betID,
				"better": betterID,
				"amount": amount,
			}).Error("Failed to refund after stake write failure")
		}
		return nil, fmt.Errorf("failed to record stake: %w", err)
	}

	if err := s.publisher.Publish(events.StakePlacedEvent{
		DiscordID:  betterID,
		GuildID:    detail.Bet.GuildID,
		BetID:      betID,
		OutcomeKey: outcomeKey,
		Amount:     amount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish stake placed event")
	}

	updated, err := s.betRepo.GetDetailByBetID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload bet: %w", err)
	}
	return updated, nil
}

// LockBet stops an open bet accepting stakes. Only the creator may lock.
func (s *bettingService) LockBet(ctx context.Context, betID string, callerID int64) (*entities.Bet, error) {
	detail, err := s.betRepo.GetDetailByBetID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: bet %s", entities.ErrBetNotFound, betID)
	}
	if callerID != detail.Bet.CreatorDiscordID {
		return nil, fmt.Errorf("%w: only the creator can lock a bet", entities.ErrForbidden)
	}
	if detail.Bet.IsSettled() {
		return nil, fmt.Errorf("%w: bet %s", entities.ErrAlreadySettled, betID)
	}
	if !detail.Bet.IsOpen() {
		return detail.Bet, nil
	}

	detail.Bet.Lock()
	if err := s.betRepo.Update(ctx, detail.Bet); err != nil {
		return nil, fmt.Errorf("failed to lock bet: %w", err)
	}

	s.publishStateChange(detail.Bet, entities.BetStateOpen)
	return detail.Bet, nil
}

// CloseBet settles a bet with the winning outcome and pays the winners
// double their stake. Settlement is claimed atomically before any payout, so
// retries and racing closers see ErrAlreadySettled instead of paying twice.
func (s *bettingService) CloseBet(ctx context.Context, betID string, callerID int64, winningOutcomeKey string) (*entities.BetSettlement, error) {
	detail, err := s.betRepo.GetDetailByBetID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: bet %s", entities.ErrBetNotFound, betID)
	}
	if callerID != detail.Bet.CreatorDiscordID {
		return nil, fmt.Errorf("%w: only the creator can close a bet", entities.ErrForbidden)
	}
	if detail.Bet.IsSettled() {
		return nil, fmt.Errorf("%w: bet %s", entities.ErrAlreadySettled, betID)
	}
	winningOption := detail.Option(winningOutcomeKey)
	if winningOption == nil {
		return nil, fmt.Errorf("%w: %s is not an outcome of bet %s", entities.ErrInvalidOutcome, winningOutcomeKey, betID)
	}

	now := time.Now().UTC()
	claimed, err := s.betRepo.ClaimSettle(ctx, detail.Bet.ID, winningOutcomeKey, now)
	if err != nil {
		return nil, fmt.Errorf("failed to claim settlement: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: bet %s", entities.ErrAlreadySettled, betID)
	}

	oldState := detail.Bet.State
	detail.Bet.Settle(winningOutcomeKey, now)

	settlement := &entities.BetSettlement{
		Bet:           detail.Bet,
		WinningOption: winningOption,
		Winners:       make(map[int64]int64),
		Losers:        make(map[int64]int64),
	}

	// A lone better who picked the winner had no counterparty to win from;
	// their stake comes back as a refund instead of doubling
	if sole := detail.SoleStake(); sole != nil && sole.OutcomeKey == winningOutcomeKey {
		if _, err := s.accounts.Credit(ctx, sole.DiscordID, sole.Amount, entities.TransactionDetails{
			Type:  entities.TransactionTypeBetRefund,
			BetID: &betID,
		}); err != nil {
			return nil, fmt.Errorf("failed to refund sole better: %w", err)
		}
		settlement.Winners[sole.DiscordID] = sole.Amount
		settlement.Refunded = true
	} else {
		for _, stake := range detail.Stakes {
			if stake.OutcomeKey != winningOutcomeKey {
				settlement.Losers[stake.DiscordID] = stake.Amount
				continue
			}
			payout := stake.Amount * 2
			if _, err := s.accounts.Credit(ctx, stake.DiscordID, payout, entities.TransactionDetails{
				Type:  entities.TransactionTypeBetWin,
				BetID: &betID,
			}); err != nil {
				return nil, fmt.Errorf("failed to pay winner %d: %w", stake.DiscordID, err)
			}
			settlement.Winners[stake.DiscordID] = payout
		}
	}

	s.publishStateChange(detail.Bet, oldState)
	if err := s.publisher.Publish(events.BetSettledEvent{
		BetID:    betID,
		GuildID:  detail.Bet.GuildID,
		Result:   winningOutcomeKey,
		Winners:  len(settlement.Winners),
		Losers:   len(settlement.Losers),
		TotalPot: detail.TotalStaked(),
	}); err != nil {
		log.WithError(err).Error("Failed to publish bet settled event")
	}

	log.WithFields(log.Fields{
		"betID":   betID,
		"guildID": detail.Bet.GuildID,
		"result":  winningOutcomeKey,
		"winners": len(settlement.Winners),
		"losers":  len(settlement.Losers),
	}).Info("Settled bet")

	return settlement, nil
}

// GetBet returns a bet with its options and stakes
func (s *bettingService) GetBet(ctx context.Context, betID string) (*entities.BetDetail, error) {
	detail, err := s.betRepo.GetDetailByBetID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: bet %s", entities.ErrBetNotFound, betID)
	}
	return detail, nil
}

// OpenBets lists the guild's open bets
func (s *bettingService) OpenBets(ctx context.Context) ([]*entities.Bet, error) {
	bets, err := s.betRepo.GetOpenBets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open bets: %w", err)
	}
	return bets, nil
}

// SweepExpiredBets locks open bets whose timeout has passed and returns them
// so the caller can prompt their creators to settle. Timeouts never settle a
// bet on their own.
func (s *bettingService) SweepExpiredBets(ctx context.Context, now time.Time) ([]*entities.Bet, error) {
	expired, err := s.betRepo.GetExpiredOpenBets(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired bets: %w", err)
	}

	var locked []*entities.Bet
	for _, bet := range expired {
		bet.Lock()
		if err := s.betRepo.Update(ctx, bet); err != nil {
			log.WithError(err).WithField("betID", bet.BetID).Error("Failed to lock expired bet")
			continue
		}
		s.publishStateChange(bet, entities.BetStateOpen)
		locked = append(locked, bet)
	}
	return locked, nil
}

// openBetQuota derives the creator's open-bet allowance from their balance,
// with bonuses for the reigning king and privileged supporters
func (s *bettingService) openBetQuota(ctx context.Context, account *entities.Account) (int, error) {
	quota := account.MaxOpenBets()

	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get guild settings: %w", err)
	}
	if settings.IsKing(account.DiscordID) {
		quota += creatorQuotaBonus
	}
	if s.privileged != nil && s.privileged(account.DiscordID) {
		quota += creatorQuotaBonus
	}
	return quota, nil
}

func (s *bettingService) publishStateChange(bet *entities.Bet, oldState entities.BetState) {
	if err := s.publisher.Publish(events.BetStateChangeEvent{
		BetID:     bet.BetID,
		GuildID:   bet.GuildID,
		OldState:  string(oldState),
		NewState:  string(bet.State),
		MessageID: bet.MessageID,
		ChannelID: bet.ChannelID,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bet state change event")
	}
}
