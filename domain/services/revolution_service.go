package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"eddies/domain/entities"
	"eddies/domain/events"
	"eddies/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RevolutionWindow is how long an uprising stays open for pledges
const RevolutionWindow = 3*time.Hour + 30*time.Minute

type revolutionService struct {
	accounts     interfaces.AccountService
	revRepo      interfaces.RevolutionRepository
	settingsRepo interfaces.GuildSettingsRepository
	publisher    interfaces.EventPublisher
	draw         func(n int) int
}

// NewRevolutionService creates a new revolution service. The draw function
// returns a uniform integer in [0, n) and exists so tests can force the
// outcome; pass nil for the real dice.
func NewRevolutionService(
	accounts interfaces.AccountService,
	revRepo interfaces.RevolutionRepository,
	settingsRepo interfaces.GuildSettingsRepository,
	publisher interfaces.EventPublisher,
	draw func(n int) int,
) interfaces.RevolutionService {
	if draw == nil {
		draw = rand.Intn
	}
	return &revolutionService{
		accounts:     accounts,
		revRepo:      revRepo,
		settingsRepo: settingsRepo,
		publisher:    publisher,
		draw:         draw,
	}
}

// StartEvent opens a new uprising against the current king, locking in their
// balance at this moment. Only one event may be open per guild.
func (s *revolutionService) StartEvent(ctx context.Context, now time.Time) (*entities.RevolutionEvent, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	if settings.KingDiscordID == nil {
		return nil, fmt.Errorf("%w: no king to overthrow", entities.ErrNoKing)
	}

	open, err := s.revRepo.GetOpenEvent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for open event: %w", err)
	}
	if open != nil {
		return nil, fmt.Errorf("%w: event %d is still open", entities.ErrEventRunning, open.Event.ID)
	}

	king, err := s.accounts.GetAccount(ctx, *settings.KingDiscordID)
	if err != nil {
		return nil, err
	}

	event := &entities.RevolutionEvent{
		GuildID:        settings.GuildID,
		KingDiscordID:  king.DiscordID,
		LockedInEddies: king.Balance,
		Chance:         settings.RevolutionChance,
		State:          entities.RevolutionStateOpen,
		ChannelID:      settings.RevolutionChannelID,
		ExpiresAt:      now.Add(RevolutionWindow),
	}
	if err := s.revRepo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create revolution event: %w", err)
	}

	log.WithFields(log.Fields{
		"eventID":  event.ID,
		"guildID":  event.GuildID,
		"king":     event.KingDiscordID,
		"lockedIn": event.LockedInEddies,
		"chance":   event.Chance,
	}).Info("Started revolution event")

	return event, nil
}

// Pledge declares a user for one side of an open event. Re-pledging moves
// the user to the new side; the king cannot pledge at all.
func (s *revolutionService) Pledge(ctx context.Context, eventID int64, discordID int64, side entities.RevolutionSide) error {
	if side != entities.SideSupporter && side != entities.SideRevolutionary {
		return fmt.Errorf("%w: unknown side %q", entities.ErrInvalidArgument, side)
	}

	detail, err := s.revRepo.GetDetailByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get revolution event: %w", err)
	}
	if detail == nil {
		return fmt.Errorf("%w: event %d", entities.ErrEventNotFound, eventID)
	}
	if !detail.Event.IsOpen() || detail.Event.IsExpired(time.Now().UTC()) {
		return fmt.Errorf("%w: event %d", entities.ErrEventClosed, eventID)
	}
	if discordID == detail.Event.KingDiscordID {
		return fmt.Errorf("%w: the king cannot pick a side", entities.ErrForbidden)
	}
	if detail.SideOf(discordID) == side {
		return nil
	}

	if err := s.revRepo.SaveParticipant(ctx, &entities.RevolutionParticipant{
		EventID:   eventID,
		DiscordID: discordID,
		Side:      side,
	}); err != nil {
		return fmt.Errorf("failed to save pledge: %w", err)
	}

	markerType := entities.TransactionTypeRevSupport
	comment := "pledged to defend the king"
	if side == entities.SideRevolutionary {
		markerType = entities.TransactionTypeRevOverthrow
		comment = "joined the revolution"
	}
	if err := s.accounts.RecordMarker(ctx, discordID, entities.TransactionDetails{
		Type:    markerType,
		Comment: &comment,
	}); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"eventID":   eventID,
			"discordID": discordID,
		}).Error("Failed to record pledge marker")
	}
	return nil
}

// OpenEvent returns the guild's open event with participants, or nil
func (s *revolutionService) OpenEvent(ctx context.Context) (*entities.RevolutionDetail, error) {
	detail, err := s.revRepo.GetOpenEvent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open event: %w", err)
	}
	return detail, nil
}

// Resolve draws the outcome of an expired event and moves the eddies. The
// resolve claim is atomic, so a rerun of the tick cannot charge the king
// twice. An uprising nobody joined fails outright without a draw.
func (s *revolutionService) Resolve(ctx context.Context, eventID int64, now time.Time) (*entities.RevolutionResult, error) {
	detail, err := s.revRepo.GetDetailByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get revolution event: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: event %d", entities.ErrEventNotFound, eventID)
	}
	if !detail.Event.IsOpen() {
		return nil, fmt.Errorf("%w: event %d already resolved", entities.ErrEventClosed, eventID)
	}
	if !detail.Event.IsExpired(now) {
		return nil, fmt.Errorf("%w: event %d is still open", entities.ErrEventRunning, eventID)
	}

	supporters, revolutionaries := detail.BySide()

	success := len(revolutionaries) > 0 && s.draw(100) < detail.Event.Chance

	claimed, err := s.revRepo.ClaimResolve(ctx, eventID, success, now)
	if err != nil {
		return nil, fmt.Errorf("failed to claim resolve: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: event %d already resolved", entities.ErrEventClosed, eventID)
	}
	detail.Event.Resolve(success, now)

	result := &entities.RevolutionResult{
		Event:           detail.Event,
		Success:         success,
		SupporterLosses: make(map[int64]int64),
		Revolutionaries: revolutionaries,
	}

	if !success {
		comment := "the king survived the revolution"
		if err := s.accounts.RecordMarker(ctx, detail.Event.KingDiscordID, entities.TransactionDetails{
			Type:    entities.TransactionTypeRevKingWin,
			Comment: &comment,
		}); err != nil {
			log.WithError(err).Error("Failed to record king win marker")
		}
		s.publishResolved(result)
		return result, nil
	}

	if err := s.applySuccess(ctx, detail, supporters, revolutionaries, result); err != nil {
		return nil, err
	}
	s.publishResolved(result)

	log.WithFields(log.Fields{
		"eventID":         eventID,
		"guildID":         detail.Event.GuildID,
		"kingLoss":        result.KingLoss,
		"revolutionaries": len(revolutionaries),
		"payoutEach":      result.PayoutEach,
		"remainder":       result.Remainder,
	}).Info("Revolution succeeded")

	return result, nil
}

// applySuccess moves the eddies of a successful uprising: the king loses half
// of what was locked in (capped at what they still hold), each supporter
// loses a tenth of their balance, and the pool is split evenly across the
// revolutionaries with the floored remainder going back to the king.
func (s *revolutionService) applySuccess(ctx context.Context, detail *entities.RevolutionDetail, supporters, revolutionaries []int64, result *entities.RevolutionResult) error {
	event := detail.Event

	king, err := s.accounts.GetAccount(ctx, event.KingDiscordID)
	if err != nil {
		return err
	}
	kingLoss := event.LockedInEddies / 2
	if kingLoss > king.Balance {
		kingLoss = king.Balance
	}
	if kingLoss > 0 {
		if _, err := s.accounts.Debit(ctx, event.KingDiscordID, kingLoss, entities.TransactionDetails{
			Type: entities.TransactionTypeRevKingLoss,
		}); err != nil {
			return fmt.Errorf("failed to debit king: %w", err)
		}
	}
	result.KingLoss = kingLoss
	pool := kingLoss

	for _, supporterID := range supporters {
		account, err := s.accounts.GetAccount(ctx, supporterID)
		if err != nil {
			log.WithError(err).WithField("discordID", supporterID).Error("Failed to load supporter account")
			continue
		}
		loss := account.Balance / entities.SupporterLossDivisor
		if loss <= 0 {
			continue
		}
		if _, err := s.accounts.Debit(ctx, supporterID, loss, entities.TransactionDetails{
			Type: entities.TransactionTypeRevSupporterLoss,
		}); err != nil {
			log.WithError(err).WithField("discordID", supporterID).Error("Failed to debit supporter")
			continue
		}
		result.SupporterLosses[supporterID] = loss
		pool += loss
	}

	n := int64(len(revolutionaries))
	result.PayoutEach = pool / n
	result.Remainder = pool % n

	if result.PayoutEach > 0 {
		for _, revolutionaryID := range revolutionaries {
			if _, err := s.accounts.Credit(ctx, revolutionaryID, result.PayoutEach, entities.TransactionDetails{
				Type: entities.TransactionTypeRevTicketWin,
			}); err != nil {
				return fmt.Errorf("failed to pay revolutionary %d: %w", revolutionaryID, err)
			}
		}
	}
	if result.Remainder > 0 {
		comment := "revolution remainder"
		if _, err := s.accounts.Credit(ctx, event.KingDiscordID, result.Remainder, entities.TransactionDetails{
			Type:    entities.TransactionTypeTaxGains,
			Comment: &comment,
		}); err != nil {
			return fmt.Errorf("failed to return remainder to king: %w", err)
		}
	}
	return nil
}

func (s *revolutionService) publishResolved(result *entities.RevolutionResult) {
	if err := s.publisher.Publish(events.RevolutionResolvedEvent{
		EventID:  result.Event.ID,
		GuildID:  result.Event.GuildID,
		Success:  result.Success,
		KingLoss: result.KingLoss,
	}); err != nil {
		log.WithError(err).Error("Failed to publish revolution resolved event")
	}
}
