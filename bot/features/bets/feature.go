package bets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"eddies/bot/common"
	"eddies/config"
	"eddies/domain/entities"
	"eddies/domain/interfaces"
	"eddies/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the bet lifecycle: creation, staking via buttons,
// locking and settlement.
type Feature struct {
	session    *discordgo.Session
	uowFactory interfaces.UnitOfWorkFactory
	cfg        *config.Config
}

// NewFeature creates the bets feature
func NewFeature(session *discordgo.Session, uowFactory interfaces.UnitOfWorkFactory, cfg *config.Config) *Feature {
	return &Feature{
		session:    session,
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// HandleCommand routes the /bet subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand.")
		return
	}

	switch options[0].Name {
	case "create":
		f.handleCreate(s, i, options[0].Options)
	case "lock":
		f.handleLock(s, i, options[0].Options)
	case "close":
		f.handleClose(s, i, options[0].Options)
	case "list":
		f.handleList(s, i)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}

// HandleInteraction routes bet button clicks and the stake amount modal
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if strings.HasPrefix(customID, "bet_stake_") {
			f.handleStakeButton(s, i, customID)
			return
		}
		log.Warnf("Unknown bet component customID: %s", customID)

	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		if strings.HasPrefix(customID, "bet_amount_modal_") {
			f.handleStakeModal(s, i, customID)
			return
		}
		log.Warnf("Unknown bet modal customID: %s", customID)
	}
}

// withBettingService runs fn inside a guild-scoped unit of work and commits
// when fn succeeds
func (f *Feature) withBettingService(ctx context.Context, i *discordgo.InteractionCreate, fn func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error) error {
	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild ID %q: %w", i.GuildID, err)
	}
	return f.withBettingServiceGuild(ctx, guildID, i.GuildID, fn)
}

func (f *Feature) withBettingServiceGuild(ctx context.Context, guildID int64, guildIDStr string, fn func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error) error {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts := services.NewAccountService(
		uow.AccountRepository(),
		uow.TransactionRepository(),
		uow.EventPublisher(),
	)
	svc := services.NewBettingService(
		accounts,
		uow.BetRepository(),
		uow.GuildSettingsRepository(),
		uow.EventPublisher(),
		f.privilegedChecker(guildIDStr),
	)

	if err := fn(svc, uow); err != nil {
		return err
	}
	return uow.Commit()
}

// SweepExpired locks open bets past their timeout and nudges the creators
// to settle. Called by the scheduler tick.
func (f *Feature) SweepExpired(ctx context.Context, guildID int64, now time.Time) error {
	guildIDStr := strconv.FormatInt(guildID, 10)

	var locked []*entities.Bet
	err := f.withBettingServiceGuild(ctx, guildID, guildIDStr, func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error {
		var err error
		locked, err = svc.SweepExpiredBets(ctx, now)
		return err
	})
	if err != nil {
		return err
	}

	for _, bet := range locked {
		err := f.withBettingServiceGuild(ctx, guildID, guildIDStr, func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error {
			detail, err := svc.GetBet(ctx, bet.BetID)
			if err != nil {
				return err
			}
			f.refreshBetMessage(detail)
			return nil
		})
		if err != nil {
			log.WithError(err).WithField("betID", bet.BetID).Error("Failed to refresh swept bet")
			continue
		}

		if bet.ChannelID != 0 {
			content := fmt.Sprintf("⏰ Bet **%s** timed out and is now locked. %s, settle it with `/bet close`.",
				bet.BetID, common.GetUserMention(bet.CreatorDiscordID))
			if _, err := f.session.ChannelMessageSend(strconv.FormatInt(bet.ChannelID, 10), content); err != nil {
				log.WithError(err).WithField("betID", bet.BetID).Error("Failed to post timeout notice")
			}
		}
	}
	return nil
}

// privilegedChecker reports whether a user carries the configured supporter
// role that raises the open-bet quota
func (f *Feature) privilegedChecker(guildID string) func(int64) bool {
	roleID := f.cfg.PrivilegedRoleID
	if roleID == "" {
		return nil
	}
	return func(discordID int64) bool {
		return common.UserHasRole(f.session, guildID, common.FormatUserID(discordID), roleID)
	}
}
