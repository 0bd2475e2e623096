package revolution

import (
	"context"
	"errors"
	"fmt"
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

// Feature handles the revolution mini-game surface: announcing events,
// pledge buttons and the status command.
type Feature struct {
	session    *discordgo.Session
	uowFactory interfaces.UnitOfWorkFactory
	cfg        *config.Config
}

// NewFeature creates the revolution feature
func NewFeature(session *discordgo.Session, uowFactory interfaces.UnitOfWorkFactory, cfg *config.Config) *Feature {
	return &Feature{
		session:    session,
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// HandleCommand handles the /revolution command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 || options[0].Name == "status" {
		f.handleStatus(s, i)
		return
	}
	common.RespondWithError(s, i, "Unknown subcommand.")
}

// HandleInteraction handles the pledge buttons
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	if strings.HasPrefix(customID, "revolution_side_") {
		f.handlePledgeButton(s, i, customID)
		return
	}
	log.Warnf("Unknown revolution component customID: %s", customID)
}

// StartScheduled opens a new uprising for the guild and announces it.
// Called by the weekly scheduler tick; guilds without a king are skipped.
func (f *Feature) StartScheduled(ctx context.Context, guildID int64, now time.Time) error {
	var event *entities.RevolutionEvent
	err := f.withRevolutionService(ctx, guildID, func(svc interfaces.RevolutionService, uow interfaces.UnitOfWork) error {
		var err error
		event, err = svc.StartEvent(ctx, now)
		return err
	})
	if err != nil {
		if errors.Is(err, entities.ErrNoKing) || errors.Is(err, entities.ErrEventRunning) {
			log.WithField("guildID", guildID).Debug("No revolution started: ", err)
			return nil
		}
		return err
	}

	return f.AnnounceEvent(ctx, guildID, event)
}

// ResolveDue resolves the guild's open event once its window has expired.
// Called by the scheduler tick; a non-expired event is left alone.
func (f *Feature) ResolveDue(ctx context.Context, guildID int64, now time.Time) error {
	var detail *entities.RevolutionDetail
	err := f.withRevolutionService(ctx, guildID, func(svc interfaces.RevolutionService, uow interfaces.UnitOfWork) error {
		var err error
		detail, err = svc.OpenEvent(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if detail == nil || !detail.Event.IsExpired(now) {
		return nil
	}

	var result *entities.RevolutionResult
	err = f.withRevolutionService(ctx, guildID, func(svc interfaces.RevolutionService, uow interfaces.UnitOfWork) error {
		var err error
		result, err = svc.Resolve(ctx, detail.Event.ID, now)
		return err
	})
	if err != nil {
		if errors.Is(err, entities.ErrEventClosed) || errors.Is(err, entities.ErrEventRunning) {
			return nil
		}
		return err
	}

	f.AnnounceResult(result)
	return nil
}

// withRevolutionService runs fn inside a guild-scoped unit of work and
// commits when fn succeeds
func (f *Feature) withRevolutionService(ctx context.Context, guildID int64, fn func(svc interfaces.RevolutionService, uow interfaces.UnitOfWork) error) error {
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
	svc := services.NewRevolutionService(
		accounts,
		uow.RevolutionRepository(),
		uow.GuildSettingsRepository(),
		uow.EventPublisher(),
		nil,
	)

	if err := fn(svc, uow); err != nil {
		return err
	}
	return uow.Commit()
}
