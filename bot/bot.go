package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"eddies/bot/common"
	"eddies/bot/features/bets"
	"eddies/bot/features/eddies"
	"eddies/bot/features/revolution"
	"eddies/config"
	"eddies/domain/interfaces"
	"eddies/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Bot manages the Discord session and the feature modules
type Bot struct {
	cfg        *config.Config
	session    *discordgo.Session
	uowFactory interfaces.UnitOfWorkFactory

	eddies     *eddies.Feature
	bets       *bets.Feature
	revolution *revolution.Feature

	activity *ActivityTracker
}

// New creates a bot instance with all features and opens the gateway
func New(cfg *config.Config, uowFactory interfaces.UnitOfWorkFactory) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	bot := &Bot{
		cfg:        cfg,
		session:    dg,
		uowFactory: uowFactory,
		activity:   NewActivityTracker(),
	}

	bot.eddies = eddies.New(uowFactory, cfg)
	bot.bets = bets.NewFeature(dg, uowFactory, cfg)
	bot.revolution = revolution.NewFeature(dg, uowFactory, cfg)

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleGuildMemberAdd)
	dg.AddHandler(bot.handleGuildMemberRemove)
	dg.AddHandler(bot.handleGuildMemberUpdate)
	dg.AddHandler(bot.handleMessageCreate)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.Info("Bot connected and commands registered")
	return bot, nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

// RevolutionFeature returns the revolution feature for scheduler wiring
func (b *Bot) RevolutionFeature() *revolution.Feature {
	return b.revolution
}

// BetsFeature returns the bets feature for scheduler wiring
func (b *Bot) BetsFeature() *bets.Feature {
	return b.bets
}

// Activity returns the chat activity tracker for scheduler wiring
func (b *Bot) Activity() *ActivityTracker {
	return b.activity
}

// GuildIDs returns the IDs of all guilds the bot is connected to
func (b *Bot) GuildIDs() []int64 {
	var ids []int64
	for _, guild := range b.session.State.Guilds {
		id, err := strconv.ParseInt(guild.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// handleCommands routes slash commands to the appropriate feature
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "eddies":
		b.eddies.HandleCommand(s, i)
	case "bet":
		b.bets.HandleCommand(s, i)
	case "revolution":
		b.revolution.HandleCommand(s, i)
	}
}

// handleInteractions routes component interactions and modals by custom ID prefix
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var customID string
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		customID = i.ModalSubmitData().CustomID
	default:
		return
	}

	switch {
	case strings.HasPrefix(customID, "bet_"):
		b.bets.HandleInteraction(s, i)
	case strings.HasPrefix(customID, "revolution_"):
		b.revolution.HandleInteraction(s, i)
	}
}

// handleGuildCreate seeds the guild settings row when the bot joins a guild
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	ctx := context.Background()

	guildID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}

	uow := b.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction: %v", err)
		return
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx)
	if err != nil {
		log.Errorf("Failed to seed settings for guild %s (%s): %v", g.Name, g.ID, err)
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Failed to commit transaction: %v", err)
		return
	}

	log.Infof("Joined guild %s (ID: %d, tax rate: %.0f%%)", g.Name, settings.GuildID, settings.TaxRate*100)
}

// handleGuildMemberAdd creates or reactivates the member's eddies account
func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	b.withMemberAccount(m.GuildID, m.User.ID, func(ctx context.Context, svc interfaces.AccountService, discordID int64) error {
		_, err := svc.EnsureAccount(ctx, discordID)
		return err
	})
}

// handleGuildMemberRemove deactivates the member's account, keeping the balance
func (b *Bot) handleGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil || m.User.Bot {
		return
	}
	b.withMemberAccount(m.GuildID, m.User.ID, func(ctx context.Context, svc interfaces.AccountService, discordID int64) error {
		return svc.Deactivate(ctx, discordID)
	})
}

// handleGuildMemberUpdate tracks the king role. Whoever holds it is recorded
// as the reigning king; losing it vacates the throne.
func (b *Bot) handleGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if b.cfg.KingRoleID == "" || m.User == nil || m.User.Bot {
		return
	}

	hasRole := false
	for _, roleID := range m.Roles {
		if roleID == b.cfg.KingRoleID {
			hasRole = true
			break
		}
	}

	ctx := context.Background()

	guildID, err := common.ParseUserID(m.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", m.GuildID, err)
		return
	}
	discordID, err := common.ParseUserID(m.User.ID)
	if err != nil {
		log.Errorf("Failed to parse user ID %s: %v", m.User.ID, err)
		return
	}

	uow := b.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction: %v", err)
		return
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx)
	if err != nil {
		log.Errorf("Failed to get settings for guild %d: %v", guildID, err)
		return
	}

	switch {
	case hasRole && !settings.IsKing(discordID):
		settings.KingDiscordID = &discordID
	case !hasRole && settings.IsKing(discordID):
		settings.KingDiscordID = nil
	default:
		return
	}

	if err := uow.GuildSettingsRepository().Update(ctx, settings); err != nil {
		log.Errorf("Failed to update king for guild %d: %v", guildID, err)
		return
	}
	if err := uow.Commit(); err != nil {
		log.Errorf("Failed to commit transaction: %v", err)
		return
	}

	if hasRole {
		log.Infof("Guild %d crowned a new king: %d", guildID, discordID)
	} else {
		log.Infof("Guild %d throne vacated by %d", guildID, discordID)
	}
}

func (b *Bot) withMemberAccount(guildIDStr, userIDStr string, fn func(context.Context, interfaces.AccountService, int64) error) {
	ctx := context.Background()

	guildID, err := common.ParseUserID(guildIDStr)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", guildIDStr, err)
		return
	}
	discordID, err := common.ParseUserID(userIDStr)
	if err != nil {
		log.Errorf("Failed to parse user ID %s: %v", userIDStr, err)
		return
	}

	uow := b.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction: %v", err)
		return
	}
	defer uow.Rollback()

	svc := services.NewAccountService(
		uow.AccountRepository(),
		uow.TransactionRepository(),
		uow.EventPublisher(),
	)
	if err := fn(ctx, svc, discordID); err != nil {
		log.Errorf("Failed to update member account %d: %v", discordID, err)
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Failed to commit transaction: %v", err)
	}
}
