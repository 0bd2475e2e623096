package bets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"eddies/bot/common"
	"eddies/domain/entities"
	"eddies/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var title, optionsRaw string
	var timeoutMinutes int64
	var private bool
	for _, opt := range opts {
		switch opt.Name {
		case "title":
			title = opt.StringValue()
		case "options":
			optionsRaw = opt.StringValue()
		case "timeout":
			timeoutMinutes = opt.IntValue()
		case "private":
			private = opt.BoolValue()
		}
	}

	labels := splitOptions(optionsRaw)

	creatorID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var detail *entities.BetDetail
	err = f.withBettingService(ctx, i, func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error {
		var err error
		detail, err = svc.CreateBet(ctx, creatorID, title, labels, time.Duration(timeoutMinutes)*time.Minute, private)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	// Post the bet message with stake buttons
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{BetEmbed(detail)},
			Components: StakeButtons(detail),
		},
	})
	if err != nil {
		log.Errorf("Error posting bet message: %v", err)
		return
	}

	// Store the message location so later interactions can refresh it
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.Errorf("Error fetching bet message: %v", err)
		return
	}
	f.recordMessageLocation(ctx, i, detail, msg)
}

// recordMessageLocation saves the channel and message IDs on the bet
func (f *Feature) recordMessageLocation(ctx context.Context, i *discordgo.InteractionCreate, detail *entities.BetDetail, msg *discordgo.Message) {
	channelID, err := strconv.ParseInt(msg.ChannelID, 10, 64)
	if err != nil {
		log.Errorf("Invalid channel ID %s: %v", msg.ChannelID, err)
		return
	}
	messageID, err := strconv.ParseInt(msg.ID, 10, 64)
	if err != nil {
		log.Errorf("Invalid message ID %s: %v", msg.ID, err)
		return
	}

	err = f.withBettingService(ctx, i, func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error {
		fresh, err := svc.GetBet(ctx, detail.Bet.BetID)
		if err != nil {
			return err
		}
		fresh.Bet.ChannelID = channelID
		fresh.Bet.MessageID = messageID
		return uow.BetRepository().Update(ctx, fresh.Bet)
	})
	if err != nil {
		log.Errorf("Error saving bet message location: %v", err)
	}
}

func (f *Feature) handleStakeButton(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	betID, optionOrder, ok := parseStakeCustomID(customID, "bet_stake_")
	if !ok {
		common.RespondWithError(s, i, "That button is broken.")
		return
	}

	// Ask for the amount in a modal
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("bet_amount_modal_%s_%d", betID, optionOrder),
			Title:    "Place your stake",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "amount",
							Label:       "Amount of eddies",
							Style:       discordgo.TextInputShort,
							Placeholder: "e.g. 100",
							Required:    true,
							MaxLength:   10,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Errorf("Error opening stake modal: %v", err)
	}
}

func (f *Feature) handleStakeModal(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	ctx := context.Background()

	betID, optionOrder, ok := parseStakeCustomID(customID, "bet_amount_modal_")
	if !ok {
		common.RespondWithError(s, i, "That modal is broken.")
		return
	}

	amountRaw := extractModalInput(i, "amount")
	amount, err := strconv.ParseInt(strings.TrimSpace(amountRaw), 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "The amount must be a whole number of eddies.")
		return
	}

	betterID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var detail *entities.BetDetail
	err = f.withBettingService(ctx, i, func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error {
		fresh, err := svc.GetBet(ctx, betID)
		if err != nil {
			return err
		}
		if optionOrder < 0 || optionOrder >= len(fresh.Options) {
			return entities.ErrInvalidOutcome
		}
		outcomeKey := fresh.Options[optionOrder].OutcomeKey

		detail, err = svc.PlaceStake(ctx, betID, betterID, outcomeKey, amount)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	stake := detail.StakeFor(betterID)
	content := fmt.Sprintf("✅ Staked. Your position on **%s**: **%s eddies**.",
		detail.Bet.Title, common.FormatEddies(stake.Amount))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to stake modal: %v", err)
	}

	f.refreshBetMessage(detail)
}

func (f *Feature) handleLock(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	betID := stringOption(opts, "id")
	callerID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var detail *entities.BetDetail
	err = f.withBettingService(ctx, i, func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error {
		if _, err := svc.LockBet(ctx, betID, callerID); err != nil {
			return err
		}
		var err error
		detail, err = svc.GetBet(ctx, betID)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("🔒 Bet **%s** is locked. No more stakes.", betID),
		},
	})
	if err != nil {
		log.Errorf("Error responding to lock command: %v", err)
	}

	f.refreshBetMessage(detail)
}

func (f *Feature) handleClose(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	betID := stringOption(opts, "id")
	winningOption := int(intOption(opts, "winning_option"))

	callerID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var settlement *entities.BetSettlement
	var detail *entities.BetDetail
	err = f.withBettingService(ctx, i, func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error {
		fresh, err := svc.GetBet(ctx, betID)
		if err != nil {
			return err
		}
		if winningOption < 1 || winningOption > len(fresh.Options) {
			return entities.ErrInvalidOutcome
		}
		outcomeKey := fresh.Options[winningOption-1].OutcomeKey

		settlement, err = svc.CloseBet(ctx, betID, callerID, outcomeKey)
		if err != nil {
			return err
		}
		detail, err = svc.GetBet(ctx, betID)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: SettlementMessage(settlement),
		},
	})
	if err != nil {
		log.Errorf("Error responding to close command: %v", err)
	}

	f.refreshBetMessage(detail)
}

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var bets []*entities.Bet
	err := f.withBettingService(ctx, i, func(svc interfaces.BettingService, uow interfaces.UnitOfWork) error {
		var err error
		bets, err = svc.OpenBets(ctx)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var b strings.Builder
	for _, bet := range bets {
		fmt.Fprintf(&b, "**%s** %s — by %s", bet.BetID, bet.Title, common.GetUserMention(bet.CreatorDiscordID))
		if bet.TimeoutAt != nil {
			fmt.Fprintf(&b, " (locks %s)", common.FormatDiscordTimestamp(*bet.TimeoutAt, "R"))
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		b.WriteString("No open bets. Start one with `/bet create`.")
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "🎲 Open Bets",
				Description: b.String(),
				Color:       common.ColorInfo,
			}},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to list command: %v", err)
	}
}

// refreshBetMessage re-renders the bet's Discord message after a change
func (f *Feature) refreshBetMessage(detail *entities.BetDetail) {
	if detail == nil || detail.Bet.MessageID == 0 || detail.Bet.ChannelID == 0 {
		return
	}

	embed := BetEmbed(detail)
	components := StakeButtons(detail)
	edit := &discordgo.MessageEdit{
		Channel:    strconv.FormatInt(detail.Bet.ChannelID, 10),
		ID:         strconv.FormatInt(detail.Bet.MessageID, 10),
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	}

	if _, err := f.session.ChannelMessageEditComplex(edit); err != nil {
		log.WithFields(log.Fields{
			"betID":     detail.Bet.BetID,
			"messageID": detail.Bet.MessageID,
			"error":     err,
		}).Error("Failed to refresh bet message")
	}
}

// splitOptions parses "A | B | C" (or comma separated) into labels
func splitOptions(raw string) []string {
	sep := "|"
	if !strings.Contains(raw, "|") {
		sep = ","
	}

	var labels []string
	for _, part := range strings.Split(raw, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	return labels
}

// parseStakeCustomID extracts the bet ID and option order from a custom ID
// of the form <prefix><betID>_<order>
func parseStakeCustomID(customID, prefix string) (string, int, bool) {
	rest := strings.TrimPrefix(customID, prefix)
	idx := strings.LastIndex(rest, "_")
	if idx < 0 {
		return "", 0, false
	}
	order, err := strconv.Atoi(rest[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return rest[:idx], order, true
}

func extractModalInput(i *discordgo.InteractionCreate, customID string) string {
	for _, row := range i.ModalSubmitData().Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

func stringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func intOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, opt := range opts {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}
