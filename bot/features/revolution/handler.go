package revolution

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"eddies/bot/common"
	"eddies/domain/entities"
	"eddies/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var detail *entities.RevolutionDetail
	err = f.withRevolutionService(ctx, guildID, func(svc interfaces.RevolutionService, uow interfaces.UnitOfWork) error {
		var err error
		detail, err = svc.OpenEvent(ctx)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	if detail == nil {
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "All quiet. No revolution is brewing.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			log.Errorf("Error responding to status command: %v", err)
		}
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{EventEmbed(detail)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to status command: %v", err)
	}
}

func (f *Feature) handlePledgeButton(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	ctx := context.Background()

	eventID, side, ok := parsePledgeCustomID(customID)
	if !ok {
		common.RespondWithError(s, i, "That button is broken.")
		return
	}

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}
	discordID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var detail *entities.RevolutionDetail
	err = f.withRevolutionService(ctx, guildID, func(svc interfaces.RevolutionService, uow interfaces.UnitOfWork) error {
		if err := svc.Pledge(ctx, eventID, discordID, side); err != nil {
			return err
		}
		var err error
		detail, err = svc.OpenEvent(ctx)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var confirmation string
	if side == entities.SideRevolutionary {
		confirmation = "🔥 You joined the revolution. No turning back... well, one turning back."
	} else {
		confirmation = "🛡️ You pledged to defend the king. A tenth of your eddies rides on it."
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: confirmation,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to pledge: %v", err)
	}

	f.RefreshEventMessage(detail)
}

// AnnounceEvent posts a new revolution event to the configured channel and
// stores the message location on the event
func (f *Feature) AnnounceEvent(ctx context.Context, guildID int64, event *entities.RevolutionEvent) error {
	channelID := f.cfg.RevolutionChannelID
	if channelID == "" {
		log.Warn("No revolution channel configured, skipping announcement")
		return nil
	}

	detail := &entities.RevolutionDetail{Event: event}
	msg, err := f.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{EventEmbed(detail)},
		Components: PledgeButtons(event),
	})
	if err != nil {
		return fmt.Errorf("failed to post revolution announcement: %w", err)
	}

	chanID, err := strconv.ParseInt(msg.ChannelID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid channel ID %s: %w", msg.ChannelID, err)
	}
	msgID, err := strconv.ParseInt(msg.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid message ID %s: %w", msg.ID, err)
	}

	return f.withRevolutionService(ctx, guildID, func(svc interfaces.RevolutionService, uow interfaces.UnitOfWork) error {
		event.ChannelID = chanID
		event.MessageID = msgID
		return uow.RevolutionRepository().Update(ctx, event)
	})
}

// AnnounceResult posts the resolution outcome and refreshes the event message
func (f *Feature) AnnounceResult(result *entities.RevolutionResult) {
	detail := &entities.RevolutionDetail{Event: result.Event}
	f.RefreshEventMessage(detail)

	channelID := f.cfg.RevolutionChannelID
	if channelID == "" && result.Event.ChannelID != 0 {
		channelID = strconv.FormatInt(result.Event.ChannelID, 10)
	}
	if channelID == "" {
		return
	}

	if _, err := f.session.ChannelMessageSend(channelID, ResultMessage(result)); err != nil {
		log.WithError(err).Error("Failed to post revolution result")
	}
}

// RefreshEventMessage re-renders the event's Discord message
func (f *Feature) RefreshEventMessage(detail *entities.RevolutionDetail) {
	if detail == nil || detail.Event.MessageID == 0 || detail.Event.ChannelID == 0 {
		return
	}

	embed := EventEmbed(detail)
	components := PledgeButtons(detail.Event)
	edit := &discordgo.MessageEdit{
		Channel:    strconv.FormatInt(detail.Event.ChannelID, 10),
		ID:         strconv.FormatInt(detail.Event.MessageID, 10),
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	}

	if _, err := f.session.ChannelMessageEditComplex(edit); err != nil {
		log.WithFields(log.Fields{
			"eventID":   detail.Event.ID,
			"messageID": detail.Event.MessageID,
			"error":     err,
		}).Error("Failed to refresh revolution message")
	}
}

// parsePledgeCustomID extracts the event ID and side from
// revolution_side_<eventID>_<side>
func parsePledgeCustomID(customID string) (int64, entities.RevolutionSide, bool) {
	rest := strings.TrimPrefix(customID, "revolution_side_")
	idx := strings.Index(rest, "_")
	if idx < 0 {
		return 0, "", false
	}

	eventID, err := strconv.ParseInt(rest[:idx], 10, 64)
	if err != nil {
		return 0, "", false
	}

	side := entities.RevolutionSide(rest[idx+1:])
	if side != entities.SideSupporter && side != entities.SideRevolutionary {
		return 0, "", false
	}
	return eventID, side, true
}
