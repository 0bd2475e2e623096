package revolution

import (
	"fmt"
	"strings"

	"eddies/bot/common"
	"eddies/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// EventEmbed renders an open or resolved revolution event
func EventEmbed(detail *entities.RevolutionDetail) *discordgo.MessageEmbed {
	event := detail.Event
	supporters, revolutionaries := detail.BySide()

	embed := &discordgo.MessageEmbed{
		Title: "⚔️ REVOLUTION!",
		Description: fmt.Sprintf(
			"The people rise against King %s!\nThe crown's hoard of **%s eddies** hangs in the balance.\n\nThe uprising is decided %s.",
			common.GetUserMention(event.KingDiscordID),
			common.FormatEddies(event.LockedInEddies),
			common.FormatDiscordTimestamp(event.ExpiresAt, "R")),
		Color: common.ColorDanger,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Success chance: %d%%", event.Chance),
		},
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("🔥 Revolutionaries (%d)", len(revolutionaries)),
		Value:  mentionList(revolutionaries),
		Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("🛡️ Loyalists (%d)", len(supporters)),
		Value:  mentionList(supporters),
		Inline: true,
	})

	if !event.IsOpen() && event.Success != nil {
		if *event.Success {
			embed.Color = common.ColorSuccess
			embed.Description += "\n\n**THE KING HAS FALLEN.**"
		} else {
			embed.Color = common.ColorGold
			embed.Description += "\n\n**The king survived.** Long live the king."
		}
	}

	return embed
}

// PledgeButtons builds the two side buttons for an open event
func PledgeButtons(event *entities.RevolutionEvent) []discordgo.MessageComponent {
	if !event.IsOpen() {
		return []discordgo.MessageComponent{}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join the revolution",
					Style:    discordgo.DangerButton,
					CustomID: fmt.Sprintf("revolution_side_%d_%s", event.ID, entities.SideRevolutionary),
					Emoji:    &discordgo.ComponentEmoji{Name: "🔥"},
				},
				discordgo.Button{
					Label:    "Defend the king",
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("revolution_side_%d_%s", event.ID, entities.SideSupporter),
					Emoji:    &discordgo.ComponentEmoji{Name: "🛡️"},
				},
			},
		},
	}
}

// ResultMessage renders the resolution announcement
func ResultMessage(result *entities.RevolutionResult) string {
	var b strings.Builder

	if !result.Success {
		fmt.Fprintf(&b, "🛡️ **The revolution failed.** King %s keeps the crown and every last eddie.",
			common.GetUserMention(result.Event.KingDiscordID))
		return b.String()
	}

	fmt.Fprintf(&b, "🔥 **THE REVOLUTION SUCCEEDED!**\n")
	fmt.Fprintf(&b, "King %s loses **%s eddies**.\n",
		common.GetUserMention(result.Event.KingDiscordID), common.FormatEddies(result.KingLoss))
	for discordID, loss := range result.SupporterLosses {
		fmt.Fprintf(&b, "🛡️ Loyalist %s loses **%s eddies**.\n",
			common.GetUserMention(discordID), common.FormatEddies(loss))
	}
	if result.PayoutEach > 0 {
		fmt.Fprintf(&b, "Each of the %d revolutionaries pockets **%s eddies**.",
			len(result.Revolutionaries), common.FormatEddies(result.PayoutEach))
	}

	return b.String()
}

func mentionList(ids []int64) string {
	if len(ids) == 0 {
		return "*nobody yet*"
	}
	mentions := make([]string, 0, len(ids))
	for _, id := range ids {
		mentions = append(mentions, common.GetUserMention(id))
	}
	value := strings.Join(mentions, "\n")
	if len(value) > 1024 {
		value = value[:1021] + "..."
	}
	return value
}
