package bets

import (
	"fmt"

	"eddies/bot/common"
	"eddies/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// StakeButtons builds one button per outcome. Custom IDs carry the bet ID
// and the option order so the handler can resolve the outcome key without
// emoji in the ID.
func StakeButtons(detail *entities.BetDetail) []discordgo.MessageComponent {
	if !detail.Bet.IsOpen() {
		return []discordgo.MessageComponent{}
	}

	var rows []discordgo.MessageComponent
	var currentRow []discordgo.MessageComponent

	for i, option := range detail.Options {
		button := discordgo.Button{
			Label:    common.TruncateLabel(option.Label, 80),
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("bet_stake_%s_%d", detail.Bet.BetID, option.OptionOrder),
			Emoji: &discordgo.ComponentEmoji{
				Name: option.OutcomeKey,
			},
		}

		currentRow = append(currentRow, button)
		if len(currentRow) == common.MaxButtonsPerRow || i == len(detail.Options)-1 {
			rows = append(rows, discordgo.ActionsRow{Components: currentRow})
			currentRow = []discordgo.MessageComponent{}
		}
	}

	return rows
}
