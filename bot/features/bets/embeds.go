package bets

import (
	"fmt"
	"sort"
	"strings"

	"eddies/bot/common"
	"eddies/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// createProgressBar generates a visual bar using Unicode block characters
func createProgressBar(percentage float64, length int) string {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	filled := int(float64(length) * percentage / 100)
	if filled > length {
		filled = length
	}

	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// BetEmbed renders a bet with its options, stakes and state
func BetEmbed(detail *entities.BetDetail) *discordgo.MessageEmbed {
	bet := detail.Bet

	embed := &discordgo.MessageEmbed{
		Title: bet.Title,
		Color: common.ColorWarning,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Bet %s", bet.BetID),
		},
		Timestamp: bet.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	embed.Description = fmt.Sprintf("Created by %s", common.GetUserMention(bet.CreatorDiscordID))

	totalPot := detail.TotalStaked()
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Total Pot",
		Value:  fmt.Sprintf("**%s eddies**", common.FormatEddies(totalPot)),
		Inline: true,
	})

	if bet.IsOpen() && bet.TimeoutAt != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "⏰ Locks",
			Value:  common.FormatDiscordTimestamp(*bet.TimeoutAt, "R"),
			Inline: true,
		})
	}

	stakesByOutcome := detail.StakesByOutcome()
	for _, option := range detail.Options {
		stakes := stakesByOutcome[option.OutcomeKey]

		var optionTotal int64
		for _, stake := range stakes {
			optionTotal += stake.Amount
		}

		percentage := float64(0)
		if totalPot > 0 {
			percentage = float64(optionTotal) * 100 / float64(totalPot)
		}

		statsLine := fmt.Sprintf("`%s` %s eddies",
			createProgressBar(percentage, 20), common.FormatEddies(optionTotal))

		var betterInfo string
		if len(stakes) > 0 {
			sorted := make([]*entities.BetStake, len(stakes))
			copy(sorted, stakes)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i].Amount > sorted[j].Amount
			})

			tags := make([]string, 0, len(sorted))
			for _, stake := range sorted {
				tags = append(tags, fmt.Sprintf("%s - %s",
					common.GetUserMention(stake.DiscordID), common.FormatEddies(stake.Amount)))
			}
			betterInfo = strings.Join(tags, " • ")
		}

		fieldValue := statsLine
		if betterInfo != "" {
			fieldValue += "\n" + betterInfo
		}
		if len(fieldValue) > 1024 {
			fieldValue = fieldValue[:1021] + "..."
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s %s", option.OutcomeKey, option.Label),
			Value:  fieldValue,
			Inline: false,
		})
	}

	switch bet.State {
	case entities.BetStateLocked:
		embed.Color = common.ColorPrimary
		embed.Description += "\n**🔒 LOCKED** — no more stakes"
	case entities.BetStateSettled:
		embed.Color = common.ColorSuccess
		embed.Description += "\n**SETTLED**"
		if bet.Result != nil {
			if won := detail.Option(*bet.Result); won != nil {
				embed.Description += fmt.Sprintf("\nWinner: **%s %s**", won.OutcomeKey, won.Label)
			}
		}
	}

	embed.Footer.Text += fmt.Sprintf(" | %d betters", len(detail.Stakes))
	return embed
}

// SettlementMessage renders the payout announcement for a settled bet
func SettlementMessage(settlement *entities.BetSettlement) string {
	var b strings.Builder

	if settlement.Refunded {
		for discordID, amount := range settlement.Winners {
			fmt.Fprintf(&b, "🤝 %s was the only better and backed the winner — their **%s eddies** stake was refunded.",
				common.GetUserMention(discordID), common.FormatEddies(amount))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "🏁 Bet **%s** settled on **%s**!\n", settlement.Bet.BetID, settlement.WinningOption.Label)
	for discordID, payout := range settlement.Winners {
		fmt.Fprintf(&b, "🎉 %s won **%s eddies**\n", common.GetUserMention(discordID), common.FormatEddies(payout))
	}
	for discordID, lost := range settlement.Losers {
		fmt.Fprintf(&b, "😔 %s lost **%s eddies**\n", common.GetUserMention(discordID), common.FormatEddies(lost))
	}
	if len(settlement.Winners) == 0 && len(settlement.Losers) == 0 {
		b.WriteString("Nobody staked anything. Anticlimactic.")
	}

	return b.String()
}
