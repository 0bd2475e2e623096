package eddies

import (
	"fmt"
	"strings"

	"eddies/bot/common"
	"eddies/domain/entities"

	"github.com/bwmarrin/discordgo"
)

var rankMedals = []string{"🥇", "🥈", "🥉"}

func rankPrefix(rank int) string {
	if rank < len(rankMedals) {
		return rankMedals[rank]
	}
	return fmt.Sprintf("`#%d`", rank+1)
}

func leaderboardEmbed(s *discordgo.Session, guildID string, accounts []*entities.Account) *discordgo.MessageEmbed {
	var b strings.Builder
	for rank, account := range accounts {
		fmt.Fprintf(&b, "%s %s — **%s eddies**\n",
			rankPrefix(rank),
			common.GetDisplayNameInt64(s, guildID, account.DiscordID),
			common.FormatEddies(account.Balance))
	}
	if b.Len() == 0 {
		b.WriteString("Nobody has any eddies yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       "💰 Eddies Leaderboard",
		Description: b.String(),
		Color:       common.ColorGold,
	}
}

func highScoresEmbed(s *discordgo.Session, guildID string, accounts []*entities.Account) *discordgo.MessageEmbed {
	var b strings.Builder
	for rank, account := range accounts {
		fmt.Fprintf(&b, "%s %s — **%s eddies**\n",
			rankPrefix(rank),
			common.GetDisplayNameInt64(s, guildID, account.DiscordID),
			common.FormatEddies(account.HighScore))
	}
	if b.Len() == 0 {
		b.WriteString("No high scores yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 All-Time High Scores",
		Description: b.String(),
		Color:       common.ColorPrimary,
	}
}

func historyEmbed(displayName string, entries []*entities.TransactionEntry) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, entry := range entries {
		line := fmt.Sprintf("%s **%s** `%s`",
			common.FormatDiscordTimestamp(entry.CreatedAt, "d"),
			common.FormatSigned(entry.Amount),
			entry.Type)
		if entry.BetID != nil {
			line += fmt.Sprintf(" bet %s", *entry.BetID)
		}
		if entry.Comment != nil {
			line += fmt.Sprintf(" — %s", *entry.Comment)
		}
		b.WriteString(line + "\n")
	}
	if b.Len() == 0 {
		b.WriteString("No transactions yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📜 %s's ledger", displayName),
		Description: b.String(),
		Color:       common.ColorInfo,
	}
}
