package eddies

import (
	"eddies/bot/common"
	"eddies/config"
	"eddies/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the account-facing commands: balance, gift, leaderboard,
// high scores, history and the admin balance override.
type Feature struct {
	uowFactory interfaces.UnitOfWorkFactory
	cfg        *config.Config
}

// New creates the eddies account feature
func New(uowFactory interfaces.UnitOfWorkFactory, cfg *config.Config) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// HandleCommand routes the /eddies subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand.")
		return
	}

	switch options[0].Name {
	case "balance":
		f.handleBalance(s, i)
	case "gift":
		f.handleGift(s, i, options[0].Options)
	case "leaderboard":
		f.handleLeaderboard(s, i)
	case "highscores":
		f.handleHighScores(s, i)
	case "history":
		f.handleHistory(s, i)
	case "set":
		f.handleSet(s, i, options[0].Options)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}
