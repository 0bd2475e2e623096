package eddies

import (
	"context"
	"fmt"

	"eddies/bot/common"
	"eddies/domain/interfaces"
	"eddies/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// withAccountService runs fn inside a guild-scoped unit of work and commits
// when fn succeeds
func (f *Feature) withAccountService(ctx context.Context, i *discordgo.InteractionCreate, fn func(svc interfaces.AccountService) error) error {
	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild ID %q: %w", i.GuildID, err)
	}

	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	svc := services.NewAccountService(
		uow.AccountRepository(),
		uow.TransactionRepository(),
		uow.EventPublisher(),
	)

	if err := fn(svc); err != nil {
		return err
	}
	return uow.Commit()
}

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	discordID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var message string
	err = f.withAccountService(ctx, i, func(svc interfaces.AccountService) error {
		account, err := svc.EnsureAccount(ctx, discordID)
		if err != nil {
			return err
		}
		message = fmt.Sprintf("%s, you have **%s eddies** (high score: %s)",
			common.GetDisplayName(s, i.GuildID, i.Member.User.ID),
			common.FormatEddies(account.Balance),
			common.FormatEddies(account.HighScore))
		return nil
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	respondEphemeral(s, i, message)
}

func (f *Feature) handleGift(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var amount int64
	var recipient *discordgo.User
	for _, opt := range opts {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			recipient = opt.UserValue(s)
		}
	}
	if recipient == nil {
		common.RespondWithError(s, i, "Pick someone to gift to.")
		return
	}

	fromID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}
	toID, err := common.ParseUserID(recipient.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	err = f.withAccountService(ctx, i, func(svc interfaces.AccountService) error {
		return svc.Gift(ctx, fromID, toID, amount)
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	respond(s, i, fmt.Sprintf("💸 %s gifted **%s eddies** to %s",
		common.GetUserMention(fromID), common.FormatEddies(amount), common.GetUserMention(toID)))
}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var embed *discordgo.MessageEmbed
	err := f.withAccountService(ctx, i, func(svc interfaces.AccountService) error {
		accounts, err := svc.Leaderboard(ctx, common.DefaultLeaderboardLimit)
		if err != nil {
			return err
		}
		embed = leaderboardEmbed(s, i.GuildID, accounts)
		return nil
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	respondEmbed(s, i, embed)
}

func (f *Feature) handleHighScores(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var embed *discordgo.MessageEmbed
	err := f.withAccountService(ctx, i, func(svc interfaces.AccountService) error {
		accounts, err := svc.HighScores(ctx, common.DefaultLeaderboardLimit)
		if err != nil {
			return err
		}
		embed = highScoresEmbed(s, i.GuildID, accounts)
		return nil
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	respondEmbed(s, i, embed)
}

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	discordID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	var embed *discordgo.MessageEmbed
	err = f.withAccountService(ctx, i, func(svc interfaces.AccountService) error {
		entries, err := svc.Transactions(ctx, discordID, common.DefaultHistoryLimit)
		if err != nil {
			return err
		}
		embed = historyEmbed(common.GetDisplayName(s, i.GuildID, i.Member.User.ID), entries)
		return nil
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	respondEphemeralEmbed(s, i, embed)
}

func (f *Feature) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	callerID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}
	if !f.cfg.IsAdmin(callerID) && !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "Only admins can override balances.")
		return
	}

	var value int64
	var target *discordgo.User
	for _, opt := range opts {
		switch opt.Name {
		case "value":
			value = opt.IntValue()
		case "user":
			target = opt.UserValue(s)
		}
	}
	if target == nil {
		common.RespondWithError(s, i, "Pick whose balance to set.")
		return
	}

	targetID, err := common.ParseUserID(target.ID)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	comment := fmt.Sprintf("admin override by %d", callerID)
	err = f.withAccountService(ctx, i, func(svc interfaces.AccountService) error {
		_, err := svc.SetBalance(ctx, targetID, value, comment)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Set %s's balance to **%s eddies**.",
		common.GetUserMention(targetID), common.FormatEddies(value)))
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		log.Errorf("Error responding to command: %v", err)
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to command: %v", err)
	}
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
	if err != nil {
		log.Errorf("Error responding to command: %v", err)
	}
}

func respondEphemeralEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to command: %v", err)
	}
}
