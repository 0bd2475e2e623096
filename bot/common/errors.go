package common

import (
	"errors"
	"fmt"

	"eddies/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// UserMessageForError maps domain errors to short user-facing messages.
// Unknown errors get a generic line so internals never leak to Discord.
func UserMessageForError(err error) string {
	switch {
	case errors.Is(err, entities.ErrAccountNotFound):
		return "You don't have an eddies account yet. Say something first!"
	case errors.Is(err, entities.ErrInsufficientFunds):
		return "You don't have enough eddies for that."
	case errors.Is(err, entities.ErrBetNotFound):
		return "No bet with that ID exists."
	case errors.Is(err, entities.ErrBetNotOpen):
		return "That bet is no longer taking stakes."
	case errors.Is(err, entities.ErrAlreadySettled):
		return "That bet has already been settled."
	case errors.Is(err, entities.ErrInvalidOutcome):
		return "That outcome is not part of the bet."
	case errors.Is(err, entities.ErrWrongOutcome):
		return "You already backed a different outcome on this bet."
	case errors.Is(err, entities.ErrInvalidAmount):
		return "The amount must be a positive number of eddies."
	case errors.Is(err, entities.ErrForbidden):
		return "You can't do that."
	case errors.Is(err, entities.ErrInvalidArgument):
		return "That input doesn't look right. Check the options and try again."
	case errors.Is(err, entities.ErrEventNotFound):
		return "There is no revolution right now."
	case errors.Is(err, entities.ErrEventClosed):
		return "The revolution is already over."
	case errors.Is(err, entities.ErrEventRunning):
		return "The revolution hasn't been decided yet."
	case errors.Is(err, entities.ErrNoKing):
		return "There is no king to overthrow."
	default:
		return "Something went wrong. Please try again later."
	}
}

// RespondWithError sends an error message as an ephemeral interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs the error and responds with the mapped user message
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	log.WithFields(log.Fields{
		"user_id": interactionUserID(i),
		"error":   err,
	}).Error("Command failed")

	RespondWithError(s, i, UserMessageForError(err))
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
