package testutil

import (
	"time"

	"eddies/domain/entities"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(discordID, guildID int64) *entities.Account {
	now := time.Now().UTC()
	return &entities.Account{
		DiscordID:    discordID,
		GuildID:      guildID,
		Balance:      100,
		HighScore:    100,
		DailyMinimum: entities.StartingDailyMinimum,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestBet creates an open test bet with sensible defaults
func CreateTestBet(betID string, guildID, creatorID int64) *entities.Bet {
	return &entities.Bet{
		BetID:            betID,
		GuildID:          guildID,
		CreatorDiscordID: creatorID,
		Title:            "Will the test pass?",
		State:            entities.BetStateOpen,
	}
}

// CreateTestOptions creates bet options with the given labels
func CreateTestOptions(labels ...string) []*entities.BetOption {
	options := make([]*entities.BetOption, len(labels))
	for i, label := range labels {
		options[i] = &entities.BetOption{
			OutcomeKey:  entities.OutcomeKeys[i],
			Label:       label,
			OptionOrder: int16(i),
		}
	}
	return options
}

// CreateTestRevolutionEvent creates an open revolution event
func CreateTestRevolutionEvent(guildID, kingID, lockedIn int64) *entities.RevolutionEvent {
	return &entities.RevolutionEvent{
		GuildID:        guildID,
		KingDiscordID:  kingID,
		LockedInEddies: lockedIn,
		Chance:         entities.DefaultRevolutionChance,
		State:          entities.RevolutionStateOpen,
		ExpiresAt:      time.Now().UTC().Add(3 * time.Hour),
	}
}
