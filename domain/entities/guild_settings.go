package entities

import "time"

const (
	// DefaultTaxRate is the king's cut of everyone else's daily gains
	DefaultTaxRate = 0.1

	// DefaultRevolutionChance is the base success percentage of an uprising
	DefaultRevolutionChance = 30
)

// GuildSettings holds the per-guild knobs: who the king is, the tax rate
// applied to daily gains, and the revolution parameters.
type GuildSettings struct {
	GuildID             int64     `db:"guild_id"`
	KingDiscordID       *int64    `db:"king_discord_id"`
	TaxRate             float64   `db:"tax_rate"`
	RevolutionChance    int       `db:"revolution_chance"`
	RevolutionChannelID int64     `db:"revolution_channel_id"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// IsKing checks whether the given user currently holds the crown
func (gs *GuildSettings) IsKing(discordID int64) bool {
	return gs.KingDiscordID != nil && *gs.KingDiscordID == discordID
}
