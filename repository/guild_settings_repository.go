package repository

import (
	"context"
	"fmt"

	"eddies/database"
	"eddies/domain/entities"
	"eddies/domain/interfaces"
)

type guildSettingsRepository struct {
	q       Queryable
	guildID int64
}

// NewGuildSettingsRepository creates a new guild settings repository bound to the pool
func NewGuildSettingsRepository(db *database.DB) *guildSettingsRepository {
	return &guildSettingsRepository{q: db.Pool}
}

// NewGuildSettingsRepositoryScoped creates a new guild settings repository with a transaction and guild scope
func NewGuildSettingsRepositoryScoped(tx Queryable, guildID int64) interfaces.GuildSettingsRepository {
	return &guildSettingsRepository{
		q:       tx,
		guildID: guildID,
	}
}

// GetOrCreate retrieves the guild settings, inserting defaults on first touch
func (r *guildSettingsRepository) GetOrCreate(ctx context.Context) (*entities.GuildSettings, error) {
	query := `
		INSERT INTO guild_settings (guild_id, tax_rate, revolution_chance)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING guild_id, king_discord_id, tax_rate, revolution_chance, revolution_channel_id, created_at, updated_at
	`
	var gs entities.GuildSettings
	err := r.q.QueryRow(ctx, query, r.guildID, entities.DefaultTaxRate, entities.DefaultRevolutionChance).Scan(
		&gs.GuildID,
		&gs.KingDiscordID,
		&gs.TaxRate,
		&gs.RevolutionChance,
		&gs.RevolutionChannelID,
		&gs.CreatedAt,
		&gs.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for guild %d: %w", r.guildID, err)
	}
	return &gs, nil
}

// Update updates guild settings
func (r *guildSettingsRepository) Update(ctx context.Context, settings *entities.GuildSettings) error {
	query := `
		UPDATE guild_settings
		SET king_discord_id = $2,
		    tax_rate = $3,
		    revolution_chance = $4,
		    revolution_channel_id = $5,
		    updated_at = NOW()
		WHERE guild_id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.KingDiscordID,
		settings.TaxRate,
		settings.RevolutionChance,
		settings.RevolutionChannelID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings for guild %d: %w", settings.GuildID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("settings for guild %d not found", settings.GuildID)
	}
	return nil
}
