package repository

import (
	"context"
	"fmt"
	"time"

	"eddies/database"
	"eddies/domain/entities"
	"eddies/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type revolutionRepository struct {
	q       Queryable
	guildID int64
}

// NewRevolutionRepository creates a new revolution repository bound to the pool
func NewRevolutionRepository(db *database.DB) *revolutionRepository {
	return &revolutionRepository{q: db.Pool}
}

// NewRevolutionRepositoryScoped creates a new revolution repository with a transaction and guild scope
func NewRevolutionRepositoryScoped(tx Queryable, guildID int64) interfaces.RevolutionRepository {
	return &revolutionRepository{
		q:       tx,
		guildID: guildID,
	}
}

const revolutionColumns = `id, guild_id, king_discord_id, locked_in_eddies, chance, state, success, channel_id, message_id, created_at, expires_at, resolved_at`

func scanRevolution(row pgx.Row) (*entities.RevolutionEvent, error) {
	var e entities.RevolutionEvent
	err := row.Scan(
		&e.ID,
		&e.GuildID,
		&e.KingDiscordID,
		&e.LockedInEddies,
		&e.Chance,
		&e.State,
		&e.Success,
		&e.ChannelID,
		&e.MessageID,
		&e.CreatedAt,
		&e.ExpiresAt,
		&e.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent creates a new open event
func (r *revolutionRepository) CreateEvent(ctx context.Context, event *entities.RevolutionEvent) error {
	query := `
		INSERT INTO revolution_events (guild_id, king_discord_id, locked_in_eddies, chance, state, channel_id, message_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		r.guildID,
		event.KingDiscordID,
		event.LockedInEddies,
		event.Chance,
		event.State,
		event.ChannelID,
		event.MessageID,
		event.ExpiresAt,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create revolution event in guild %d: %w", r.guildID, err)
	}
	event.GuildID = r.guildID
	return nil
}

// GetOpenEvent returns the guild's open event with participants, or nil
func (r *revolutionRepository) GetOpenEvent(ctx context.Context) (*entities.RevolutionDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM revolution_events
		WHERE guild_id = $1 AND state = 'open'
		ORDER BY created_at DESC
		LIMIT 1
	`, revolutionColumns)

	event, err := scanRevolution(r.q.QueryRow(ctx, query, r.guildID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open revolution event: %w", err)
	}
	return r.loadDetail(ctx, event)
}

// GetDetailByID returns an event with participants, or nil
func (r *revolutionRepository) GetDetailByID(ctx context.Context, id int64) (*entities.RevolutionDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM revolution_events
		WHERE id = $1 AND guild_id = $2
	`, revolutionColumns)

	event, err := scanRevolution(r.q.QueryRow(ctx, query, id, r.guildID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get revolution event %d: %w", id, err)
	}
	return r.loadDetail(ctx, event)
}

func (r *revolutionRepository) loadDetail(ctx context.Context, event *entities.RevolutionEvent) (*entities.RevolutionDetail, error) {
	query := `
		SELECT id, event_id, discord_id, side, created_at
		FROM revolution_supporters
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.q.Query(ctx, query, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []*entities.RevolutionParticipant
	for rows.Next() {
		var p entities.RevolutionParticipant
		if err := rows.Scan(&p.ID, &p.EventID, &p.DiscordID, &p.Side, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &entities.RevolutionDetail{Event: event, Participants: participants}, nil
}

// Update updates an event's mutable fields
func (r *revolutionRepository) Update(ctx context.Context, event *entities.RevolutionEvent) error {
	query := `
		UPDATE revolution_events
		SET state = $2, success = $3, channel_id = $4, message_id = $5, resolved_at = $6
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		event.ID,
		event.State,
		event.Success,
		event.ChannelID,
		event.MessageID,
		event.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update revolution event %d: %w", event.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("revolution event %d not found", event.ID)
	}
	return nil
}

// ClaimResolve flips the event to resolved only if nobody got there first
func (r *revolutionRepository) ClaimResolve(ctx context.Context, id int64, success bool, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE revolution_events
		SET state = 'resolved', success = $2, resolved_at = $3
		WHERE id = $1 AND state = 'open'
	`
	tag, err := r.q.Exec(ctx, query, id, success, resolvedAt)
	if err != nil {
		return false, fmt.Errorf("failed to claim resolve of event %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SaveParticipant records or re-sides a participant
func (r *revolutionRepository) SaveParticipant(ctx context.Context, participant *entities.RevolutionParticipant) error {
	query := `
		INSERT INTO revolution_supporters (event_id, discord_id, side)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, discord_id) DO UPDATE SET side = EXCLUDED.side
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query, participant.EventID, participant.DiscordID, participant.Side).
		Scan(&participant.ID, &participant.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save participant %d for event %d: %w", participant.DiscordID, participant.EventID, err)
	}
	return nil
}
