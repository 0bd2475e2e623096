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

type betRepository struct {
	q       Queryable
	guildID int64
}

// NewBetRepository creates a new bet repository bound to the pool
func NewBetRepository(db *database.DB) *betRepository {
	return &betRepository{q: db.Pool}
}

// NewBetRepositoryScoped creates a new bet repository with a transaction and guild scope
func NewBetRepositoryScoped(tx Queryable, guildID int64) interfaces.BetRepository {
	return &betRepository{
		q:       tx,
		guildID: guildID,
	}
}

const betColumns = `id, bet_id, guild_id, creator_discord_id, title, state, result, is_private, channel_id, message_id, created_at, timeout_at, closed_at`

func scanBet(row pgx.Row) (*entities.Bet, error) {
	var b entities.Bet
	err := row.Scan(
		&b.ID,
		&b.BetID,
		&b.GuildID,
		&b.CreatorDiscordID,
		&b.Title,
		&b.State,
		&b.Result,
		&b.IsPrivate,
		&b.ChannelID,
		&b.MessageID,
		&b.CreatedAt,
		&b.TimeoutAt,
		&b.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// NextBetID draws the next value from the guild's counter in a single upsert,
// so two concurrent creations can never share an ID
func (r *betRepository) NextBetID(ctx context.Context) (string, error) {
	query := `
		INSERT INTO bet_counters (guild_id, counter)
		VALUES ($1, 1)
		ON CONFLICT (guild_id) DO UPDATE SET counter = bet_counters.counter + 1
		RETURNING counter
	`
	var counter int64
	if err := r.q.QueryRow(ctx, query, r.guildID).Scan(&counter); err != nil {
		return "", fmt.Errorf("failed to advance bet counter for guild %d: %w", r.guildID, err)
	}
	return entities.FormatBetID(counter), nil
}

// CreateWithOptions creates a bet and its options
func (r *betRepository) CreateWithOptions(ctx context.Context, bet *entities.Bet, options []*entities.BetOption) error {
	query := `
		INSERT INTO bets (bet_id, guild_id, creator_discord_id, title, state, is_private, channel_id, message_id, timeout_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		bet.BetID,
		r.guildID,
		bet.CreatorDiscordID,
		bet.Title,
		bet.State,
		bet.IsPrivate,
		bet.ChannelID,
		bet.MessageID,
		bet.TimeoutAt,
	).Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet %s: %w", bet.BetID, err)
	}
	bet.GuildID = r.guildID

	optionQuery := `
		INSERT INTO bet_options (bet_id, outcome_key, label, option_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for _, option := range options {
		option.BetID = bet.ID
		if err := r.q.QueryRow(ctx, optionQuery, bet.ID, option.OutcomeKey, option.Label, option.OptionOrder).Scan(&option.ID); err != nil {
			return fmt.Errorf("failed to create option %s for bet %s: %w", option.OutcomeKey, bet.BetID, err)
		}
	}
	return nil
}

// GetDetailByBetID returns a bet with options and stakes, or nil
func (r *betRepository) GetDetailByBetID(ctx context.Context, betID string) (*entities.BetDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bets
		WHERE bet_id = $1 AND guild_id = $2
	`, betColumns)

	bet, err := scanBet(r.q.QueryRow(ctx, query, betID, r.guildID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s in guild %d: %w", betID, r.guildID, err)
	}
	return r.loadDetail(ctx, bet)
}

func (r *betRepository) loadDetail(ctx context.Context, bet *entities.Bet) (*entities.BetDetail, error) {
	options, err := r.loadOptions(ctx, bet.ID)
	if err != nil {
		return nil, err
	}
	stakes, err := r.loadStakes(ctx, bet.ID)
	if err != nil {
		return nil, err
	}
	return &entities.BetDetail{Bet: bet, Options: options, Stakes: stakes}, nil
}

func (r *betRepository) loadOptions(ctx context.Context, betID int64) ([]*entities.BetOption, error) {
	query := `
		SELECT id, bet_id, outcome_key, label, option_order
		FROM bet_options
		WHERE bet_id = $1
		ORDER BY option_order
	`
	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	var options []*entities.BetOption
	for rows.Next() {
		var o entities.BetOption
		if err := rows.Scan(&o.ID, &o.BetID, &o.OutcomeKey, &o.Label, &o.OptionOrder); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, &o)
	}
	return options, rows.Err()
}

func (r *betRepository) loadStakes(ctx context.Context, betID int64) ([]*entities.BetStake, error) {
	query := `
		SELECT id, bet_id, discord_id, outcome_key, amount, first_bet_at, last_bet_at
		FROM bet_stakes
		WHERE bet_id = $1
		ORDER BY first_bet_at
	`
	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stakes: %w", err)
	}
	defer rows.Close()

	var stakes []*entities.BetStake
	for rows.Next() {
		var s entities.BetStake
		if err := rows.Scan(&s.ID, &s.BetID, &s.DiscordID, &s.OutcomeKey, &s.Amount, &s.FirstBetAt, &s.LastBetAt); err != nil {
			return nil, fmt.Errorf("failed to scan stake: %w", err)
		}
		stakes = append(stakes, &s)
	}
	return stakes, rows.Err()
}

// Update updates a bet's mutable fields
func (r *betRepository) Update(ctx context.Context, bet *entities.Bet) error {
	query := `
		UPDATE bets
		SET state = $2, result = $3, channel_id = $4, message_id = $5, timeout_at = $6, closed_at = $7
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		bet.ID,
		bet.State,
		bet.Result,
		bet.ChannelID,
		bet.MessageID,
		bet.TimeoutAt,
		bet.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update bet %s: %w", bet.BetID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bet %s not found", bet.BetID)
	}
	return nil
}

// ClaimSettle flips the bet to settled only if nobody got there first
func (r *betRepository) ClaimSettle(ctx context.Context, id int64, result string, closedAt time.Time) (bool, error) {
	query := `
		UPDATE bets
		SET state = 'settled', result = $2, closed_at = $3
		WHERE id = $1 AND state <> 'settled'
	`
	tag, err := r.q.Exec(ctx, query, id, result, closedAt)
	if err != nil {
		return false, fmt.Errorf("failed to claim settlement of bet %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreateStake records a better's first stake on a bet
func (r *betRepository) CreateStake(ctx context.Context, stake *entities.BetStake) error {
	query := `
		INSERT INTO bet_stakes (bet_id, discord_id, outcome_key, amount, first_bet_at, last_bet_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.q.QueryRow(ctx, query,
		stake.BetID,
		stake.DiscordID,
		stake.OutcomeKey,
		stake.Amount,
		stake.FirstBetAt,
		stake.LastBetAt,
	).Scan(&stake.ID)
	if err != nil {
		return fmt.Errorf("failed to create stake for %d on bet %d: %w", stake.DiscordID, stake.BetID, err)
	}
	return nil
}

// IncrementStake atomically grows an existing stake
func (r *betRepository) IncrementStake(ctx context.Context, stakeID int64, amount int64, lastBetAt time.Time) error {
	query := `
		UPDATE bet_stakes
		SET amount = amount + $2, last_bet_at = $3
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query, stakeID, amount, lastBetAt)
	if err != nil {
		return fmt.Errorf("failed to increment stake %d: %w", stakeID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stake %d not found", stakeID)
	}
	return nil
}

// CountOpenByCreator counts a creator's bets that are not yet settled
func (r *betRepository) CountOpenByCreator(ctx context.Context, creatorDiscordID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bets
		WHERE creator_discord_id = $1 AND guild_id = $2 AND state <> 'settled'
	`
	var count int
	if err := r.q.QueryRow(ctx, query, creatorDiscordID, r.guildID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open bets for %d: %w", creatorDiscordID, err)
	}
	return count, nil
}

// GetOpenBets returns all open bets in the guild
func (r *betRepository) GetOpenBets(ctx context.Context) ([]*entities.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bets
		WHERE guild_id = $1 AND state = 'open'
		ORDER BY created_at
	`, betColumns)

	return r.queryBets(ctx, query, r.guildID)
}

// GetExpiredOpenBets returns open bets whose timeout has passed
func (r *betRepository) GetExpiredOpenBets(ctx context.Context, now time.Time) ([]*entities.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bets
		WHERE guild_id = $1 AND state = 'open' AND timeout_at IS NOT NULL AND timeout_at < $2
		ORDER BY timeout_at
	`, betColumns)

	return r.queryBets(ctx, query, r.guildID, now)
}

func (r *betRepository) queryBets(ctx context.Context, query string, args ...any) ([]*entities.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}
