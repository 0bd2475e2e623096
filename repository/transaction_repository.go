package repository

import (
	"context"
	"fmt"

	"eddies/database"
	"eddies/domain/entities"
	"eddies/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type transactionRepository struct {
	q       Queryable
	guildID int64
}

// NewTransactionRepository creates a new transaction repository bound to the pool
func NewTransactionRepository(db *database.DB) *transactionRepository {
	return &transactionRepository{q: db.Pool}
}

// NewTransactionRepositoryScoped creates a new transaction repository with a transaction and guild scope
func NewTransactionRepositoryScoped(tx Queryable, guildID int64) interfaces.TransactionRepository {
	return &transactionRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Record appends a new ledger entry
func (r *transactionRepository) Record(ctx context.Context, entry *entities.TransactionEntry) error {
	query := `
		INSERT INTO transactions (discord_id, guild_id, transaction_type, amount, bet_id, other_discord_id, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		entry.DiscordID,
		r.guildID,
		entry.Type,
		entry.Amount,
		entry.BetID,
		entry.OtherDiscordID,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record transaction for %d: %w", entry.DiscordID, err)
	}
	entry.GuildID = r.guildID
	return nil
}

// GetByUser returns a user's entries, newest first
func (r *transactionRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.TransactionEntry, error) {
	query := `
		SELECT id, discord_id, guild_id, transaction_type, amount, bet_id, other_discord_id, comment, created_at
		FROM transactions
		WHERE discord_id = $1 AND guild_id = $2
		ORDER BY id DESC
		LIMIT $3
	`
	return r.queryEntries(ctx, query, discordID, r.guildID, limit)
}

// GetByBet returns all entries referencing a bet, oldest first
func (r *transactionRepository) GetByBet(ctx context.Context, betID string) ([]*entities.TransactionEntry, error) {
	query := `
		SELECT id, discord_id, guild_id, transaction_type, amount, bet_id, other_discord_id, comment, created_at
		FROM transactions
		WHERE bet_id = $1 AND guild_id = $2
		ORDER BY id
	`
	return r.queryEntries(ctx, query, betID, r.guildID)
}

// SumByUser replays the ledger for one account
func (r *transactionRepository) SumByUser(ctx context.Context, discordID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE discord_id = $1 AND guild_id = $2
	`
	var sum int64
	if err := r.q.QueryRow(ctx, query, discordID, r.guildID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum transactions for %d: %w", discordID, err)
	}
	return sum, nil
}

func (r *transactionRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*entities.TransactionEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var entries []*entities.TransactionEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*entities.TransactionEntry, error) {
	var e entities.TransactionEntry
	err := row.Scan(
		&e.ID,
		&e.DiscordID,
		&e.GuildID,
		&e.Type,
		&e.Amount,
		&e.BetID,
		&e.OtherDiscordID,
		&e.Comment,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
