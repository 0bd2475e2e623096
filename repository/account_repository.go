package repository

import (
	"context"
	"fmt"

	"eddies/database"
	"eddies/domain/entities"
	"eddies/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type accountRepository struct {
	q       Queryable
	guildID int64
}

// NewAccountRepository creates a new account repository bound to the pool
func NewAccountRepository(db *database.DB) *accountRepository {
	return &accountRepository{q: db.Pool}
}

// NewAccountRepositoryScoped creates a new account repository with a transaction and guild scope
func NewAccountRepositoryScoped(tx Queryable, guildID int64) interfaces.AccountRepository {
	return &accountRepository{
		q:       tx,
		guildID: guildID,
	}
}

const accountColumns = `id, discord_id, guild_id, balance, high_score, daily_minimum, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var a entities.Account
	err := row.Scan(
		&a.ID,
		&a.DiscordID,
		&a.GuildID,
		&a.Balance,
		&a.HighScore,
		&a.DailyMinimum,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByDiscordID retrieves an account by Discord ID in the current guild
func (r *accountRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts
		WHERE discord_id = $1 AND guild_id = $2
	`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, r.guildID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d in guild %d: %w", discordID, r.guildID, err)
	}
	return account, nil
}

// Create creates a new account with the initial balance
func (r *accountRepository) Create(ctx context.Context, discordID int64, initialBalance int64) (*entities.Account, error) {
	query := fmt.Sprintf(`
		INSERT INTO accounts (discord_id, guild_id, balance, high_score, daily_minimum)
		VALUES ($1, $2, $3, $3, $4)
		RETURNING %s
	`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, r.guildID, initialBalance, entities.StartingDailyMinimum))
	if err != nil {
		return nil, fmt.Errorf("failed to create account %d in guild %d: %w", discordID, r.guildID, err)
	}
	return account, nil
}

// AdjustBalance applies a delta and refreshes the high score in one statement
func (r *accountRepository) AdjustBalance(ctx context.Context, discordID int64, delta int64) (*entities.Account, error) {
	query := fmt.Sprintf(`
		UPDATE accounts
		SET balance = balance + $3,
		    high_score = GREATEST(high_score, balance + $3),
		    updated_at = NOW()
		WHERE discord_id = $1 AND guild_id = $2
		RETURNING %s
	`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, r.guildID, delta))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balance for %d in guild %d: %w", discordID, r.guildID, err)
	}
	return account, nil
}

// TryDebit subtracts the amount only when the balance covers it. The
// predicate is re-evaluated under the row lock, so two racing debits can
// never both pass against a balance sufficient for only one.
func (r *accountRepository) TryDebit(ctx context.Context, discordID int64, amount int64) (*entities.Account, bool, error) {
	query := fmt.Sprintf(`
		UPDATE accounts
		SET balance = balance - $3,
		    updated_at = NOW()
		WHERE discord_id = $1 AND guild_id = $2 AND balance >= $3
		RETURNING %s
	`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, r.guildID, amount))
	if err == nil {
		return account, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, fmt.Errorf("failed to debit %d in guild %d: %w", discordID, r.guildID, err)
	}

	// Either the account does not exist or it cannot cover the amount
	account, err = r.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, false, err
	}
	return account, false, nil
}

// SetBalance sets the balance to an absolute value, refreshing the high score
func (r *accountRepository) SetBalance(ctx context.Context, discordID int64, value int64) (*entities.Account, error) {
	query := fmt.Sprintf(`
		UPDATE accounts
		SET balance = $3,
		    high_score = GREATEST(high_score, $3),
		    updated_at = NOW()
		WHERE discord_id = $1 AND guild_id = $2
		RETURNING %s
	`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, r.guildID, value))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set balance for %d in guild %d: %w", discordID, r.guildID, err)
	}
	return account, nil
}

// SetDailyMinimum sets the daily salary floor
func (r *accountRepository) SetDailyMinimum(ctx context.Context, discordID int64, value int64) error {
	query := `
		UPDATE accounts
		SET daily_minimum = $3, updated_at = NOW()
		WHERE discord_id = $1 AND guild_id = $2
	`
	_, err := r.q.Exec(ctx, query, discordID, r.guildID, value)
	if err != nil {
		return fmt.Errorf("failed to set daily minimum for %d: %w", discordID, err)
	}
	return nil
}

// DecayDailyMinimum decrements the salary floor by one, never below zero
func (r *accountRepository) DecayDailyMinimum(ctx context.Context, discordID int64) error {
	query := `
		UPDATE accounts
		SET daily_minimum = GREATEST(daily_minimum - 1, 0), updated_at = NOW()
		WHERE discord_id = $1 AND guild_id = $2
	`
	_, err := r.q.Exec(ctx, query, discordID, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to decay daily minimum for %d: %w", discordID, err)
	}
	return nil
}

// SetActive flags the account active or inactive
func (r *accountRepository) SetActive(ctx context.Context, discordID int64, active bool) error {
	query := `
		UPDATE accounts
		SET is_active = $3, updated_at = NOW()
		WHERE discord_id = $1 AND guild_id = $2
	`
	_, err := r.q.Exec(ctx, query, discordID, r.guildID, active)
	if err != nil {
		return fmt.Errorf("failed to set active flag for %d: %w", discordID, err)
	}
	return nil
}

// GetAllActive returns all active accounts in the guild
func (r *accountRepository) GetAllActive(ctx context.Context) ([]*entities.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts
		WHERE guild_id = $1 AND is_active
		ORDER BY discord_id
	`, accountColumns)

	return r.queryAccounts(ctx, query, r.guildID)
}

// GetTopBalances returns active accounts ordered by balance
func (r *accountRepository) GetTopBalances(ctx context.Context, limit int) ([]*entities.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts
		WHERE guild_id = $1 AND is_active
		ORDER BY balance DESC, discord_id
		LIMIT $2
	`, accountColumns)

	return r.queryAccounts(ctx, query, r.guildID, limit)
}

// GetTopHighScores returns accounts ordered by historical high score
func (r *accountRepository) GetTopHighScores(ctx context.Context, limit int) ([]*entities.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts
		WHERE guild_id = $1
		ORDER BY high_score DESC, discord_id
		LIMIT $2
	`, accountColumns)

	return r.queryAccounts(ctx, query, r.guildID, limit)
}

func (r *accountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]*entities.Account, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entities.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
