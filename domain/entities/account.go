package entities

import "time"

const (
	// StartingBalance is the eddies granted when an account is first created
	StartingBalance int64 = 10

	// StartingDailyMinimum is the initial daily salary floor
	StartingDailyMinimum int64 = 5

	// ActiveDailyMinimum is the value the salary floor resets to for active users
	ActiveDailyMinimum int64 = 4
)

// Account holds one user's eddies within one guild. Accounts are created on
// first join and never deleted; leaving a guild only flags the account
// inactive, and rejoining reactivates it with the balance preserved.
type Account struct {
	ID           int64     `db:"id"`
	DiscordID    int64     `db:"discord_id"`
	GuildID      int64     `db:"guild_id"`
	Balance      int64     `db:"balance"`
	HighScore    int64     `db:"high_score"`
	DailyMinimum int64     `db:"daily_minimum"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// HasSufficientBalance checks whether the account can cover an amount
func (a *Account) HasSufficientBalance(amount int64) bool {
	return a.Balance >= amount
}

// MaxOpenBets returns the number of open bets this account may maintain at
// once. The quota scales with wealth: two extra slots per full hundred
// eddies, never fewer than two, plus bonus slots for the king and for
// privileged users (applied by the caller, which knows the roles).
func (a *Account) MaxOpenBets() int {
	quota := int(a.Balance/100) * 2
	if quota == 0 {
		quota = 2
	}
	return quota
}
