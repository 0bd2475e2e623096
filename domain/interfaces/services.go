package interfaces

import (
	"context"
	"time"

	"eddies/domain/entities"
)

// AccountService is the points-account contract: every balance change is an
// atomic adjustment paired with exactly one ledger entry. There is no way to
// move eddies without leaving a history line.
type AccountService interface {
	// GetAccount returns the account, or ErrAccountNotFound
	GetAccount(ctx context.Context, discordID int64) (*entities.Account, error)

	// EnsureAccount creates the account on first join (starting balance plus a
	// user_create entry) or reactivates a previously deactivated one
	EnsureAccount(ctx context.Context, discordID int64) (*entities.Account, error)

	// Deactivate flags the account inactive on guild leave; the balance is kept
	Deactivate(ctx context.Context, discordID int64) error

	// Credit adds amount to the balance and appends a ledger entry
	Credit(ctx context.Context, discordID int64, amount int64, details entities.TransactionDetails) (*entities.Account, error)

	// Debit subtracts amount only if the balance covers it, appending a ledger
	// entry; returns ErrInsufficientFunds otherwise
	Debit(ctx context.Context, discordID int64, amount int64, details entities.TransactionDetails) (*entities.Account, error)

	// SetBalance sets the balance to an absolute value (admin override),
	// recording the difference as an override entry
	SetBalance(ctx context.Context, discordID int64, value int64, comment string) (*entities.Account, error)

	// RecordMarker appends a comment-only entry with no balance change
	RecordMarker(ctx context.Context, discordID int64, details entities.TransactionDetails) error

	// Gift moves eddies between two users, leaving a paired give/receive trail
	Gift(ctx context.Context, fromDiscordID, toDiscordID, amount int64) error

	// Transactions returns the user's ledger entries, newest first
	Transactions(ctx context.Context, discordID int64, limit int) ([]*entities.TransactionEntry, error)

	// ReconcileBalance replays the ledger and returns (balance, ledger sum).
	// The two are equal whenever the conservation invariant holds.
	ReconcileBalance(ctx context.Context, discordID int64) (int64, int64, error)

	// Leaderboard returns the top active balances
	Leaderboard(ctx context.Context, limit int) ([]*entities.Account, error)

	// HighScores returns the top historical high scores
	HighScores(ctx context.Context, limit int) ([]*entities.Account, error)
}

// BettingService is the bet state machine and settlement engine
type BettingService interface {
	// CreateBet creates an open bet with 2-10 options, subject to the
	// creator's balance-derived open-bet quota
	CreateBet(ctx context.Context, creatorID int64, title string, options []string, timeout time.Duration, private bool) (*entities.BetDetail, error)

	// PlaceStake places or increases a better's stake on one outcome
	PlaceStake(ctx context.Context, betID string, betterID int64, outcomeKey string, amount int64) (*entities.BetDetail, error)

	// LockBet stops an open bet accepting stakes (creator only)
	LockBet(ctx context.Context, betID string, callerID int64) (*entities.Bet, error)

	// CloseBet settles the bet with the winning outcome (creator only) and
	// pays the winners; safe to retry, the second call reports ErrAlreadySettled
	CloseBet(ctx context.Context, betID string, callerID int64, winningOutcomeKey string) (*entities.BetSettlement, error)

	// GetBet returns a bet with options and stakes, or ErrBetNotFound
	GetBet(ctx context.Context, betID string) (*entities.BetDetail, error)

	// OpenBets lists the guild's open bets
	OpenBets(ctx context.Context) ([]*entities.Bet, error)

	// SweepExpiredBets locks open bets past their advisory timeout and
	// returns them so the caller can prompt the creators to settle
	SweepExpiredBets(ctx context.Context, now time.Time) ([]*entities.Bet, error)
}

// SalaryService distributes the daily eddies salary
type SalaryService interface {
	// DistributeDailySalary pays every active account
	// max(activity gain, daily minimum), taxing non-king gains for the king,
	// and decays the daily minimum of users with no activity
	DistributeDailySalary(ctx context.Context, activityGains map[int64]int64) (*entities.SalarySummary, error)
}

// RevolutionService runs the periodic uprising against the king
type RevolutionService interface {
	// StartEvent opens a new event, locking in the king's current balance
	StartEvent(ctx context.Context, now time.Time) (*entities.RevolutionEvent, error)

	// Pledge declares a user for one side of the open event
	Pledge(ctx context.Context, eventID int64, discordID int64, side entities.RevolutionSide) error

	// OpenEvent returns the guild's open event, or nil
	OpenEvent(ctx context.Context) (*entities.RevolutionDetail, error)

	// Resolve draws the outcome of an expired event and moves the eddies
	Resolve(ctx context.Context, eventID int64, now time.Time) (*entities.RevolutionResult, error)
}
