package entities

import (
	"errors"
	"time"
)

// TransactionEntry is one immutable, append-only ledger line recording a
// balance change and its cause. Positive amounts are credits, negative
// amounts are debits. Entries with a zero amount are allowed only as
// comment-only markers (revolution pledges, survived revolutions).
type TransactionEntry struct {
	ID             int64           `db:"id"`
	DiscordID      int64           `db:"discord_id"`
	GuildID        int64           `db:"guild_id"`
	Type           TransactionType `db:"transaction_type"`
	Amount         int64           `db:"amount"`
	BetID          *string         `db:"bet_id"`
	OtherDiscordID *int64          `db:"other_discord_id"`
	Comment        *string         `db:"comment"`
	CreatedAt      time.Time       `db:"created_at"`
}

// TransactionDetails carries everything about a balance change except the
// signed amount, which the account operation supplies. Keeping the two
// together in one call is what stops history and balance drifting apart.
type TransactionDetails struct {
	Type           TransactionType
	BetID          *string
	OtherDiscordID *int64
	Comment        *string
}

// IsCredit returns true if the entry increased the balance
func (e *TransactionEntry) IsCredit() bool {
	return e.Amount > 0
}

// IsDebit returns true if the entry decreased the balance
func (e *TransactionEntry) IsDebit() bool {
	return e.Amount < 0
}

// IsCommentOnly returns true if the entry records an event without a balance change
func (e *TransactionEntry) IsCommentOnly() bool {
	return e.Amount == 0
}

// Validate performs basic consistency checks on the entry
func (e *TransactionEntry) Validate() error {
	if e.Type == "" {
		return errors.New("transaction type cannot be empty")
	}
	if e.Amount == 0 && e.Comment == nil {
		return errors.New("zero-amount entry requires a comment")
	}
	if e.BetID != nil && !e.Type.IsBetRelated() {
		return errors.New("bet reference on a non-bet transaction")
	}
	return nil
}

// Description returns a human-readable description of the transaction
func (e *TransactionEntry) Description() string {
	switch e.Type {
	case TransactionTypeUserCreate:
		return "Joined the server"
	case TransactionTypeBetPlace:
		return "Eddies placed on a bet"
	case TransactionTypeBetWin:
		return "Bet win"
	case TransactionTypeBetRefund:
		return "Bet refund"
	case TransactionTypeGiftGive:
		return "Gift sent"
	case TransactionTypeGiftReceive:
		return "Gift received"
	case TransactionTypeDailySalary:
		return "Daily salary"
	case TransactionTypeTaxGains:
		return "Tax gains"
	case TransactionTypeRevTicketWin:
		return "Revolution win"
	case TransactionTypeRevKingLoss:
		return "Lost a revolution"
	case TransactionTypeRevSupporterLoss:
		return "Supported a failed king"
	case TransactionTypeAdminGive, TransactionTypeAdminTake, TransactionTypeOverride:
		return "Admin adjustment"
	default:
		return string(e.Type)
	}
}
