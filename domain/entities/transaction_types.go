package entities

// TransactionType represents the cause of a balance change
type TransactionType string

// All transaction types supported by the system
const (
	// Account lifecycle
	TransactionTypeUserCreate TransactionType = "user_create"
	TransactionTypeOverride   TransactionType = "override"

	// Betting transactions
	TransactionTypeBetPlace  TransactionType = "bet_place"
	TransactionTypeBetWin    TransactionType = "bet_win"
	TransactionTypeBetRefund TransactionType = "bet_refund"

	// Gift transactions
	TransactionTypeGiftGive    TransactionType = "gift_give"
	TransactionTypeGiftReceive TransactionType = "gift_receive"

	// Salary and tax
	TransactionTypeDailySalary TransactionType = "daily_salary"
	TransactionTypeTaxGains    TransactionType = "tax_gains"

	// Revolution transactions
	TransactionTypeRevSupport       TransactionType = "rev_support"
	TransactionTypeRevOverthrow     TransactionType = "rev_overthrow"
	TransactionTypeRevTicketWin     TransactionType = "rev_ticket_win"
	TransactionTypeRevKingWin       TransactionType = "rev_king_win"
	TransactionTypeRevKingLoss      TransactionType = "rev_king_loss"
	TransactionTypeRevSupporterLoss TransactionType = "rev_supporter_loss"

	// Admin transactions
	TransactionTypeAdminGive TransactionType = "admin_give"
	TransactionTypeAdminTake TransactionType = "admin_take"
)

// IsBetRelated returns true if the transaction type belongs to the bet lifecycle
func (tt TransactionType) IsBetRelated() bool {
	return tt == TransactionTypeBetPlace ||
		tt == TransactionTypeBetWin ||
		tt == TransactionTypeBetRefund
}

// IsRevolutionRelated returns true if the transaction type belongs to the revolution mini-game
func (tt TransactionType) IsRevolutionRelated() bool {
	switch tt {
	case TransactionTypeRevSupport,
		TransactionTypeRevOverthrow,
		TransactionTypeRevTicketWin,
		TransactionTypeRevKingWin,
		TransactionTypeRevKingLoss,
		TransactionTypeRevSupporterLoss:
		return true
	}
	return false
}

// IsTransferType returns true if the transaction type represents a gift transfer
func (tt TransactionType) IsTransferType() bool {
	return tt == TransactionTypeGiftGive ||
		tt == TransactionTypeGiftReceive
}

// IsSystemGenerated returns true if the transaction type is produced by scheduled
// jobs or admin actions rather than a user-initiated action
func (tt TransactionType) IsSystemGenerated() bool {
	switch tt {
	case TransactionTypeUserCreate,
		TransactionTypeDailySalary,
		TransactionTypeTaxGains,
		TransactionTypeAdminGive,
		TransactionTypeAdminTake,
		TransactionTypeOverride:
		return true
	}
	return false
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
