package entities

import "errors"

// Expected, recoverable failure conditions reported to the command surface.
// Services wrap these with context; callers match with errors.Is and decide
// how to phrase them to the user. Storage-layer failures are returned as-is
// and treated as fatal by the caller.
var (
	// ErrAccountNotFound indicates no account exists for the (user, guild) pair
	ErrAccountNotFound = errors.New("account not found")

	// ErrBetNotFound indicates no bet exists with the given ID in the guild
	ErrBetNotFound = errors.New("bet not found")

	// ErrBetNotOpen indicates the bet is no longer accepting stakes
	ErrBetNotOpen = errors.New("bet is not open")

	// ErrAlreadySettled indicates the bet has already been settled
	ErrAlreadySettled = errors.New("bet already settled")

	// ErrInvalidOutcome indicates the outcome key is not part of the bet
	ErrInvalidOutcome = errors.New("invalid outcome")

	// ErrWrongOutcome indicates a better tried to stake on a different
	// outcome than the one they first chose
	ErrWrongOutcome = errors.New("stake is locked to a different outcome")

	// ErrInvalidAmount indicates a non-positive stake or transfer amount
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds indicates the balance cannot cover the debit
	ErrInsufficientFunds = errors.New("not enough eddies")

	// ErrForbidden indicates the caller is not allowed to perform the action
	ErrForbidden = errors.New("not allowed")

	// ErrInvalidArgument indicates malformed input such as a bad option list
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEventNotFound indicates no revolution event with the given ID
	ErrEventNotFound = errors.New("revolution event not found")

	// ErrEventClosed indicates the revolution event has already been resolved
	ErrEventClosed = errors.New("revolution event is closed")

	// ErrEventRunning indicates the revolution event window is still open
	ErrEventRunning = errors.New("revolution event is still running")

	// ErrNoKing indicates the guild has no crowned user to overthrow
	ErrNoKing = errors.New("guild has no king")
)
