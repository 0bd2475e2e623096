package entities

import (
	"fmt"
	"time"
)

// BetState represents the lifecycle phase of a bet
type BetState string

const (
	BetStateOpen    BetState = "open"
	BetStateLocked  BetState = "locked"
	BetStateSettled BetState = "settled"
)

const (
	MinBetOptions = 2
	MaxBetOptions = 10
)

// OutcomeKeys are the short unique tokens assigned to bet options in order.
// They double as the reaction emoji in the Discord surface.
var OutcomeKeys = []string{
	"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣",
	"6️⃣", "7️⃣", "8️⃣", "9️⃣", "\U0001f51f",
}

// Bet is a proposition with 2-10 mutually exclusive outcomes that users stake
// eddies on. BetID is a guild-scoped monotonically increasing counter
// formatted as a 4-digit string. The lifecycle is linear:
// open -> locked -> settled, never re-opened, never deleted.
type Bet struct {
	ID               int64      `db:"id"`
	BetID            string     `db:"bet_id"`
	GuildID          int64      `db:"guild_id"`
	CreatorDiscordID int64      `db:"creator_discord_id"`
	Title            string     `db:"title"`
	State            BetState   `db:"state"`
	Result           *string    `db:"result"`
	IsPrivate        bool       `db:"is_private"`
	ChannelID        int64      `db:"channel_id"`
	MessageID        int64      `db:"message_id"`
	CreatedAt        time.Time  `db:"created_at"`
	TimeoutAt        *time.Time `db:"timeout_at"`
	ClosedAt         *time.Time `db:"closed_at"`
}

// BetOption is one possible outcome of a bet
type BetOption struct {
	ID          int64  `db:"id"`
	BetID       int64  `db:"bet_id"`
	OutcomeKey  string `db:"outcome_key"`
	Label       string `db:"label"`
	OptionOrder int16  `db:"option_order"`
}

// BetStake is one better's position on a bet. A better may only ever
// increase their stake on the same outcome they first chose.
type BetStake struct {
	ID         int64     `db:"id"`
	BetID      int64     `db:"bet_id"`
	DiscordID  int64     `db:"discord_id"`
	OutcomeKey string    `db:"outcome_key"`
	Amount     int64     `db:"amount"`
	FirstBetAt time.Time `db:"first_bet_at"`
	LastBetAt  time.Time `db:"last_bet_at"`
}

// BetDetail combines a bet with its options and stakes
type BetDetail struct {
	Bet     *Bet
	Options []*BetOption
	Stakes  []*BetStake
}

// BetSettlement summarises a settled bet for the presentation layer
type BetSettlement struct {
	Bet           *Bet
	WinningOption *BetOption
	Winners       map[int64]int64 // discord ID -> payout credited
	Losers        map[int64]int64 // discord ID -> stake lost
	Refunded      bool            // single-better self-win case
}

// IsOpen checks if the bet is accepting stakes
func (b *Bet) IsOpen() bool {
	return b.State == BetStateOpen
}

// IsSettled checks if the bet has been settled
func (b *Bet) IsSettled() bool {
	return b.State == BetStateSettled
}

// IsTimedOut checks whether the advisory timeout has passed. Timeouts are
// enforced by the scheduler sweep, never by the bet itself.
func (b *Bet) IsTimedOut(now time.Time) bool {
	return b.TimeoutAt != nil && now.After(*b.TimeoutAt)
}

// Lock stops the bet accepting new stakes
func (b *Bet) Lock() {
	if b.State == BetStateOpen {
		b.State = BetStateLocked
	}
}

// Settle marks the bet settled with the winning outcome key. Settled state
// and a non-nil result always go together.
func (b *Bet) Settle(result string, now time.Time) {
	if b.State == BetStateSettled {
		return
	}
	b.State = BetStateSettled
	b.Result = &result
	b.ClosedAt = &now
}

// FormatBetID renders a counter value as the 4-digit bet ID
func FormatBetID(counter int64) string {
	return fmt.Sprintf("%04d", counter)
}

// Option returns the option with the given outcome key, or nil
func (d *BetDetail) Option(outcomeKey string) *BetOption {
	for _, opt := range d.Options {
		if opt.OutcomeKey == outcomeKey {
			return opt
		}
	}
	return nil
}

// StakeFor returns the stake held by a better, or nil
func (d *BetDetail) StakeFor(discordID int64) *BetStake {
	for _, stake := range d.Stakes {
		if stake.DiscordID == discordID {
			return stake
		}
	}
	return nil
}

// StakesByOutcome groups stakes by their chosen outcome key
func (d *BetDetail) StakesByOutcome() map[string][]*BetStake {
	result := make(map[string][]*BetStake)
	for _, stake := range d.Stakes {
		result[stake.OutcomeKey] = append(result[stake.OutcomeKey], stake)
	}
	return result
}

// TotalStaked returns the sum of all stakes on the bet
func (d *BetDetail) TotalStaked() int64 {
	var total int64
	for _, stake := range d.Stakes {
		total += stake.Amount
	}
	return total
}

// SoleStake returns the only stake if exactly one better exists, else nil
func (d *BetDetail) SoleStake() *BetStake {
	if len(d.Stakes) == 1 {
		return d.Stakes[0]
	}
	return nil
}
