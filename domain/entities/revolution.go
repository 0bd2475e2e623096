package entities

import "time"

// RevolutionState represents the lifecycle of a revolution event
type RevolutionState string

const (
	RevolutionStateOpen     RevolutionState = "open"
	RevolutionStateResolved RevolutionState = "resolved"
)

// RevolutionSide is which side of the uprising a participant declared for
type RevolutionSide string

const (
	SideSupporter     RevolutionSide = "supporter"
	SideRevolutionary RevolutionSide = "revolutionary"
)

// SupporterLossDivisor is the share of a supporter's balance lost when the
// revolution succeeds: one tenth, floored.
const SupporterLossDivisor int64 = 10

// RevolutionEvent is one scheduled uprising against the king. The king's
// balance is locked in at creation; the outcome is a single uniform draw
// against the stored chance percentage when the window expires.
type RevolutionEvent struct {
	ID             int64           `db:"id"`
	GuildID        int64           `db:"guild_id"`
	KingDiscordID  int64           `db:"king_discord_id"`
	LockedInEddies int64           `db:"locked_in_eddies"`
	Chance         int             `db:"chance"`
	State          RevolutionState `db:"state"`
	Success        *bool           `db:"success"`
	ChannelID      int64           `db:"channel_id"`
	MessageID      int64           `db:"message_id"`
	CreatedAt      time.Time       `db:"created_at"`
	ExpiresAt      time.Time       `db:"expires_at"`
	ResolvedAt     *time.Time      `db:"resolved_at"`
}

// RevolutionParticipant is one user's declared side in an event
type RevolutionParticipant struct {
	ID        int64          `db:"id"`
	EventID   int64          `db:"event_id"`
	DiscordID int64          `db:"discord_id"`
	Side      RevolutionSide `db:"side"`
	CreatedAt time.Time      `db:"created_at"`
}

// RevolutionDetail combines an event with its participants
type RevolutionDetail struct {
	Event        *RevolutionEvent
	Participants []*RevolutionParticipant
}

// RevolutionResult summarises a resolved event for the presentation layer
type RevolutionResult struct {
	Event           *RevolutionEvent
	Success         bool
	KingLoss        int64
	SupporterLosses map[int64]int64 // discord ID -> eddies lost
	PayoutEach      int64
	Remainder       int64 // floored-split remainder, retained by the king
	Revolutionaries []int64
}

// IsOpen checks if the event is still running
func (e *RevolutionEvent) IsOpen() bool {
	return e.State == RevolutionStateOpen
}

// IsExpired checks whether the event window has closed
func (e *RevolutionEvent) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Resolve marks the event resolved with the draw outcome
func (e *RevolutionEvent) Resolve(success bool, now time.Time) {
	if e.State != RevolutionStateOpen {
		return
	}
	e.State = RevolutionStateResolved
	e.Success = &success
	e.ResolvedAt = &now
}

// BySide partitions participants into supporters and revolutionaries
func (d *RevolutionDetail) BySide() (supporters, revolutionaries []int64) {
	for _, p := range d.Participants {
		switch p.Side {
		case SideSupporter:
			supporters = append(supporters, p.DiscordID)
		case SideRevolutionary:
			revolutionaries = append(revolutionaries, p.DiscordID)
		}
	}
	return supporters, revolutionaries
}

// SideOf returns the declared side of a participant, or empty string
func (d *RevolutionDetail) SideOf(discordID int64) RevolutionSide {
	for _, p := range d.Participants {
		if p.DiscordID == discordID {
			return p.Side
		}
	}
	return ""
}
