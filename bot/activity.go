package bot

import (
	"sync"

	"eddies/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// ActivityTracker counts chat messages per user since the last salary run.
// The counts become the activity gains handed to the daily salary job.
type ActivityTracker struct {
	mu     sync.Mutex
	counts map[int64]map[int64]int64 // guild ID -> discord ID -> messages
}

// NewActivityTracker creates an empty tracker
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{
		counts: make(map[int64]map[int64]int64),
	}
}

// Record counts one message for a user
func (t *ActivityTracker) Record(guildID, discordID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	guild, ok := t.counts[guildID]
	if !ok {
		guild = make(map[int64]int64)
		t.counts[guildID] = guild
	}
	guild[discordID]++
}

// Drain returns and resets the counts for a guild
func (t *ActivityTracker) Drain(guildID int64) map[int64]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	guild := t.counts[guildID]
	delete(t.counts, guildID)
	if guild == nil {
		return map[int64]int64{}
	}
	return guild
}

// handleMessageCreate counts guild chat activity toward the daily salary
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	guildID, err := common.ParseUserID(m.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", m.GuildID, err)
		return
	}
	discordID, err := common.ParseUserID(m.Author.ID)
	if err != nil {
		log.Errorf("Failed to parse user ID %s: %v", m.Author.ID, err)
		return
	}

	b.activity.Record(guildID, discordID)
}
