package services

import (
	"context"
	"testing"
	"time"

	"eddies/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRevolutionScenario(s *memStore, draw func(n int) int) (*revolutionService, *accountService) {
	accounts := NewAccountService(memAccountRepo{s}, memTransactionRepo{s}, noopPublisher{}).(*accountService)
	service := NewRevolutionService(accounts, memRevolutionRepo{s}, memSettingsRepo{s}, noopPublisher{}, draw).(*revolutionService)
	return service, accounts
}

func forceSuccess(n int) int { return 0 }
func forceFailure(n int) int { return n - 1 }

func TestStartEvent_LocksKingBalance(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	kingID := int64(1)
	store.settings.KingDiscordID = &kingID
	service, _ := newRevolutionScenario(store, nil)

	store.seedAccount(1, 1200)
	now := time.Now().UTC()

	event, err := service.StartEvent(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), event.LockedInEddies)
	assert.Equal(t, entities.DefaultRevolutionChance, event.Chance)
	assert.Equal(t, now.Add(RevolutionWindow), event.ExpiresAt)

	// Only one uprising at a time
	_, err = service.StartEvent(ctx, now)
	assert.ErrorIs(t, err, entities.ErrEventRunning)
}

func TestStartEvent_NoKing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	service, _ := newRevolutionScenario(store, nil)

	_, err := service.StartEvent(ctx, time.Now().UTC())
	assert.ErrorIs(t, err, entities.ErrNoKing)
}

func TestPledge_KingBarredAndSidesExclusive(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	kingID := int64(1)
	store.settings.KingDiscordID = &kingID
	service, _ := newRevolutionScenario(store, nil)

	store.seedAccount(1, 500)
	store.seedAccount(2, 100)
	now := time.Now().UTC()

	event, err := service.StartEvent(ctx, now)
	require.NoError(t, err)

	err = service.Pledge(ctx, event.ID, kingID, entities.SideSupporter)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	require.NoError(t, service.Pledge(ctx, event.ID, 2, entities.SideSupporter))
	// Switching sides replaces the pledge rather than duplicating it
	require.NoError(t, service.Pledge(ctx, event.ID, 2, entities.SideRevolutionary))

	detail, err := service.OpenEvent(ctx)
	require.NoError(t, err)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, entities.SideRevolutionary, detail.Participants[0].Side)
}

func TestResolve_FailureLeavesBalancesAlone(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	kingID := int64(1)
	store.settings.KingDiscordID = &kingID
	service, accounts := newRevolutionScenario(store, forceFailure)

	store.seedAccount(1, 1000)
	store.seedAccount(2, 100)
	now := time.Now().UTC()

	event, err := service.StartEvent(ctx, now)
	require.NoError(t, err)
	require.NoError(t, service.Pledge(ctx, event.ID, 2, entities.SideRevolutionary))

	result, err := service.Resolve(ctx, event.ID, now.Add(RevolutionWindow+time.Minute))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Zero(t, result.KingLoss)

	king, err := accounts.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), king.Balance)

	// The king's survival leaves a comment-only trail
	entries := store.entriesOfType(1, entities.TransactionTypeRevKingWin)
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].Amount)
}

func TestResolve_SuccessSplitsPoolWithRemainderToKing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	kingID := int64(1)
	store.settings.KingDiscordID = &kingID
	service, accounts := newRevolutionScenario(store, forceSuccess)

	store.seedAccount(1, 1000)
	store.seedAccount(2, 95) // supporter, loses floor(95/10) = 9
	store.seedAccount(3, 50) // revolutionary
	store.seedAccount(4, 50) // revolutionary
	store.seedAccount(5, 50) // revolutionary
	now := time.Now().UTC()

	event, err := service.StartEvent(ctx, now)
	require.NoError(t, err)
	require.NoError(t, service.Pledge(ctx, event.ID, 2, entities.SideSupporter))
	for uid := int64(3); uid <= 5; uid++ {
		require.NoError(t, service.Pledge(ctx, event.ID, uid, entities.SideRevolutionary))
	}

	result, err := service.Resolve(ctx, event.ID, now.Add(RevolutionWindow+time.Minute))
	require.NoError(t, err)
	require.True(t, result.Success)

	// King loses floor(1000/2) = 500, supporter 9; pool 509 splits 169 each
	// with remainder 2 back to the king
	assert.Equal(t, int64(500), result.KingLoss)
	assert.Equal(t, int64(9), result.SupporterLosses[2])
	assert.Equal(t, int64(169), result.PayoutEach)
	assert.Equal(t, int64(2), result.Remainder)

	king, _ := accounts.GetAccount(ctx, 1)
	assert.Equal(t, int64(502), king.Balance)
	supporter, _ := accounts.GetAccount(ctx, 2)
	assert.Equal(t, int64(86), supporter.Balance)
	for uid := int64(3); uid <= 5; uid++ {
		rev, _ := accounts.GetAccount(ctx, uid)
		assert.Equal(t, int64(219), rev.Balance)
	}

	// Conservation: every eddy debited was credited somewhere
	var total int64
	for _, uid := range []int64{1, 2, 3, 4, 5} {
		a, _ := accounts.GetAccount(ctx, uid)
		total += a.Balance
	}
	assert.Equal(t, int64(1000+95+50+50+50), total)
}

func TestResolve_KingLossCappedAtBalance(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	kingID := int64(1)
	store.settings.KingDiscordID = &kingID
	service, accounts := newRevolutionScenario(store, forceSuccess)

	king := store.seedAccount(1, 1000)
	store.seedAccount(2, 50)
	now := time.Now().UTC()

	event, err := service.StartEvent(ctx, now)
	require.NoError(t, err)
	require.NoError(t, service.Pledge(ctx, event.ID, 2, entities.SideRevolutionary))

	// The king gambled most of it away while the uprising brewed
	king.Balance = 120

	result, err := service.Resolve(ctx, event.ID, now.Add(RevolutionWindow+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(120), result.KingLoss)

	after, _ := accounts.GetAccount(ctx, 1)
	assert.Equal(t, int64(0), after.Balance)
}

func TestResolve_NobodyJoinedMeansNoUprising(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	kingID := int64(1)
	store.settings.KingDiscordID = &kingID
	service, accounts := newRevolutionScenario(store, forceSuccess)

	store.seedAccount(1, 1000)
	now := time.Now().UTC()

	event, err := service.StartEvent(ctx, now)
	require.NoError(t, err)

	result, err := service.Resolve(ctx, event.ID, now.Add(RevolutionWindow+time.Minute))
	require.NoError(t, err)
	assert.False(t, result.Success)

	king, _ := accounts.GetAccount(ctx, 1)
	assert.Equal(t, int64(1000), king.Balance)
}

func TestResolve_GuardsAgainstEarlyAndRepeatedTicks(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	kingID := int64(1)
	store.settings.KingDiscordID = &kingID
	service, _ := newRevolutionScenario(store, forceFailure)

	store.seedAccount(1, 1000)
	now := time.Now().UTC()

	event, err := service.StartEvent(ctx, now)
	require.NoError(t, err)

	_, err = service.Resolve(ctx, event.ID, now.Add(time.Hour))
	assert.ErrorIs(t, err, entities.ErrEventRunning)

	_, err = service.Resolve(ctx, event.ID, now.Add(RevolutionWindow+time.Minute))
	require.NoError(t, err)

	_, err = service.Resolve(ctx, event.ID, now.Add(RevolutionWindow+2*time.Minute))
	assert.ErrorIs(t, err, entities.ErrEventClosed)
}
