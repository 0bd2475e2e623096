package repository

import (
	"context"
	"testing"
	"time"

	"eddies/domain/entities"
	"eddies/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetRepository_NextBetID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewBetRepositoryScoped(testDB.DB.Pool, testGuildID)
	other := NewBetRepositoryScoped(testDB.DB.Pool, testGuildID+1)

	first, err := repo.NextBetID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0001", first)

	second, err := repo.NextBetID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0002", second)

	// Counters are per guild
	otherFirst, err := other.NextBetID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0001", otherFirst)
}

func TestBetRepository_CreateAndLoad(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewBetRepositoryScoped(testDB.DB.Pool, testGuildID)

	bet := testutil.CreateTestBet("0001", testGuildID, 100)
	options := testutil.CreateTestOptions("Yes", "No", "Maybe")
	require.NoError(t, repo.CreateWithOptions(ctx, bet, options))
	assert.NotZero(t, bet.ID)

	detail, err := repo.GetDetailByBetID(ctx, "0001")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "Will the test pass?", detail.Bet.Title)
	assert.Equal(t, entities.BetStateOpen, detail.Bet.State)
	assert.Nil(t, detail.Bet.Result)
	require.Len(t, detail.Options, 3)
	assert.Equal(t, entities.OutcomeKeys[0], detail.Options[0].OutcomeKey)
	assert.Equal(t, "Maybe", detail.Options[2].Label)
	assert.Empty(t, detail.Stakes)

	missing, err := repo.GetDetailByBetID(ctx, "9999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBetRepository_Stakes(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewBetRepositoryScoped(testDB.DB.Pool, testGuildID)

	bet := testutil.CreateTestBet("0001", testGuildID, 100)
	require.NoError(t, repo.CreateWithOptions(ctx, bet, testutil.CreateTestOptions("Yes", "No")))

	now := time.Now().UTC().Truncate(time.Millisecond)
	stake := &entities.BetStake{
		BetID:      bet.ID,
		DiscordID:  200,
		OutcomeKey: entities.OutcomeKeys[0],
		Amount:     40,
		FirstBetAt: now,
		LastBetAt:  now,
	}
	require.NoError(t, repo.CreateStake(ctx, stake))
	assert.NotZero(t, stake.ID)

	later := now.Add(time.Minute)
	require.NoError(t, repo.IncrementStake(ctx, stake.ID, 10, later))

	detail, err := repo.GetDetailByBetID(ctx, "0001")
	require.NoError(t, err)
	require.Len(t, detail.Stakes, 1)
	assert.Equal(t, int64(50), detail.Stakes[0].Amount)
	assert.WithinDuration(t, later, detail.Stakes[0].LastBetAt, time.Second)

	// One row per better: a second first-stake for the same user must fail
	err = repo.CreateStake(ctx, &entities.BetStake{
		BetID:      bet.ID,
		DiscordID:  200,
		OutcomeKey: entities.OutcomeKeys[1],
		Amount:     5,
		FirstBetAt: now,
		LastBetAt:  now,
	})
	assert.Error(t, err)
}

func TestBetRepository_ClaimSettle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewBetRepositoryScoped(testDB.DB.Pool, testGuildID)

	bet := testutil.CreateTestBet("0001", testGuildID, 100)
	require.NoError(t, repo.CreateWithOptions(ctx, bet, testutil.CreateTestOptions("Yes", "No")))

	now := time.Now().UTC()
	claimed, err := repo.ClaimSettle(ctx, bet.ID, entities.OutcomeKeys[0], now)
	require.NoError(t, err)
	assert.True(t, claimed)

	// The claim is single-shot
	claimed, err = repo.ClaimSettle(ctx, bet.ID, entities.OutcomeKeys[1], now)
	require.NoError(t, err)
	assert.False(t, claimed)

	detail, err := repo.GetDetailByBetID(ctx, "0001")
	require.NoError(t, err)
	assert.Equal(t, entities.BetStateSettled, detail.Bet.State)
	require.NotNil(t, detail.Bet.Result)
	assert.Equal(t, entities.OutcomeKeys[0], *detail.Bet.Result)
	assert.NotNil(t, detail.Bet.ClosedAt)
}

func TestBetRepository_OpenBetQueries(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewBetRepositoryScoped(testDB.DB.Pool, testGuildID)
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	fresh := testutil.CreateTestBet("0001", testGuildID, 100)
	fresh.TimeoutAt = &future
	require.NoError(t, repo.CreateWithOptions(ctx, fresh, testutil.CreateTestOptions("A", "B")))

	stale := testutil.CreateTestBet("0002", testGuildID, 100)
	stale.TimeoutAt = &past
	require.NoError(t, repo.CreateWithOptions(ctx, stale, testutil.CreateTestOptions("A", "B")))

	settled := testutil.CreateTestBet("0003", testGuildID, 100)
	require.NoError(t, repo.CreateWithOptions(ctx, settled, testutil.CreateTestOptions("A", "B")))
	_, err := repo.ClaimSettle(ctx, settled.ID, entities.OutcomeKeys[0], now)
	require.NoError(t, err)

	open, err := repo.GetOpenBets(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	expired, err := repo.GetExpiredOpenBets(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "0002", expired[0].BetID)

	count, err := repo.CountOpenByCreator(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

