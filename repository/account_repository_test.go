package repository

import (
	"context"
	"sync"
	"testing"

	"eddies/domain/entities"
	"eddies/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGuildID int64 = 424242

func TestAccountRepository_GetByDiscordID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID)
	ctx := context.Background()

	t.Run("account not found", func(t *testing.T) {
		account, err := repo.GetByDiscordID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("account found", func(t *testing.T) {
		created, err := repo.Create(ctx, 123456, entities.StartingBalance)
		require.NoError(t, err)

		account, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, created.ID, account.ID)
		assert.Equal(t, testGuildID, account.GuildID)
		assert.Equal(t, entities.StartingBalance, account.Balance)
		assert.Equal(t, entities.StartingBalance, account.HighScore)
		assert.Equal(t, entities.StartingDailyMinimum, account.DailyMinimum)
		assert.True(t, account.IsActive)
	})

	t.Run("other guild is invisible", func(t *testing.T) {
		otherRepo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID+1)
		account, err := otherRepo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Nil(t, account)
	})
}

func TestAccountRepository_AdjustBalance(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID)
	ctx := context.Background()

	_, err := repo.Create(ctx, 100, 50)
	require.NoError(t, err)

	t.Run("credit raises balance and high score", func(t *testing.T) {
		account, err := repo.AdjustBalance(ctx, 100, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(80), account.Balance)
		assert.Equal(t, int64(80), account.HighScore)
	})

	t.Run("debit keeps the high-water mark", func(t *testing.T) {
		account, err := repo.AdjustBalance(ctx, 100, -60)
		require.NoError(t, err)
		assert.Equal(t, int64(20), account.Balance)
		assert.Equal(t, int64(80), account.HighScore)
	})

	t.Run("unknown account yields nil", func(t *testing.T) {
		account, err := repo.AdjustBalance(ctx, 999999, 10)
		require.NoError(t, err)
		assert.Nil(t, account)
	})
}

func TestAccountRepository_TryDebit(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID)
	ctx := context.Background()

	_, err := repo.Create(ctx, 100, 50)
	require.NoError(t, err)

	t.Run("covered debit succeeds", func(t *testing.T) {
		account, ok, err := repo.TryDebit(ctx, 100, 30)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(20), account.Balance)
	})

	t.Run("uncovered debit is refused and reports the balance", func(t *testing.T) {
		account, ok, err := repo.TryDebit(ctx, 100, 25)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NotNil(t, account)
		assert.Equal(t, int64(20), account.Balance)
	})

	t.Run("unknown account yields nil", func(t *testing.T) {
		account, ok, err := repo.TryDebit(ctx, 999999, 10)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, account)
	})
}

// Two simultaneous debits against a balance that covers only one: the row
// lock re-evaluates the predicate, so exactly one passes and the balance
// stays non-negative.
func TestAccountRepository_TryDebit_ConcurrentSameUser(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID)
	ctx := context.Background()

	_, err := repo.Create(ctx, 100, 50)
	require.NoError(t, err)

	results := make([]bool, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := repo.TryDebit(ctx, 100, 40)
			results[i] = ok
			errs[i] = err
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	debits := 0
	for _, ok := range results {
		if ok {
			debits++
		}
	}
	assert.Equal(t, 1, debits)

	account, err := repo.GetByDiscordID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(10), account.Balance)
	assert.GreaterOrEqual(t, account.Balance, int64(0))
}

func TestAccountRepository_DailyMinimum(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID)
	ctx := context.Background()

	_, err := repo.Create(ctx, 100, 10)
	require.NoError(t, err)

	require.NoError(t, repo.SetDailyMinimum(ctx, 100, 1))
	require.NoError(t, repo.DecayDailyMinimum(ctx, 100))
	require.NoError(t, repo.DecayDailyMinimum(ctx, 100))

	account, err := repo.GetByDiscordID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.DailyMinimum)
}

func TestAccountRepository_Leaderboards(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID)
	ctx := context.Background()

	for _, seed := range []struct {
		id      int64
		balance int64
	}{{1, 300}, {2, 100}, {3, 500}} {
		_, err := repo.Create(ctx, seed.id, seed.balance)
		require.NoError(t, err)
	}

	// User 3 spends most of it after peaking
	_, ok, err := repo.TryDebit(ctx, 3, 450)
	require.NoError(t, err)
	require.True(t, ok)

	// User 2 leaves the guild
	require.NoError(t, repo.SetActive(ctx, 2, false))

	top, err := repo.GetTopBalances(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1), top[0].DiscordID)
	assert.Equal(t, int64(3), top[1].DiscordID)

	scores, err := repo.GetTopHighScores(ctx, 10)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, int64(3), scores[0].DiscordID)
	assert.Equal(t, int64(500), scores[0].HighScore)
}
