package services

import (
	"context"
	"testing"

	"eddies/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSalaryScenario(s *memStore) *salaryService {
	accounts := NewAccountService(memAccountRepo{s}, memTransactionRepo{s}, noopPublisher{})
	return NewSalaryService(accounts, memAccountRepo{s}, memSettingsRepo{s}).(*salaryService)
}

func TestDistributeDailySalary_MaxOfGainAndMinimum(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	service := newSalaryScenario(store)

	// Active user with gains above the floor, idle user paid the floor
	grinder := store.seedAccount(1, 100)
	grinder.DailyMinimum = 4
	idler := store.seedAccount(2, 100)
	idler.DailyMinimum = 5

	summary, err := service.DistributeDailySalary(ctx, map[int64]int64{1: 37})
	require.NoError(t, err)

	assert.Equal(t, int64(37), summary.NetGains[1])
	assert.Equal(t, int64(5), summary.NetGains[2])
	assert.Zero(t, summary.TaxGains)

	g, _ := memAccountRepo{store}.GetByDiscordID(ctx, 1)
	assert.Equal(t, int64(137), g.Balance)
	i, _ := memAccountRepo{store}.GetByDiscordID(ctx, 2)
	assert.Equal(t, int64(105), i.Balance)
}

func TestDistributeDailySalary_KingTaxesGains(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	kingID := int64(1)
	store.settings.KingDiscordID = &kingID
	store.settings.TaxRate = 0.1
	service := newSalaryScenario(store)

	store.seedAccount(1, 1000)
	peasant := store.seedAccount(2, 100)
	peasant.DailyMinimum = 0

	summary, err := service.DistributeDailySalary(ctx, map[int64]int64{1: 50, 2: 45})
	require.NoError(t, err)

	// Peasant pays floor(45 * 0.1) = 4; the king's own gain is untaxed
	assert.Equal(t, int64(41), summary.NetGains[2])
	assert.Equal(t, int64(4), summary.Taxed[2])
	assert.Equal(t, int64(4), summary.TaxGains)
	assert.Equal(t, int64(50), summary.NetGains[1])

	king, _ := memAccountRepo{store}.GetByDiscordID(ctx, 1)
	assert.Equal(t, int64(1054), king.Balance)

	// One daily_salary and one tax_gains entry for the king
	var salary, tax int
	for _, e := range store.entriesFor(1) {
		switch e.Type {
		case entities.TransactionTypeDailySalary:
			salary++
		case entities.TransactionTypeTaxGains:
			tax++
		}
	}
	assert.Equal(t, 1, salary)
	assert.Equal(t, 1, tax)
}

func TestDistributeDailySalary_MinimumDecaysAndResets(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	service := newSalaryScenario(store)

	idler := store.seedAccount(1, 100)
	idler.DailyMinimum = 3
	grinder := store.seedAccount(2, 100)
	grinder.DailyMinimum = 1
	exhausted := store.seedAccount(3, 100)
	exhausted.DailyMinimum = 0

	_, err := service.DistributeDailySalary(ctx, map[int64]int64{2: 12})
	require.NoError(t, err)

	i, _ := memAccountRepo{store}.GetByDiscordID(ctx, 1)
	assert.Equal(t, int64(2), i.DailyMinimum)
	g, _ := memAccountRepo{store}.GetByDiscordID(ctx, 2)
	assert.Equal(t, entities.ActiveDailyMinimum, g.DailyMinimum)
	e, _ := memAccountRepo{store}.GetByDiscordID(ctx, 3)
	assert.Equal(t, int64(0), e.DailyMinimum)
	// A dried-up floor still pays nothing rather than going negative
	assert.Equal(t, int64(100), e.Balance)
}

func TestDistributeDailySalary_SkipsInactiveAccounts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(9001)
	service := newSalaryScenario(store)

	gone := store.seedAccount(1, 100)
	gone.IsActive = false

	summary, err := service.DistributeDailySalary(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, summary.NetGains)

	account, _ := memAccountRepo{store}.GetByDiscordID(ctx, 1)
	assert.Equal(t, int64(100), account.Balance)
}
