package services

import (
	"context"
	"testing"
	"time"

	"eddies/domain/entities"
	"eddies/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBettingMocks() (*testhelpers.MockAccountRepository, *testhelpers.MockTransactionRepository, *testhelpers.MockBetRepository, *testhelpers.MockGuildSettingsRepository) {
	return new(testhelpers.MockAccountRepository),
		new(testhelpers.MockTransactionRepository),
		new(testhelpers.MockBetRepository),
		new(testhelpers.MockGuildSettingsRepository)
}

func bettingWithMocks(accountRepo *testhelpers.MockAccountRepository, txRepo *testhelpers.MockTransactionRepository, betRepo *testhelpers.MockBetRepository, settingsRepo *testhelpers.MockGuildSettingsRepository, privileged func(int64) bool) *bettingService {
	accounts := NewAccountService(accountRepo, txRepo, testhelpers.NoopPublisher{})
	return NewBettingService(accounts, betRepo, settingsRepo, testhelpers.NoopPublisher{}, privileged).(*bettingService)
}

func TestCreateBet_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		title   string
		options []string
	}{
		{"empty title", "  ", []string{"Yes", "No"}},
		{"one option", "Will it rain?", []string{"Yes"}},
		{"eleven options", "Pick a number", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}},
		{"blank option", "Will it rain?", []string{"Yes", " "}},
		{"duplicate option", "Will it rain?", []string{"Yes", "Yes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo, txRepo, betRepo, settingsRepo := newBettingMocks()
			service := bettingWithMocks(accountRepo, txRepo, betRepo, settingsRepo, nil)

			_, err := service.CreateBet(ctx, 100, tt.title, tt.options, 0, false)
			assert.ErrorIs(t, err, entities.ErrInvalidArgument)
			betRepo.AssertNotCalled(t, "CreateWithOptions")
		})
	}
}

func TestCreateBet_QuotaExceeded(t *testing.T) {
	ctx := context.Background()
	accountRepo, txRepo, betRepo, settingsRepo := newBettingMocks()
	service := bettingWithMocks(accountRepo, txRepo, betRepo, settingsRepo, nil)

	// Balance 150 grants a quota of 2 open bets
	accountRepo.On("GetByDiscordID", ctx, int64(100)).Return(&entities.Account{
		DiscordID: 100, GuildID: 500, Balance: 150, IsActive: true,
	}, nil)
	settingsRepo.On("GetOrCreate", ctx).Return(&entities.GuildSettings{GuildID: 500}, nil)
	betRepo.On("CountOpenByCreator", ctx, int64(100)).Return(3, nil)

	_, err := service.CreateBet(ctx, 100, "One bet too many", []string{"Yes", "No"}, 0, false)
	assert.ErrorIs(t, err, entities.ErrForbidden)
	betRepo.AssertNotCalled(t, "NextBetID")
}

func TestCreateBet_KingAndPrivilegedRaiseQuota(t *testing.T) {
	ctx := context.Background()
	accountRepo, txRepo, betRepo, settingsRepo := newBettingMocks()
	kingID := int64(100)
	service := bettingWithMocks(accountRepo, txRepo, betRepo, settingsRepo, func(int64) bool { return true })

	accountRepo.On("GetByDiscordID", ctx, kingID).Return(&entities.Account{
		DiscordID: kingID, GuildID: 500, Balance: 150, IsActive: true,
	}, nil)
	settingsRepo.On("GetOrCreate", ctx).Return(&entities.GuildSettings{GuildID: 500, KingDiscordID: &kingID}, nil)
	// Base quota 2 + 2 king + 2 privileged = 6; 5 open bets is still fine
	betRepo.On("CountOpenByCreator", ctx, kingID).Return(5, nil)
	betRepo.On("NextBetID", ctx).Return("0042", nil)
	betRepo.On("CreateWithOptions", ctx, mock.MatchedBy(func(b *entities.Bet) bool {
		return b.BetID == "0042" && b.State == entities.BetStateOpen && b.GuildID == 500
	}), mock.AnythingOfType("[]*entities.BetOption")).Return(nil)

	detail, err := service.CreateBet(ctx, kingID, "Royal decree", []string{"Aye", "Nay"}, time.Hour, false)
	require.NoError(t, err)
	assert.Equal(t, "0042", detail.Bet.BetID)
	require.Len(t, detail.Options, 2)
	assert.Equal(t, entities.OutcomeKeys[0], detail.Options[0].OutcomeKey)
	assert.Equal(t, entities.OutcomeKeys[1], detail.Options[1].OutcomeKey)
	assert.NotNil(t, detail.Bet.TimeoutAt)
	betRepo.AssertExpectations(t)
}

func TestPlaceStake_ValidationOrder(t *testing.T) {
	ctx := context.Background()
	openBet := func() *entities.BetDetail {
		return &entities.BetDetail{
			Bet: &entities.Bet{ID: 1, BetID: "0001", GuildID: 500, CreatorDiscordID: 100, State: entities.BetStateOpen},
			Options: []*entities.BetOption{
				{ID: 10, BetID: 1, OutcomeKey: entities.OutcomeKeys[0], Label: "Yes"},
				{ID: 11, BetID: 1, OutcomeKey: entities.OutcomeKeys[1], Label: "No"},
			},
		}
	}

	tests := []struct {
		name    string
		detail  *entities.BetDetail
		key     string
		amount  int64
		wantErr error
	}{
		{"missing bet", nil, entities.OutcomeKeys[0], 10, entities.ErrBetNotFound},
		{"locked bet", func() *entities.BetDetail {
			d := openBet()
			d.Bet.State = entities.BetStateLocked
			return d
		}(), entities.OutcomeKeys[0], 10, entities.ErrBetNotOpen},
		{"unknown outcome", openBet(), "❓", 10, entities.ErrInvalidOutcome},
		{"zero amount", openBet(), entities.OutcomeKeys[0], 0, entities.ErrInvalidAmount},
		{"negative amount", openBet(), entities.OutcomeKeys[0], -5, entities.ErrInvalidAmount},
		{"hedge attempt", func() *entities.BetDetail {
			d := openBet()
			d.Stakes = []*entities.BetStake{{ID: 20, BetID: 1, DiscordID: 200, OutcomeKey: entities.OutcomeKeys[1], Amount: 10}}
			return d
		}(), entities.OutcomeKeys[0], 10, entities.ErrWrongOutcome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo, txRepo, betRepo, settingsRepo := newBettingMocks()
			service := bettingWithMocks(accountRepo, txRepo, betRepo, settingsRepo, nil)

			if tt.detail == nil {
				betRepo.On("GetDetailByBetID", ctx, "0001").Return(nil, nil)
			} else {
				betRepo.On("GetDetailByBetID", ctx, "0001").Return(tt.detail, nil)
			}

			_, err := service.PlaceStake(ctx, "0001", 200, tt.key, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
			// No eddies may move on a rejected placement
			accountRepo.AssertNotCalled(t, "TryDebit")
		})
	}
}

func TestPlaceStake_RefundsWhenStakeWriteFails(t *testing.T) {
	ctx := context.Background()
	accountRepo, txRepo, betRepo, settingsRepo := newBettingMocks()
	service := bettingWithMocks(accountRepo, txRepo, betRepo, settingsRepo, nil)

	detail := &entities.BetDetail{
		Bet: &entities.Bet{ID: 1, BetID: "0001", GuildID: 500, CreatorDiscordID: 100, State: entities.BetStateOpen},
		Options: []*entities.BetOption{
			{ID: 10, BetID: 1, OutcomeKey: entities.OutcomeKeys[0], Label: "Yes"},
			{ID: 11, BetID: 1, OutcomeKey: entities.OutcomeKeys[1], Label: "No"},
		},
	}
	betRepo.On("GetDetailByBetID", ctx, "0001").Return(detail, nil)
	accountRepo.On("TryDebit", ctx, int64(200), int64(25)).Return(&entities.Account{
		DiscordID: 200, GuildID: 500, Balance: 75,
	}, true, nil)
	txRepo.On("Record", ctx, mock.AnythingOfType("*entities.TransactionEntry")).Return(nil)
	betRepo.On("CreateStake", ctx, mock.AnythingOfType("*entities.BetStake")).Return(assert.AnError)
	// Compensation path credits the debit back
	accountRepo.On("AdjustBalance", ctx, int64(200), int64(25)).Return(&entities.Account{
		DiscordID: 200, GuildID: 500, Balance: 100,
	}, nil)

	_, err := service.PlaceStake(ctx, "0001", 200, entities.OutcomeKeys[0], 25)
	require.Error(t, err)
	accountRepo.AssertCalled(t, "AdjustBalance", ctx, int64(200), int64(25))
}

func TestLockBet_CreatorOnly(t *testing.T) {
	ctx := context.Background()
	accountRepo, txRepo, betRepo, settingsRepo := newBettingMocks()
	service := bettingWithMocks(accountRepo, txRepo, betRepo, settingsRepo, nil)

	betRepo.On("GetDetailByBetID", ctx, "0001").Return(&entities.BetDetail{
		Bet: &entities.Bet{ID: 1, BetID: "0001", CreatorDiscordID: 100, State: entities.BetStateOpen},
	}, nil)

	_, err := service.LockBet(ctx, "0001", 999)
	assert.ErrorIs(t, err, entities.ErrForbidden)
	betRepo.AssertNotCalled(t, "Update")
}

func TestCloseBet_ClaimLostToRacingCloser(t *testing.T) {
	ctx := context.Background()
	accountRepo, txRepo, betRepo, settingsRepo := newBettingMocks()
	service := bettingWithMocks(accountRepo, txRepo, betRepo, settingsRepo, nil)

	detail := &entities.BetDetail{
		Bet: &entities.Bet{ID: 1, BetID: "0001", CreatorDiscordID: 100, State: entities.BetStateLocked},
		Options: []*entities.BetOption{
			{ID: 10, BetID: 1, OutcomeKey: entities.OutcomeKeys[0], Label: "Yes"},
			{ID: 11, BetID: 1, OutcomeKey: entities.OutcomeKeys[1], Label: "No"},
		},
		Stakes: []*entities.BetStake{{ID: 20, BetID: 1, DiscordID: 200, OutcomeKey: entities.OutcomeKeys[0], Amount: 30}},
	}
	betRepo.On("GetDetailByBetID", ctx, "0001").Return(detail, nil)
	betRepo.On("ClaimSettle", ctx, int64(1), entities.OutcomeKeys[0], mock.AnythingOfType("time.Time")).Return(false, nil)

	_, err := service.CloseBet(ctx, "0001", 100, entities.OutcomeKeys[0])
	assert.ErrorIs(t, err, entities.ErrAlreadySettled)
	accountRepo.AssertNotCalled(t, "AdjustBalance")
}

func TestSweepExpiredBets_LocksAndReturns(t *testing.T) {
	ctx := context.Background()
	accountRepo, txRepo, betRepo, settingsRepo := newBettingMocks()
	service := bettingWithMocks(accountRepo, txRepo, betRepo, settingsRepo, nil)

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	expired := &entities.Bet{ID: 1, BetID: "0001", CreatorDiscordID: 100, State: entities.BetStateOpen, TimeoutAt: &past}

	betRepo.On("GetExpiredOpenBets", ctx, now).Return([]*entities.Bet{expired}, nil)
	betRepo.On("Update", ctx, mock.MatchedBy(func(b *entities.Bet) bool {
		return b.ID == 1 && b.State == entities.BetStateLocked
	})).Return(nil)

	locked, err := service.SweepExpiredBets(ctx, now)
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, entities.BetStateLocked, locked[0].State)
	betRepo.AssertExpectations(t)
}
