package testhelpers

import (
	"context"
	"time"

	"eddies/domain/entities"
	"eddies/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, discordID int64, initialBalance int64) (*entities.Account, error) {
	args := m.Called(ctx, discordID, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, discordID int64, delta int64) (*entities.Account, error) {
	args := m.Called(ctx, discordID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) TryDebit(ctx context.Context, discordID int64, amount int64) (*entities.Account, bool, error) {
	args := m.Called(ctx, discordID, amount)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) SetBalance(ctx context.Context, discordID int64, value int64) (*entities.Account, error) {
	args := m.Called(ctx, discordID, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) SetDailyMinimum(ctx context.Context, discordID int64, value int64) error {
	args := m.Called(ctx, discordID, value)
	return args.Error(0)
}

func (m *MockAccountRepository) DecayDailyMinimum(ctx context.Context, discordID int64) error {
	args := m.Called(ctx, discordID)
	return args.Error(0)
}

func (m *MockAccountRepository) SetActive(ctx context.Context, discordID int64, active bool) error {
	args := m.Called(ctx, discordID, active)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAllActive(ctx context.Context) ([]*entities.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetTopBalances(ctx context.Context, limit int) ([]*entities.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetTopHighScores(ctx context.Context, limit int) ([]*entities.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, entry *entities.TransactionEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.TransactionEntry, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TransactionEntry), args.Error(1)
}

func (m *MockTransactionRepository) GetByBet(ctx context.Context, betID string) ([]*entities.TransactionEntry, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TransactionEntry), args.Error(1)
}

func (m *MockTransactionRepository) SumByUser(ctx context.Context, discordID int64) (int64, error) {
	args := m.Called(ctx, discordID)
	return args.Get(0).(int64), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) NextBetID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBetRepository) CreateWithOptions(ctx context.Context, bet *entities.Bet, options []*entities.BetOption) error {
	args := m.Called(ctx, bet, options)
	return args.Error(0)
}

func (m *MockBetRepository) GetDetailByBetID(ctx context.Context, betID string) (*entities.BetDetail, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BetDetail), args.Error(1)
}

func (m *MockBetRepository) Update(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) ClaimSettle(ctx context.Context, id int64, result string, closedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, result, closedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) CreateStake(ctx context.Context, stake *entities.BetStake) error {
	args := m.Called(ctx, stake)
	return args.Error(0)
}

func (m *MockBetRepository) IncrementStake(ctx context.Context, stakeID int64, amount int64, lastBetAt time.Time) error {
	args := m.Called(ctx, stakeID, amount, lastBetAt)
	return args.Error(0)
}

func (m *MockBetRepository) CountOpenByCreator(ctx context.Context, creatorDiscordID int64) (int, error) {
	args := m.Called(ctx, creatorDiscordID)
	return args.Int(0), args.Error(1)
}

func (m *MockBetRepository) GetOpenBets(ctx context.Context) ([]*entities.Bet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetExpiredOpenBets(ctx context.Context, now time.Time) ([]*entities.Bet, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

// MockRevolutionRepository is a mock implementation of RevolutionRepository
type MockRevolutionRepository struct {
	mock.Mock
}

func (m *MockRevolutionRepository) CreateEvent(ctx context.Context, event *entities.RevolutionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockRevolutionRepository) GetOpenEvent(ctx context.Context) (*entities.RevolutionDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RevolutionDetail), args.Error(1)
}

func (m *MockRevolutionRepository) GetDetailByID(ctx context.Context, id int64) (*entities.RevolutionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RevolutionDetail), args.Error(1)
}

func (m *MockRevolutionRepository) Update(ctx context.Context, event *entities.RevolutionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockRevolutionRepository) ClaimResolve(ctx context.Context, id int64, success bool, resolvedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, success, resolvedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRevolutionRepository) SaveParticipant(ctx context.Context, participant *entities.RevolutionParticipant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreate(ctx context.Context) (*entities.GuildSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) Update(ctx context.Context, settings *entities.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// NoopPublisher is an event publisher that drops everything, for tests that
// do not assert on events
type NoopPublisher struct{}

func (NoopPublisher) Publish(event events.Event) error {
	return nil
}
