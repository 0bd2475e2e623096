package services

import (
	"context"
	"sort"
	"time"

	"eddies/domain/entities"
	"eddies/domain/events"
	"eddies/domain/interfaces"
)

// memStore is an in-memory stand-in for the guild-scoped repositories, used
// by the multi-step scenario tests where wiring mock expectations for every
// intermediate call would obscure what is being verified.
type memStore struct {
	guildID  int64
	accounts map[int64]*entities.Account
	entries  []*entities.TransactionEntry
	bets     map[int64]*entities.Bet
	options  map[int64][]*entities.BetOption
	stakes   map[int64][]*entities.BetStake
	counter  int64
	settings *entities.GuildSettings
	nextID   int64
	revs     map[int64]*entities.RevolutionEvent
	revParts map[int64][]*entities.RevolutionParticipant
}

func newMemStore(guildID int64) *memStore {
	return &memStore{
		guildID:  guildID,
		accounts: make(map[int64]*entities.Account),
		bets:     make(map[int64]*entities.Bet),
		options:  make(map[int64][]*entities.BetOption),
		stakes:   make(map[int64][]*entities.BetStake),
		settings: &entities.GuildSettings{
			GuildID:          guildID,
			TaxRate:          entities.DefaultTaxRate,
			RevolutionChance: entities.DefaultRevolutionChance,
		},
		revs:     make(map[int64]*entities.RevolutionEvent),
		revParts: make(map[int64][]*entities.RevolutionParticipant),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// seedAccount creates an account with a matching ledger entry, so the
// entries-sum-to-balance invariant holds for fixtures the same way it does
// for accounts created through EnsureAccount.
func (s *memStore) seedAccount(discordID, balance int64) *entities.Account {
	account := s.putAccount(discordID, balance)
	if balance != 0 {
		s.entries = append(s.entries, &entities.TransactionEntry{
			ID:        s.id(),
			DiscordID: discordID,
			GuildID:   s.guildID,
			Type:      entities.TransactionTypeUserCreate,
			Amount:    balance,
			CreatedAt: time.Now().UTC(),
		})
	}
	return account
}

// putAccount stores an account without a ledger entry. The repository Create
// path uses it because the account service records the creation entry itself.
func (s *memStore) putAccount(discordID, balance int64) *entities.Account {
	account := &entities.Account{
		ID:           s.id(),
		DiscordID:    discordID,
		GuildID:      s.guildID,
		Balance:      balance,
		HighScore:    balance,
		DailyMinimum: entities.StartingDailyMinimum,
		IsActive:     true,
	}
	s.accounts[discordID] = account
	return account
}

// ledgerSum replays a user's entries, the way ReconcileBalance does
func (s *memStore) ledgerSum(discordID int64) int64 {
	var sum int64
	for _, e := range s.entries {
		if e.DiscordID == discordID {
			sum += e.Amount
		}
	}
	return sum
}

func (s *memStore) entriesFor(discordID int64) []*entities.TransactionEntry {
	var out []*entities.TransactionEntry
	for _, e := range s.entries {
		if e.DiscordID == discordID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) entriesOfType(discordID int64, kind entities.TransactionType) []*entities.TransactionEntry {
	var out []*entities.TransactionEntry
	for _, e := range s.entriesFor(discordID) {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

type memAccountRepo struct{ s *memStore }

func (r memAccountRepo) GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error) {
	a, ok := r.s.accounts[discordID]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r memAccountRepo) Create(ctx context.Context, discordID int64, initialBalance int64) (*entities.Account, error) {
	a := r.s.putAccount(discordID, initialBalance)
	copied := *a
	return &copied, nil
}

func (r memAccountRepo) AdjustBalance(ctx context.Context, discordID int64, delta int64) (*entities.Account, error) {
	a, ok := r.s.accounts[discordID]
	if !ok {
		return nil, nil
	}
	a.Balance += delta
	if a.Balance > a.HighScore {
		a.HighScore = a.Balance
	}
	copied := *a
	return &copied, nil
}

func (r memAccountRepo) TryDebit(ctx context.Context, discordID int64, amount int64) (*entities.Account, bool, error) {
	a, ok := r.s.accounts[discordID]
	if !ok {
		return nil, false, nil
	}
	if a.Balance < amount {
		copied := *a
		return &copied, false, nil
	}
	a.Balance -= amount
	copied := *a
	return &copied, true, nil
}

func (r memAccountRepo) SetBalance(ctx context.Context, discordID int64, value int64) (*entities.Account, error) {
	a, ok := r.s.accounts[discordID]
	if !ok {
		return nil, nil
	}
	a.Balance = value
	if a.Balance > a.HighScore {
		a.HighScore = a.Balance
	}
	copied := *a
	return &copied, nil
}

func (r memAccountRepo) SetDailyMinimum(ctx context.Context, discordID int64, value int64) error {
	if a, ok := r.s.accounts[discordID]; ok {
		a.DailyMinimum = value
	}
	return nil
}

func (r memAccountRepo) DecayDailyMinimum(ctx context.Context, discordID int64) error {
	if a, ok := r.s.accounts[discordID]; ok && a.DailyMinimum > 0 {
		a.DailyMinimum--
	}
	return nil
}

func (r memAccountRepo) SetActive(ctx context.Context, discordID int64, active bool) error {
	if a, ok := r.s.accounts[discordID]; ok {
		a.IsActive = active
	}
	return nil
}

func (r memAccountRepo) GetAllActive(ctx context.Context) ([]*entities.Account, error) {
	var out []*entities.Account
	for _, a := range r.s.accounts {
		if a.IsActive {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DiscordID < out[j].DiscordID })
	return out, nil
}

func (r memAccountRepo) GetTopBalances(ctx context.Context, limit int) ([]*entities.Account, error) {
	out, _ := r.GetAllActive(ctx)
	sort.Slice(out, func(i, j int) bool { return out[i].Balance > out[j].Balance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memAccountRepo) GetTopHighScores(ctx context.Context, limit int) ([]*entities.Account, error) {
	out, _ := r.GetAllActive(ctx)
	sort.Slice(out, func(i, j int) bool { return out[i].HighScore > out[j].HighScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memTransactionRepo struct{ s *memStore }

func (r memTransactionRepo) Record(ctx context.Context, entry *entities.TransactionEntry) error {
	entry.ID = r.s.id()
	entry.CreatedAt = time.Now().UTC()
	r.s.entries = append(r.s.entries, entry)
	return nil
}

func (r memTransactionRepo) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.TransactionEntry, error) {
	out := r.s.entriesFor(discordID)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memTransactionRepo) GetByBet(ctx context.Context, betID string) ([]*entities.TransactionEntry, error) {
	var out []*entities.TransactionEntry
	for _, e := range r.s.entries {
		if e.BetID != nil && *e.BetID == betID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memTransactionRepo) SumByUser(ctx context.Context, discordID int64) (int64, error) {
	return r.s.ledgerSum(discordID), nil
}

type memBetRepo struct{ s *memStore }

func (r memBetRepo) NextBetID(ctx context.Context) (string, error) {
	r.s.counter++
	return entities.FormatBetID(r.s.counter), nil
}

func (r memBetRepo) CreateWithOptions(ctx context.Context, bet *entities.Bet, options []*entities.BetOption) error {
	bet.ID = r.s.id()
	bet.CreatedAt = time.Now().UTC()
	r.s.bets[bet.ID] = bet
	for _, opt := range options {
		opt.ID = r.s.id()
		opt.BetID = bet.ID
	}
	r.s.options[bet.ID] = options
	return nil
}

func (r memBetRepo) detail(bet *entities.Bet) *entities.BetDetail {
	copied := *bet
	return &entities.BetDetail{
		Bet:     &copied,
		Options: r.s.options[bet.ID],
		Stakes:  r.s.stakes[bet.ID],
	}
}

func (r memBetRepo) GetDetailByBetID(ctx context.Context, betID string) (*entities.BetDetail, error) {
	for _, bet := range r.s.bets {
		if bet.BetID == betID {
			return r.detail(bet), nil
		}
	}
	return nil, nil
}

func (r memBetRepo) Update(ctx context.Context, bet *entities.Bet) error {
	stored, ok := r.s.bets[bet.ID]
	if ok {
		*stored = *bet
	}
	return nil
}

func (r memBetRepo) ClaimSettle(ctx context.Context, id int64, result string, closedAt time.Time) (bool, error) {
	bet, ok := r.s.bets[id]
	if !ok || bet.State == entities.BetStateSettled {
		return false, nil
	}
	bet.Settle(result, closedAt)
	return true, nil
}

func (r memBetRepo) CreateStake(ctx context.Context, stake *entities.BetStake) error {
	stake.ID = r.s.id()
	r.s.stakes[stake.BetID] = append(r.s.stakes[stake.BetID], stake)
	return nil
}

func (r memBetRepo) IncrementStake(ctx context.Context, stakeID int64, amount int64, lastBetAt time.Time) error {
	for _, stakes := range r.s.stakes {
		for _, stake := range stakes {
			if stake.ID == stakeID {
				stake.Amount += amount
				stake.LastBetAt = lastBetAt
			}
		}
	}
	return nil
}

func (r memBetRepo) CountOpenByCreator(ctx context.Context, creatorDiscordID int64) (int, error) {
	count := 0
	for _, bet := range r.s.bets {
		if bet.CreatorDiscordID == creatorDiscordID && bet.State != entities.BetStateSettled {
			count++
		}
	}
	return count, nil
}

func (r memBetRepo) GetOpenBets(ctx context.Context) ([]*entities.Bet, error) {
	var out []*entities.Bet
	for _, bet := range r.s.bets {
		if bet.State == entities.BetStateOpen {
			copied := *bet
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r memBetRepo) GetExpiredOpenBets(ctx context.Context, now time.Time) ([]*entities.Bet, error) {
	var out []*entities.Bet
	for _, bet := range r.s.bets {
		if bet.State == entities.BetStateOpen && bet.IsTimedOut(now) {
			copied := *bet
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memRevolutionRepo struct{ s *memStore }

func (r memRevolutionRepo) CreateEvent(ctx context.Context, event *entities.RevolutionEvent) error {
	event.ID = r.s.id()
	event.CreatedAt = time.Now().UTC()
	r.s.revs[event.ID] = event
	return nil
}

func (r memRevolutionRepo) detail(event *entities.RevolutionEvent) *entities.RevolutionDetail {
	copied := *event
	return &entities.RevolutionDetail{
		Event:        &copied,
		Participants: r.s.revParts[event.ID],
	}
}

func (r memRevolutionRepo) GetOpenEvent(ctx context.Context) (*entities.RevolutionDetail, error) {
	for _, event := range r.s.revs {
		if event.State == entities.RevolutionStateOpen {
			return r.detail(event), nil
		}
	}
	return nil, nil
}

func (r memRevolutionRepo) GetDetailByID(ctx context.Context, id int64) (*entities.RevolutionDetail, error) {
	event, ok := r.s.revs[id]
	if !ok {
		return nil, nil
	}
	return r.detail(event), nil
}

func (r memRevolutionRepo) Update(ctx context.Context, event *entities.RevolutionEvent) error {
	stored, ok := r.s.revs[event.ID]
	if ok {
		*stored = *event
	}
	return nil
}

func (r memRevolutionRepo) ClaimResolve(ctx context.Context, id int64, success bool, resolvedAt time.Time) (bool, error) {
	event, ok := r.s.revs[id]
	if !ok || event.State != entities.RevolutionStateOpen {
		return false, nil
	}
	event.Resolve(success, resolvedAt)
	return true, nil
}

func (r memRevolutionRepo) SaveParticipant(ctx context.Context, participant *entities.RevolutionParticipant) error {
	for _, p := range r.s.revParts[participant.EventID] {
		if p.DiscordID == participant.DiscordID {
			p.Side = participant.Side
			return nil
		}
	}
	participant.ID = r.s.id()
	participant.CreatedAt = time.Now().UTC()
	r.s.revParts[participant.EventID] = append(r.s.revParts[participant.EventID], participant)
	return nil
}

type memSettingsRepo struct{ s *memStore }

func (r memSettingsRepo) GetOrCreate(ctx context.Context) (*entities.GuildSettings, error) {
	copied := *r.s.settings
	return &copied, nil
}

func (r memSettingsRepo) Update(ctx context.Context, settings *entities.GuildSettings) error {
	*r.s.settings = *settings
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(event events.Event) error { return nil }

// newScenarioServices wires account and betting services over one memStore
func newScenarioServices(s *memStore) (interfaces.AccountService, interfaces.BettingService) {
	accounts := NewAccountService(memAccountRepo{s}, memTransactionRepo{s}, noopPublisher{})
	betting := NewBettingService(accounts, memBetRepo{s}, memSettingsRepo{s}, noopPublisher{}, nil)
	return accounts, betting
}
