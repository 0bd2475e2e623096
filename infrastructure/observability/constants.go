package observability

// Metric name prefix
const (
	MetricPrefix = "eddies_bot"
)

// Metric names
const (
	// Economy metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"
	EddiesInFlightTotal      = MetricPrefix + ".balance.eddies_moved_total"

	// Bet metrics
	BetsActive        = MetricPrefix + ".bets.active"
	StakesPlacedTotal = MetricPrefix + ".bets.stakes_placed_total"
	BetsSettledTotal  = MetricPrefix + ".bets.settled_total"

	// Revolution metrics
	RevolutionsResolvedTotal = MetricPrefix + ".revolutions.resolved_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelOutcome   = "outcome"

	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Revolution outcome label values
const (
	OutcomeOverthrown = "overthrown"
	OutcomeSurvived   = "survived"
)
