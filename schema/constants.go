package schema

// Custom string types for type safety.
type (
	// MetricKey identifies a monitored company metric.
	MetricKey string

	// IssueType classifies an open issue.
	IssueType string

	// ConstraintType classifies a hard deadline.
	ConstraintType string

	// GoalType classifies a goal.
	GoalType string

	// GoalStatus represents the lifecycle state of a goal.
	GoalStatus string

	// Provenance records what produced a goal.
	Provenance string

	// SourceType identifies what produced an action candidate.
	SourceType string

	// EventType classifies an outcome-ledger entry.
	EventType string

	// EventOutcome is the recorded result of an action.
	EventOutcome string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// Severity grades a finding from low to critical. The numeric order is
// load-bearing: sorting and threshold tables rely on it.
type Severity int

// All severities supported.
const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the canonical lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Primary metrics monitored per company.
const (
	MetricRunway      MetricKey = "runway"
	MetricBurn        MetricKey = "burn"
	MetricHeadcount   MetricKey = "headcount"
	MetricRevenue     MetricKey = "revenue"
	MetricRaiseTarget MetricKey = "raise_target"
)

// Secondary operating metrics.
const (
	MetricNRR          MetricKey = "nrr"
	MetricGrossMargin  MetricKey = "gross_margin"
	MetricCAC          MetricKey = "cac"
	MetricCACPayback   MetricKey = "cac_payback"
	MetricLogoChurn    MetricKey = "logo_churn"
	MetricGrowthRate   MetricKey = "growth_rate"
	MetricMagicNumber  MetricKey = "magic_number"
	MetricBurnMultiple MetricKey = "burn_multiple"
	MetricARPU         MetricKey = "arpu"
	MetricSalesCycle   MetricKey = "sales_cycle_days"
	MetricDAUMAU       MetricKey = "dau_mau"
	MetricNPS          MetricKey = "nps"
)

// SecondaryMetrics lists the secondary operating metrics in detection order.
var SecondaryMetrics = []MetricKey{
	MetricNRR,
	MetricGrossMargin,
	MetricCAC,
	MetricCACPayback,
	MetricLogoChurn,
	MetricGrowthRate,
	MetricMagicNumber,
	MetricBurnMultiple,
	MetricARPU,
	MetricSalesCycle,
	MetricDAUMAU,
	MetricNPS,
}

// All issue types supported.
const (
	RunwayRiskIssue  IssueType = "runway_risk"
	BurnOverrunIssue IssueType = "burn_overrun"
	ChurnSpikeIssue  IssueType = "churn_spike"
	PipelineGapIssue IssueType = "pipeline_gap"
	HiringGapIssue   IssueType = "hiring_gap"
	MarginSlipIssue  IssueType = "margin_slip"
	DataQualityIssue IssueType = "data_quality"
)

// All constraint types supported.
const (
	BoardMeetingConstraint    ConstraintType = "board_meeting"
	FundraiseCloseConstraint  ConstraintType = "fundraise_close"
	TermSheetExpiryConstraint ConstraintType = "term_sheet_expiry"
	DebtMaturityConstraint    ConstraintType = "debt_maturity"
)

// All goal types supported.
const (
	RunwayGoal     GoalType = "runway_extension"
	RevenueGoal    GoalType = "revenue_growth"
	HiringGoal     GoalType = "hiring"
	FundraiseGoal  GoalType = "fundraise"
	RetentionGoal  GoalType = "retention"
	EfficiencyGoal GoalType = "efficiency"
	MarginGoal     GoalType = "margin_improvement"
	CustomGoal     GoalType = "custom"
)

// All goal statuses supported.
const (
	SuggestedGoalStatus GoalStatus = "suggested"
	ActiveGoalStatus    GoalStatus = "active"
	BlockedGoalStatus   GoalStatus = "blocked"
	CompletedGoalStatus GoalStatus = "completed"
	AbandonedGoalStatus GoalStatus = "abandoned"
)

// All goal provenances supported.
const (
	TemplateProvenance  Provenance = "template"
	AnomalyProvenance   Provenance = "anomaly"
	SuggestedProvenance Provenance = "suggested"
	ManualProvenance    Provenance = "manual"
)

// All action source types supported.
const (
	IssueSource    SourceType = "ISSUE"
	PreIssueSource SourceType = "PREISSUE"
	GoalSource     SourceType = "GOAL"
	MeetingSource  SourceType = "MEETING"
)

// All event types supported.
const (
	ActionCreatedEvent   EventType = "action_created"
	ActionStartedEvent   EventType = "action_started"
	ActionCompletedEvent EventType = "action_completed"
	ActionDismissedEvent EventType = "action_dismissed"
	OutcomeRecordedEvent EventType = "outcome_recorded"
)

// All event outcomes supported.
const (
	SuccessOutcome EventOutcome = "success"
	FailureOutcome EventOutcome = "failure"
	PartialOutcome EventOutcome = "partial"
	UnknownOutcome EventOutcome = "unknown"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run-store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidRunBackends lists all valid run-store backends.
var ValidRunBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidGoalStatuses lists all valid goal statuses.
var ValidGoalStatuses = map[GoalStatus]struct{}{
	SuggestedGoalStatus: {},
	ActiveGoalStatus:    {},
	BlockedGoalStatus:   {},
	CompletedGoalStatus: {},
	AbandonedGoalStatus: {},
}
