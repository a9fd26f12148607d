package schema

// Layer names the derivation layers in execution order. Layering is
// directional: a layer may only depend on itself and lower layers.
type Layer string

// All layers supported, lowest first.
const (
	RawLayer     Layer = "raw"
	DeriveLayer  Layer = "derive"
	PredictLayer Layer = "predict"
	DecideLayer  Layer = "decide"
	RuntimeLayer Layer = "runtime"
)

// LayerRank orders the layers. Higher rank may read lower rank, never
// the reverse.
var LayerRank = map[Layer]int{
	RawLayer:     0,
	DeriveLayer:  1,
	PredictLayer: 2,
	DecideLayer:  3,
	RuntimeLayer: 4,
}

// PackageLayers assigns each module package to its layer. The Gate's
// import-direction check walks the source tree against this table, so
// new packages must be registered here.
var PackageLayers = map[string]Layer{
	"schema":           RawLayer,
	"internal/dataset": RawLayer,
	"core/detect":      DeriveLayer,
	"core/trajectory":  PredictLayer,
	"core/goalset":     DecideLayer,
	"core/pressure":    DecideLayer,
	"core/algo":        RuntimeLayer,
	"core":             RuntimeLayer,
	"core/gate":        RuntimeLayer,
}

// ForbiddenRawFields are field names that must only ever be computed,
// never persisted in raw storage. The Gate scans raw records for them
// recursively, case-insensitively.
var ForbiddenRawFields = []string{
	"runway",
	"runwayMonths",
	"rankScore",
	"score",
	"priority",
	"severityScore",
	"probabilityOfHit",
	"onTrack",
	"projectedDate",
	"velocity",
	"requiredVelocity",
	"damage",
	"pressure",
	"confidence",
}

// MutuallyExclusiveFields lists metric pairs that may not both appear on
// the same raw record. MRR and ARR describe the same fact at different
// granularities; storing both invites silent divergence.
var MutuallyExclusiveFields = [][2]string{
	{"mrr", "arr"},
}

// ValidEventTypes lists all valid ledger event types.
var ValidEventTypes = map[EventType]struct{}{
	ActionCreatedEvent:   {},
	ActionStartedEvent:   {},
	ActionCompletedEvent: {},
	ActionDismissedEvent: {},
	OutcomeRecordedEvent: {},
}

// ValidEventOutcomes lists all valid ledger outcomes.
var ValidEventOutcomes = map[EventOutcome]struct{}{
	SuccessOutcome: {},
	FailureOutcome: {},
	PartialOutcome: {},
	UnknownOutcome: {},
}

// RequiredEventFields must be present and non-empty on every ledger entry.
var RequiredEventFields = []string{"id", "actionId", "type", "timestamp"}

// ForbiddenEventFields are derived score fields that must never ride
// along in an event payload.
var ForbiddenEventFields = []string{"rankScore", "score", "priority"}
