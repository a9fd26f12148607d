package schema

import "strings"

// AnomalyType identifies a detection finding, e.g. RUNWAY_BELOW_MIN.
type AnomalyType string

// StageMismatchAnomaly is the meta-anomaly appended when several metrics
// break their stage bounds at once, suggesting the company is mis-staged.
const StageMismatchAnomaly AnomalyType = "STAGE_MISMATCH"

// Direction tells which side of the bounds a value landed on.
type Direction string

// All deviation directions supported.
const (
	DirectionWithin  Direction = "within"
	DirectionWarning Direction = "warning"
	DirectionBelow   Direction = "below"
	DirectionAbove   Direction = "above"
)

// AnomalyTypeFor builds the canonical anomaly type name for a metric and
// direction, e.g. (runway, below) -> RUNWAY_BELOW_MIN.
func AnomalyTypeFor(metric MetricKey, direction Direction) AnomalyType {
	base := strings.ToUpper(string(metric))
	switch direction {
	case DirectionAbove:
		return AnomalyType(base + "_ABOVE_MAX")
	case DirectionWarning:
		return AnomalyType(base + "_NEAR_BOUND")
	default:
		return AnomalyType(base + "_BELOW_MIN")
	}
}

// Evidence carries the numeric context behind an anomaly so downstream
// consumers can explain it without re-running detection.
type Evidence struct {
	Actual          float64   `json:"actual"`
	Min             float64   `json:"min"`
	Max             float64   `json:"max"`
	Ratio           float64   `json:"ratio"`
	Feathered       bool      `json:"feathered"`
	FeatheredRatio  float64   `json:"featheredRatio,omitempty"`
	InToleranceZone bool      `json:"inToleranceZone"`
	Direction       Direction `json:"direction"`
	Explanation     string    `json:"explanation"`
}

// Anomaly is one detection finding. Identity is Type plus the entity id;
// anomalies are recomputed fresh each run and never stored.
type Anomaly struct {
	Type      AnomalyType `json:"type"`
	EntityRef EntityRef   `json:"entityRef"`
	Severity  Severity    `json:"severity"`
	Metric    MetricKey   `json:"metric"`
	Evidence  Evidence    `json:"evidence"`
}

// DetectionSummary is the per-company histogram of findings.
type DetectionSummary struct {
	Total      int               `json:"total"`
	BySeverity map[string]int    `json:"bySeverity"`
	ByMetric   map[MetricKey]int `json:"byMetric"`
}
