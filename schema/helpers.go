package schema

import (
	"sort"
	"strings"
)

// EnrichedAction adds presentation data to a ranked Action.
type EnrichedAction struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	Action
}

// GetPlainLabel returns a plain text label for a rank score. Rank scores
// are signed; the bands mirror how the urgency is presented in tables.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.75:
		return "Critical"
	case score >= 0.45:
		return "High"
	case score >= 0.15:
		return "Moderate"
	default:
		return "Low"
	}
}

// EnrichActions adds rank and label to a ranked action list. The input
// order is preserved: enrichment must never re-sort.
func EnrichActions(actions []Action) []EnrichedAction {
	output := make([]EnrichedAction, len(actions))
	for i, a := range actions {
		output[i] = EnrichedAction{
			Rank:   i + 1,
			Label:  GetPlainLabel(a.RankScore),
			Action: a,
		}
	}
	return output
}

// FormatSources renders action sources as "ISSUE:iss-1, GOAL:g-2".
func FormatSources(sources []ActionSource) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = string(s.Type) + ":" + s.RefID
	}
	return strings.Join(parts, ", ")
}

// SortAnomalies orders findings by severity descending, then by metric
// name for a stable tie-break.
func SortAnomalies(anomalies []Anomaly) {
	sort.SliceStable(anomalies, func(i, j int) bool {
		if anomalies[i].Severity != anomalies[j].Severity {
			return anomalies[i].Severity > anomalies[j].Severity
		}
		return anomalies[i].Metric < anomalies[j].Metric
	})
}

// Summarize builds the per-company histogram from a finding list.
func Summarize(anomalies []Anomaly) DetectionSummary {
	summary := DetectionSummary{
		Total:      len(anomalies),
		BySeverity: make(map[string]int),
		ByMetric:   make(map[MetricKey]int),
	}
	for _, a := range anomalies {
		summary.BySeverity[a.Severity.String()]++
		summary.ByMetric[a.Metric]++
	}
	return summary
}
