package detect

import (
	"fmt"

	"github.com/pulselab/portpulse/schema"
)

// stageMismatchMin is the number of simultaneous medium-or-worse bound
// breaks that flags a company as possibly mis-staged.
const stageMismatchMin = 2

// Detect runs every metric detector for a company against its stage
// parameters and returns the findings sorted by severity descending,
// plus a summary histogram. Pure function: no side effects, no I/O.
func Detect(company *schema.Company, params schema.StageParams, tol schema.ToleranceConfig) ([]schema.Anomaly, schema.DetectionSummary) {
	var anomalies []schema.Anomaly

	add := func(a *schema.Anomaly) {
		if a != nil {
			anomalies = append(anomalies, *a)
		}
	}

	add(detectRunway(company, params, tol))
	add(detectMetric(company, schema.MetricBurn, company.Metrics.Burn, params, tol))
	add(detectMetric(company, schema.MetricHeadcount, float64(company.Metrics.Headcount), params, tol))
	add(detectMetric(company, schema.MetricRevenue, company.Metrics.MonthlyRevenue(), params, tol))
	if company.Metrics.RaiseTarget > 0 {
		add(detectMetric(company, schema.MetricRaiseTarget, company.Metrics.RaiseTarget, params, tol))
	}
	for _, key := range schema.SecondaryMetrics {
		value, reported := company.Metrics.Operating[key]
		if !reported {
			// Missing data is not an anomaly; it only lowers coverage.
			continue
		}
		add(detectMetric(company, key, value, params, tol))
	}

	add(detectStageMismatch(company, anomalies))

	schema.SortAnomalies(anomalies)
	return anomalies, schema.Summarize(anomalies)
}

// detectRunway derives runway from cash and burn, then classifies it.
// An absolute critical floor overrides the stage-relative grading: a
// company under the floor is critical no matter what its stage expects.
func detectRunway(company *schema.Company, params schema.StageParams, tol schema.ToleranceConfig) *schema.Anomaly {
	bounds, ok := params.Bounds[schema.MetricRunway]
	if !ok {
		return nil
	}
	runway := company.Metrics.Runway()

	if floor, hasFloor := schema.CriticalFloors[schema.MetricRunway]; hasFloor && runway < floor {
		ratio := ratioBelow(runway, bounds.Min)
		return &schema.Anomaly{
			Type:      schema.AnomalyTypeFor(schema.MetricRunway, schema.DirectionBelow),
			EntityRef: schema.EntityRef{Type: schema.CompanyEntity, ID: company.ID},
			Severity:  schema.SeverityCritical,
			Metric:    schema.MetricRunway,
			Evidence: schema.Evidence{
				Actual:      runway,
				Min:         bounds.Min,
				Max:         bounds.Max,
				Ratio:       ratio,
				Feathered:   false,
				Direction:   schema.DirectionBelow,
				Explanation: fmt.Sprintf("runway %.1f months is under the absolute %.0f-month floor", runway, floor),
			},
		}
	}

	return buildAnomaly(company, schema.MetricRunway, runway, bounds, tol)
}

// detectMetric classifies a single reported metric against its stage
// bounds, returning nil when the value is comfortably within range or
// the stage does not monitor the metric.
func detectMetric(company *schema.Company, metric schema.MetricKey, value float64, params schema.StageParams, tol schema.ToleranceConfig) *schema.Anomaly {
	bounds, ok := params.Bounds[metric]
	if !ok {
		return nil
	}
	return buildAnomaly(company, metric, value, bounds, tol)
}

func buildAnomaly(company *schema.Company, metric schema.MetricKey, value float64, bounds schema.Bounds, tol schema.ToleranceConfig) *schema.Anomaly {
	dev := Classify(value, bounds, tol)
	if dev.Direction == schema.DirectionWithin {
		return nil
	}

	evidence := schema.Evidence{
		Actual:          value,
		Min:             bounds.Min,
		Max:             bounds.Max,
		Ratio:           dev.Ratio,
		Feathered:       dev.Feathered,
		InToleranceZone: dev.InToleranceZone,
		Direction:       dev.Direction,
		Explanation:     explain(metric, value, bounds, dev),
	}
	if dev.Feathered {
		evidence.FeatheredRatio = dev.FeatheredRatio
	}

	return &schema.Anomaly{
		Type:      schema.AnomalyTypeFor(metric, dev.Direction),
		EntityRef: schema.EntityRef{Type: schema.CompanyEntity, ID: company.ID},
		Severity:  SeverityFor(dev),
		Metric:    metric,
		Evidence:  evidence,
	}
}

// detectStageMismatch appends a meta-anomaly when several metrics break
// their hard bounds at medium severity or worse. One metric out of range
// is a problem; several at once usually means the stage label is wrong.
func detectStageMismatch(company *schema.Company, anomalies []schema.Anomaly) *schema.Anomaly {
	breached := make(map[schema.MetricKey]struct{})
	for _, a := range anomalies {
		if a.Severity < schema.SeverityMedium {
			continue
		}
		if a.Evidence.Direction != schema.DirectionBelow && a.Evidence.Direction != schema.DirectionAbove {
			continue
		}
		breached[a.Metric] = struct{}{}
	}
	if len(breached) < stageMismatchMin {
		return nil
	}

	return &schema.Anomaly{
		Type:      schema.StageMismatchAnomaly,
		EntityRef: schema.EntityRef{Type: schema.CompanyEntity, ID: company.ID},
		Severity:  schema.SeverityMedium,
		Metric:    "stage",
		Evidence: schema.Evidence{
			Direction:   schema.DirectionWithin,
			Explanation: fmt.Sprintf("%d metrics breach %s bounds at medium+ severity; the company may be mis-staged", len(breached), company.Stage),
		},
	}
}
