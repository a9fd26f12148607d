// Package detect finds stage-relative anomalies in company metrics using
// tolerance-feathered bounds.
package detect

import (
	"fmt"

	"github.com/pulselab/portpulse/schema"
)

// Deviation is the raw classification of one value against one bound pair.
type Deviation struct {
	Direction       schema.Direction
	Ratio           float64 // value/min below, value/max above, 1.0 within
	FeatheredRatio  float64 // effective ratio after tolerance interpolation
	Feathered       bool    // true when the feathered ratio was applied
	InToleranceZone bool
}

// Severity threshold tables on the effective ratio. Below-min ratios
// shrink toward zero as the shortfall grows; above-max ratios grow past
// one as the overrun grows.
var (
	belowThresholds = []struct {
		limit    float64
		severity schema.Severity
	}{
		{0.25, schema.SeverityCritical},
		{0.50, schema.SeverityHigh},
		{0.75, schema.SeverityMedium},
	}

	aboveThresholds = []struct {
		limit    float64
		severity schema.Severity
	}{
		{3.0, schema.SeverityCritical},
		{2.0, schema.SeverityHigh},
		{1.5, schema.SeverityMedium},
	}
)

// Classify places value against [min, max] with feathered edges.
//
// The inner tolerance carves a warning buffer just inside each hard
// bound; the outer tolerance extends a soft band outside it. Values in
// the outer band get a severity-capped, linearly interpolated ratio:
// full ratio at the soft edge, no deviation at the hard bound. When the
// config is not symmetric, only the low side is feathered.
func Classify(value float64, bounds schema.Bounds, tol schema.ToleranceConfig) Deviation {
	innerBuffer := (bounds.Max - bounds.Min) * tol.Inner
	outerLow := bounds.Min * tol.Outer
	outerHigh := bounds.Max * tol.Outer
	if !tol.Symmetric {
		outerHigh = 0
	}
	softMin := bounds.Min - outerLow
	softMax := bounds.Max + outerHigh

	switch {
	case value >= bounds.Min+innerBuffer && value <= bounds.Max-innerBuffer:
		return Deviation{Direction: schema.DirectionWithin, Ratio: 1, FeatheredRatio: 1}

	case value >= bounds.Min && value <= bounds.Max:
		// Inside the hard bounds but within the inner buffer of an edge:
		// an early signal, fixed at low severity.
		return Deviation{
			Direction:       schema.DirectionWarning,
			Ratio:           1,
			FeatheredRatio:  1,
			InToleranceZone: true,
		}

	case value < bounds.Min:
		ratio := ratioBelow(value, bounds.Min)
		if value >= softMin && outerLow > 0 {
			t := (bounds.Min - value) / outerLow
			return Deviation{
				Direction:       schema.DirectionBelow,
				Ratio:           ratio,
				FeatheredRatio:  lerp(1, ratio, t),
				Feathered:       true,
				InToleranceZone: true,
			}
		}
		return Deviation{Direction: schema.DirectionBelow, Ratio: ratio, FeatheredRatio: ratio}

	default: // value > bounds.Max
		ratio := ratioAbove(value, bounds.Max)
		if value <= softMax && outerHigh > 0 {
			t := (value - bounds.Max) / outerHigh
			return Deviation{
				Direction:       schema.DirectionAbove,
				Ratio:           ratio,
				FeatheredRatio:  lerp(1, ratio, t),
				Feathered:       true,
				InToleranceZone: true,
			}
		}
		return Deviation{Direction: schema.DirectionAbove, Ratio: ratio, FeatheredRatio: ratio}
	}
}

// SeverityFor maps a deviation to its severity. Warning-zone findings
// are fixed at low; tolerance-zone findings are capped at medium no
// matter how harsh their raw ratio looks.
func SeverityFor(dev Deviation) schema.Severity {
	if dev.Direction == schema.DirectionWithin {
		return schema.SeverityLow
	}
	if dev.Direction == schema.DirectionWarning {
		return schema.SeverityLow
	}

	severity := schema.SeverityLow
	switch dev.Direction {
	case schema.DirectionBelow:
		for _, th := range belowThresholds {
			if dev.FeatheredRatio < th.limit {
				severity = th.severity
				break
			}
		}
	case schema.DirectionAbove:
		for i := range aboveThresholds {
			if dev.FeatheredRatio >= aboveThresholds[i].limit {
				severity = aboveThresholds[i].severity
				break
			}
		}
	}

	if dev.InToleranceZone && severity > schema.SeverityMedium {
		severity = schema.SeverityMedium
	}
	return severity
}

func ratioBelow(value, min float64) float64 {
	if min <= 0 {
		return 0
	}
	if value < 0 {
		return 0
	}
	return value / min
}

func ratioAbove(value, max float64) float64 {
	if max <= 0 {
		return 3 // unbounded overrun of a degenerate bound
	}
	return value / max
}

func lerp(from, to, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return from + (to-from)*t
}

func explain(metric schema.MetricKey, value float64, bounds schema.Bounds, dev Deviation) string {
	switch dev.Direction {
	case schema.DirectionWarning:
		return fmt.Sprintf("%s %.2f is inside stage bounds [%.2f, %.2f] but near an edge", metric, value, bounds.Min, bounds.Max)
	case schema.DirectionBelow:
		if dev.InToleranceZone {
			return fmt.Sprintf("%s %.2f undershoots stage minimum %.2f inside the tolerance band", metric, value, bounds.Min)
		}
		return fmt.Sprintf("%s %.2f is below stage minimum %.2f", metric, value, bounds.Min)
	case schema.DirectionAbove:
		if dev.InToleranceZone {
			return fmt.Sprintf("%s %.2f overshoots stage maximum %.2f inside the tolerance band", metric, value, bounds.Max)
		}
		return fmt.Sprintf("%s %.2f is above stage maximum %.2f", metric, value, bounds.Max)
	default:
		return fmt.Sprintf("%s %.2f is within stage bounds", metric, value)
	}
}
