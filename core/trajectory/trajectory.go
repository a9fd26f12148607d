// Package trajectory projects goal completion from historical snapshots:
// velocity, projected date, confidence and probability of hit.
package trajectory

import (
	"fmt"
	"time"

	"github.com/pulselab/portpulse/schema"
)

const (
	hoursPerDay = 24

	// insufficientHistoryConfidence is reported when fewer than two
	// history points exist and no rate can be measured.
	insufficientHistoryConfidence = 0.2

	baseConfidence        = 0.5
	historyConfidenceMax  = 0.2
	coverageConfidenceMax = 0.2
	// consistencyConfidenceMax is reserved for a velocity-variance term.
	// TODO: compute the variance term from per-interval rates; it is
	// currently a placeholder of zero.
	consistencyConfidenceMax = 0.1
)

// Project computes the derived outlook for a goal at the reference time.
// Missing history never fails: it degrades to an insufficient-history
// trajectory with nil OnTrack and low confidence.
func Project(goal *schema.Goal, now time.Time) schema.GoalTrajectory {
	return ProjectWithWeights(goal, now, schema.GetDefaultProbabilityWeights())
}

// ProjectWithWeights is Project with explicit probability blend weights,
// for deployments that tune them via the config file.
func ProjectWithWeights(goal *schema.Goal, now time.Time, w schema.ProbabilityWeights) schema.GoalTrajectory {
	daysLeft := goal.Due.Sub(now).Hours() / hoursPerDay
	gap := goal.Target - goal.Current

	traj := schema.GoalTrajectory{
		GoalID:           goal.ID,
		Progress:         progress(goal),
		DaysLeft:         daysLeft,
		RequiredVelocity: requiredVelocity(gap, daysLeft),
	}

	// Already achieved: certain hit, projected as of now. Holds for
	// degenerate zero or negative targets too.
	if goal.Current >= goal.Target {
		onTrack := true
		projected := now
		traj.OnTrack = &onTrack
		traj.ProjectedDate = &projected
		traj.Confidence = 1
		traj.ProbabilityOfHit = 1
		traj.Velocity = velocity(goal.History)
		traj.Message = "target already reached"
		return traj
	}

	// Past due and not achieved: certain miss.
	if daysLeft < 0 {
		onTrack := false
		traj.OnTrack = &onTrack
		traj.Confidence = 1
		traj.ProbabilityOfHit = 0
		traj.Velocity = velocity(goal.History)
		traj.Message = "past due without reaching target"
		return traj
	}

	if len(goal.History) < 2 {
		traj.Confidence = insufficientHistoryConfidence
		traj.Message = fmt.Sprintf("insufficient history; need %.2f %s/day to hit target by due date",
			traj.RequiredVelocity, unitOrValue(goal.Unit))
		traj.ProbabilityOfHit = probabilityOfHit(&traj, w)
		return traj
	}

	v := velocity(goal.History)
	traj.Velocity = v
	traj.Confidence = confidence(goal, daysLeft, w)

	if v <= 0 && gap > 0 {
		// Stalled or regressing with distance still to cover.
		onTrack := false
		traj.OnTrack = &onTrack
		traj.Message = "stalled or regressing; no projected completion"
		traj.ProbabilityOfHit = probabilityOfHit(&traj, w)
		return traj
	}

	daysToCompletion := gap / v
	projected := now.Add(time.Duration(daysToCompletion * float64(hoursPerDay) * float64(time.Hour)))
	traj.ProjectedDate = &projected
	onTrack := daysToCompletion <= daysLeft
	traj.OnTrack = &onTrack
	if onTrack {
		traj.Message = fmt.Sprintf("on pace to complete in %.0f days", daysToCompletion)
	} else {
		traj.Message = fmt.Sprintf("projected %.0f days late at current pace", daysToCompletion-daysLeft)
	}

	traj.ProbabilityOfHit = probabilityOfHit(&traj, w)
	return traj
}

// velocity is the linear rate between the earliest and latest history
// points in value units per day. Fewer than two points means no rate.
func velocity(history []schema.GoalPoint) float64 {
	if len(history) < 2 {
		return 0
	}
	first := history[0]
	last := history[len(history)-1]
	spanDays := last.Timestamp.Sub(first.Timestamp).Hours() / hoursPerDay
	if spanDays <= 0 {
		return 0
	}
	return (last.Value - first.Value) / spanDays
}

func progress(goal *schema.Goal) float64 {
	if goal.Target <= 0 {
		return 0
	}
	return clamp01(goal.Current / goal.Target)
}

func requiredVelocity(gap, daysLeft float64) float64 {
	if gap <= 0 {
		return 0
	}
	if daysLeft <= 0 {
		return gap // due today or overdue: the whole gap, immediately
	}
	return gap / daysLeft
}

// confidence blends history depth, temporal coverage and velocity
// consistency into [0,1] on top of a 0.5 base.
func confidence(goal *schema.Goal, daysLeft float64, w schema.ProbabilityWeights) float64 {
	c := baseConfidence

	// More history points, more confidence, saturating at the cap.
	points := float64(len(goal.History))
	c += historyConfidenceMax * min(points/float64(w.HistorySat), 1)

	// Historical span relative to the remaining horizon.
	if len(goal.History) >= 2 && daysLeft > 0 {
		span := goal.History[len(goal.History)-1].Timestamp.Sub(goal.History[0].Timestamp).Hours() / hoursPerDay
		c += coverageConfidenceMax * min(span/daysLeft, 1)
	}

	// Velocity consistency placeholder.
	c += consistencyConfidenceMax * 0

	return clamp01(c)
}

func unitOrValue(unit string) string {
	if unit == "" {
		return "units"
	}
	return unit
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
