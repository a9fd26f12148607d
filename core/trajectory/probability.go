package trajectory

import (
	"github.com/pulselab/portpulse/schema"
)

// probabilityOfHit estimates the chance the goal reaches its target by
// the due date, clamped to [0,1]. Achieved and past-due goals are
// decided before this is reached, so the blend only handles goals still
// in flight.
func probabilityOfHit(traj *schema.GoalTrajectory, w schema.ProbabilityWeights) float64 {
	p := w.Progress * traj.Progress

	switch {
	case traj.OnTrack == nil:
		// Unknown pace: split the difference on the on-track term.
		p += w.OnTrack / 2
	case *traj.OnTrack:
		// On pace, credit scaled by how much the projection is trusted.
		p += w.OnTrack * traj.Confidence
	default:
		// Behind pace, credit scaled by how close the current velocity
		// comes to the required one.
		p += w.Behind * velocityRatio(traj)
	}

	p += timeBonus(traj.DaysLeft)
	return clamp01(p)
}

// velocityRatio is current velocity over required velocity, in [0,1].
func velocityRatio(traj *schema.GoalTrajectory) float64 {
	if traj.RequiredVelocity <= 0 {
		return 1
	}
	if traj.Velocity <= 0 {
		return 0
	}
	return clamp01(traj.Velocity / traj.RequiredVelocity)
}

// timeBonus rewards remaining runway to the due date: more days left,
// more room to recover.
func timeBonus(daysLeft float64) float64 {
	switch {
	case daysLeft > 60:
		return 0.2
	case daysLeft > 30:
		return 0.15
	case daysLeft > 14:
		return 0.1
	case daysLeft > 7:
		return 0.05
	default:
		return 0
	}
}
