package schema

// ProbabilityWeights are the blend weights behind probability-of-hit.
// Empirically chosen constants with no stated derivation, so they live
// here as configuration rather than hardcoded law; the config file can
// override them per deployment.
type ProbabilityWeights struct {
	Progress   float64 `mapstructure:"progress" json:"progress"`      // weight of progress-so-far
	OnTrack    float64 `mapstructure:"on_track" json:"onTrack"`       // trajectory weight when on track, scaled by confidence
	Behind     float64 `mapstructure:"behind" json:"behind"`          // trajectory weight when behind, scaled by velocity ratio
	HistorySat int     `mapstructure:"history_sat" json:"historySat"` // history points at which the confidence bonus saturates
}

// GetDefaultProbabilityWeights returns the stock probability blend.
func GetDefaultProbabilityWeights() ProbabilityWeights {
	return ProbabilityWeights{
		Progress:   0.3,
		OnTrack:    0.4,
		Behind:     0.25,
		HistorySat: 10,
	}
}

// PressureParams shape the constraint urgency curve. Same status as
// ProbabilityWeights: configuration, not law.
type PressureParams struct {
	Peak         float64 `mapstructure:"peak" json:"peak"`                  // urgency at zero days out
	DecayDays    float64 `mapstructure:"decay_days" json:"decayDays"`       // e-folding of the urgency ramp
	HorizonDays  float64 `mapstructure:"horizon_days" json:"horizonDays"`   // beyond this, urgency is zero
	ResidualDays float64 `mapstructure:"residual_days" json:"residualDays"` // linear tail after the date passes
	Ambient      float64 `mapstructure:"ambient" json:"ambient"`            // relevance floor for unrelated actions
	MaxPressure  float64 `mapstructure:"max_pressure" json:"maxPressure"`   // cap on stacked pressure
}

// GetDefaultPressureParams returns the stock pressure curve.
func GetDefaultPressureParams() PressureParams {
	return PressureParams{
		Peak:         1.0,
		DecayDays:    14,
		HorizonDays:  90,
		ResidualDays: 7,
		Ambient:      0.3,
		MaxPressure:  2.0,
	}
}
