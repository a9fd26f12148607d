package schema

import (
	"fmt"
	"strings"
)

// Stage is a funding-maturity classification. The numeric order matters:
// stage-mismatch detection and template selection walk it in order.
type Stage int

// All stages supported, in maturity order.
const (
	PreSeed Stage = iota
	Seed
	SeriesA
	SeriesB
	SeriesC
	SeriesD
)

// AllStages lists every stage in maturity order.
var AllStages = []Stage{PreSeed, Seed, SeriesA, SeriesB, SeriesC, SeriesD}

// String returns the canonical stage name.
func (s Stage) String() string {
	switch s {
	case PreSeed:
		return "pre-seed"
	case Seed:
		return "seed"
	case SeriesA:
		return "series-a"
	case SeriesB:
		return "series-b"
	case SeriesC:
		return "series-c"
	case SeriesD:
		return "series-d"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ParseStage converts a stage name to a Stage. Accepts "series-a",
// "series_a" and "seriesa" spellings.
func ParseStage(name string) (Stage, error) {
	normalized := strings.ToLower(strings.NewReplacer("_", "-", " ", "-").Replace(strings.TrimSpace(name)))
	for _, s := range AllStages {
		if normalized == s.String() || normalized == strings.ReplaceAll(s.String(), "-", "") {
			return s, nil
		}
	}
	return PreSeed, fmt.Errorf("unknown stage %q", name)
}

// MarshalJSON encodes the stage as its canonical name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a stage from its canonical name.
func (s *Stage) UnmarshalJSON(data []byte) error {
	parsed, err := ParseStage(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Bounds is the expected [Min, Max] range for one metric at one stage.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// StageParams holds the expected metric ranges for a single stage.
// Keys absent from Bounds are not monitored at that stage.
type StageParams struct {
	Stage  Stage                `json:"stage"`
	Bounds map[MetricKey]Bounds `json:"bounds"`
}

// ToleranceConfig controls the feathering of stage bounds. Inner is the
// fraction of the range treated as an early-warning buffer inside the
// bounds; Outer is the fraction of each bound allowed as a soft overrun
// outside them.
type ToleranceConfig struct {
	Inner     float64 `mapstructure:"inner" json:"inner"`
	Outer     float64 `mapstructure:"outer" json:"outer"`
	Symmetric bool    `mapstructure:"symmetric" json:"symmetric"`
}

// DefaultToleranceConfig returns the stock feathering configuration.
func DefaultToleranceConfig() ToleranceConfig {
	return ToleranceConfig{Inner: 0.15, Outer: 0.25, Symmetric: true}
}

// CriticalFloors are absolute per-metric floors that override stage-relative
// severity unconditionally. Runway below 3 months is always critical, no
// matter how generous the stage bounds are.
var CriticalFloors = map[MetricKey]float64{
	MetricRunway: 3,
}

// defaultStageParams is the static stage parameter table. Monetary bounds
// are monthly USD; runway is months; rates are fractions except NPS and
// day counts.
var defaultStageParams = map[Stage]StageParams{
	PreSeed: {Stage: PreSeed, Bounds: map[MetricKey]Bounds{
		MetricRunway:      {Min: 12, Max: 36},
		MetricBurn:        {Min: 5_000, Max: 75_000},
		MetricHeadcount:   {Min: 1, Max: 8},
		MetricRevenue:     {Min: 0, Max: 25_000},
		MetricRaiseTarget: {Min: 250_000, Max: 2_000_000},
		MetricGrossMargin: {Min: 0.30, Max: 0.95},
		MetricGrowthRate:  {Min: 0.00, Max: 0.60},
		MetricLogoChurn:   {Min: 0.00, Max: 0.12},
		MetricNPS:         {Min: -20, Max: 90},
	}},
	Seed: {Stage: Seed, Bounds: map[MetricKey]Bounds{
		MetricRunway:       {Min: 9, Max: 30},
		MetricBurn:         {Min: 25_000, Max: 250_000},
		MetricHeadcount:    {Min: 3, Max: 25},
		MetricRevenue:      {Min: 5_000, Max: 150_000},
		MetricRaiseTarget:  {Min: 1_000_000, Max: 6_000_000},
		MetricNRR:          {Min: 0.85, Max: 1.40},
		MetricGrossMargin:  {Min: 0.40, Max: 0.95},
		MetricCAC:          {Min: 100, Max: 15_000},
		MetricCACPayback:   {Min: 1, Max: 24},
		MetricLogoChurn:    {Min: 0.00, Max: 0.08},
		MetricGrowthRate:   {Min: 0.05, Max: 0.50},
		MetricBurnMultiple: {Min: 0.5, Max: 8},
		MetricARPU:         {Min: 20, Max: 5_000},
		MetricSalesCycle:   {Min: 7, Max: 120},
		MetricDAUMAU:       {Min: 0.05, Max: 0.90},
		MetricNPS:          {Min: -10, Max: 90},
	}},
	SeriesA: {Stage: SeriesA, Bounds: map[MetricKey]Bounds{
		MetricRunway:       {Min: 12, Max: 30},
		MetricBurn:         {Min: 100_000, Max: 1_000_000},
		MetricHeadcount:    {Min: 15, Max: 80},
		MetricRevenue:      {Min: 80_000, Max: 800_000},
		MetricRaiseTarget:  {Min: 5_000_000, Max: 20_000_000},
		MetricNRR:          {Min: 0.95, Max: 1.50},
		MetricGrossMargin:  {Min: 0.50, Max: 0.95},
		MetricCAC:          {Min: 500, Max: 40_000},
		MetricCACPayback:   {Min: 3, Max: 24},
		MetricLogoChurn:    {Min: 0.00, Max: 0.05},
		MetricGrowthRate:   {Min: 0.04, Max: 0.30},
		MetricMagicNumber:  {Min: 0.4, Max: 2.5},
		MetricBurnMultiple: {Min: 0.4, Max: 4},
		MetricARPU:         {Min: 50, Max: 20_000},
		MetricSalesCycle:   {Min: 14, Max: 180},
		MetricDAUMAU:       {Min: 0.10, Max: 0.90},
		MetricNPS:          {Min: 0, Max: 90},
	}},
	SeriesB: {Stage: SeriesB, Bounds: map[MetricKey]Bounds{
		MetricRunway:       {Min: 15, Max: 36},
		MetricBurn:         {Min: 400_000, Max: 3_000_000},
		MetricHeadcount:    {Min: 50, Max: 250},
		MetricRevenue:      {Min: 500_000, Max: 4_000_000},
		MetricRaiseTarget:  {Min: 15_000_000, Max: 60_000_000},
		MetricNRR:          {Min: 1.00, Max: 1.50},
		MetricGrossMargin:  {Min: 0.55, Max: 0.95},
		MetricCAC:          {Min: 1_000, Max: 80_000},
		MetricCACPayback:   {Min: 4, Max: 30},
		MetricLogoChurn:    {Min: 0.00, Max: 0.04},
		MetricGrowthRate:   {Min: 0.03, Max: 0.20},
		MetricMagicNumber:  {Min: 0.5, Max: 2.0},
		MetricBurnMultiple: {Min: 0.3, Max: 3},
		MetricARPU:         {Min: 100, Max: 60_000},
		MetricSalesCycle:   {Min: 21, Max: 270},
		MetricDAUMAU:       {Min: 0.10, Max: 0.90},
		MetricNPS:          {Min: 0, Max: 90},
	}},
	SeriesC: {Stage: SeriesC, Bounds: map[MetricKey]Bounds{
		MetricRunway:       {Min: 18, Max: 42},
		MetricBurn:         {Min: 1_000_000, Max: 8_000_000},
		MetricHeadcount:    {Min: 150, Max: 700},
		MetricRevenue:      {Min: 2_000_000, Max: 15_000_000},
		MetricRaiseTarget:  {Min: 40_000_000, Max: 150_000_000},
		MetricNRR:          {Min: 1.00, Max: 1.45},
		MetricGrossMargin:  {Min: 0.60, Max: 0.95},
		MetricCACPayback:   {Min: 6, Max: 36},
		MetricLogoChurn:    {Min: 0.00, Max: 0.03},
		MetricGrowthRate:   {Min: 0.02, Max: 0.15},
		MetricMagicNumber:  {Min: 0.5, Max: 1.8},
		MetricBurnMultiple: {Min: 0.2, Max: 2.5},
		MetricSalesCycle:   {Min: 30, Max: 365},
		MetricNPS:          {Min: 10, Max: 90},
	}},
	SeriesD: {Stage: SeriesD, Bounds: map[MetricKey]Bounds{
		MetricRunway:       {Min: 18, Max: 48},
		MetricBurn:         {Min: 2_000_000, Max: 15_000_000},
		MetricHeadcount:    {Min: 300, Max: 2_000},
		MetricRevenue:      {Min: 6_000_000, Max: 50_000_000},
		MetricRaiseTarget:  {Min: 75_000_000, Max: 400_000_000},
		MetricNRR:          {Min: 1.00, Max: 1.40},
		MetricGrossMargin:  {Min: 0.60, Max: 0.95},
		MetricCACPayback:   {Min: 6, Max: 36},
		MetricLogoChurn:    {Min: 0.00, Max: 0.03},
		MetricGrowthRate:   {Min: 0.02, Max: 0.12},
		MetricMagicNumber:  {Min: 0.5, Max: 1.5},
		MetricBurnMultiple: {Min: 0.2, Max: 2},
		MetricSalesCycle:   {Min: 30, Max: 365},
		MetricNPS:          {Min: 10, Max: 90},
	}},
}

// StageParamsFor returns the static parameter table entry for a stage.
// The returned value is shared and must be treated as read-only.
func StageParamsFor(stage Stage) StageParams {
	if params, ok := defaultStageParams[stage]; ok {
		return params
	}
	return defaultStageParams[PreSeed]
}
