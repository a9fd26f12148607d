package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pulselab/portpulse/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 2
	DefaultMinGoals    = 5
	DefaultEpsilon     = 1e-9
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = 4

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ToleranceRawInput holds feathering overrides from the YAML config file.
// Pointers distinguish "not set" from an explicit zero.
type ToleranceRawInput struct {
	Inner     *float64 `mapstructure:"inner"`
	Outer     *float64 `mapstructure:"outer"`
	Symmetric *bool    `mapstructure:"symmetric"`
}

// ProbabilityRawInput holds probability blend overrides from the YAML config file.
type ProbabilityRawInput struct {
	Progress   *float64 `mapstructure:"progress"`
	OnTrack    *float64 `mapstructure:"on_track"`
	Behind     *float64 `mapstructure:"behind"`
	HistorySat *int     `mapstructure:"history_sat"`
}

// PressureRawInput holds urgency-curve overrides from the YAML config file.
type PressureRawInput struct {
	Peak         *float64 `mapstructure:"peak"`
	DecayDays    *float64 `mapstructure:"decay_days"`
	HorizonDays  *float64 `mapstructure:"horizon_days"`
	ResidualDays *float64 `mapstructure:"residual_days"`
	Ambient      *float64 `mapstructure:"ambient"`
	MaxPressure  *float64 `mapstructure:"max_pressure"`
}

// ProfileConfig holds profiling configuration.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// Config holds the runtime configuration for a pipeline run.
// This struct remains the "final, validated" config.
type Config struct {
	DatasetPath   string
	ReferenceTime time.Time // "now" for every derivation in the run
	CompanyFilter string    // restrict the run to one company ID
	ResultLimit   int
	Workers       int
	MinGoals      int
	Explain       bool
	Precision     int
	Output        schema.OutputMode
	OutputFile    string
	Width         int // Terminal width override (0 = auto-detect)

	Tolerance   schema.ToleranceConfig
	Probability schema.ProbabilityWeights
	Pressure    schema.PressureParams

	// Epsilon is the comparison tolerance for sort-order and
	// determinism verification.
	Epsilon float64

	// SourceRoot points the static verification scans at a module
	// source tree. Empty skips those checks.
	SourceRoot string

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DatasetPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	AsOf         string `mapstructure:"as-of"`
	Company      string `mapstructure:"company"`
	Limit        int    `mapstructure:"limit"`
	Workers      int    `mapstructure:"workers"`
	MinGoals     int    `mapstructure:"min-goals"`
	Precision    int    `mapstructure:"precision"`
	Output       string `mapstructure:"output"`
	OutputFile   string `mapstructure:"output-file"`
	Width        int    `mapstructure:"width"`
	RunBackend   string `mapstructure:"run-backend"`
	RunDBConnect string `mapstructure:"run-db-connect"`
	Emoji        string `mapstructure:"emoji"`
	Color        string `mapstructure:"color"`

	// --- Fields from actionsCmd.Flags() ---
	Explain bool `mapstructure:"explain"`

	// --- Fields from gateCmd.Flags() ---
	Epsilon    float64 `mapstructure:"epsilon"`
	SourceRoot string  `mapstructure:"source-root"`

	// --- Tunables from config file ---
	Tolerance   ToleranceRawInput   `mapstructure:"tolerance"`
	Probability ProbabilityRawInput `mapstructure:"probability"`
	Pressure    PressureRawInput    `mapstructure:"pressure"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithReferenceTime creates a copy of the Config pinned to a new
// reference time.
func (c *Config) CloneWithReferenceTime(at time.Time) *Config {
	clone := c.Clone()
	clone.ReferenceTime = at
	return clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processReferenceTime(cfg, input); err != nil {
		return err
	}
	if err := processTunables(cfg, input); err != nil {
		return err
	}
	if err := resolveDatasetPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessAndValidateServer is ProcessAndValidate for server mode, where no
// dataset argument is needed up front: tool requests can supply one per call.
// A dataset given on the command line is still resolved and validated.
func ProcessAndValidateServer(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processReferenceTime(cfg, input); err != nil {
		return err
	}
	if err := processTunables(cfg, input); err != nil {
		return err
	}
	if input.DatasetPathStr == "" {
		return nil
	}
	return resolveDatasetPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.CompanyFilter = strings.TrimSpace(input.Company)
	cfg.OutputFile = input.OutputFile
	cfg.Explain = input.Explain
	cfg.Width = input.Width
	cfg.SourceRoot = input.SourceRoot

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Goal Set Validation ---
	if input.MinGoals <= 0 {
		cfg.MinGoals = DefaultMinGoals
	} else {
		cfg.MinGoals = input.MinGoals
	}

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	// --- 5. Epsilon Validation ---
	if input.Epsilon < 0 {
		return fmt.Errorf("epsilon cannot be negative (received %g)", input.Epsilon)
	}
	cfg.Epsilon = input.Epsilon
	if cfg.Epsilon == 0 {
		cfg.Epsilon = DefaultEpsilon
	}

	// --- 6. Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if _, ok := schema.ValidRunBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	return nil
}

// processReferenceTime pins the run's "now". Every derivation in a run
// uses this single timestamp so recomputation is reproducible.
func processReferenceTime(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	cfg.ReferenceTime = now

	if input.AsOf == "" {
		return nil
	}

	if t, err := time.Parse(DateTimeFormat, input.AsOf); err == nil {
		cfg.ReferenceTime = t
		return nil
	}
	t, err := ParseRelativeTime(input.AsOf, now)
	if err != nil {
		return fmt.Errorf("invalid --as-of value '%s'. Expected absolute ISO8601 or 'N [units] ago': %w", input.AsOf, err)
	}
	cfg.ReferenceTime = t
	return nil
}

// processTunables layers config-file overrides over the stock tunables.
func processTunables(cfg *Config, input *ConfigRawInput) error {
	// --- Tolerance ---
	tol := schema.DefaultToleranceConfig()
	if input.Tolerance.Inner != nil {
		tol.Inner = *input.Tolerance.Inner
	}
	if input.Tolerance.Outer != nil {
		tol.Outer = *input.Tolerance.Outer
	}
	if input.Tolerance.Symmetric != nil {
		tol.Symmetric = *input.Tolerance.Symmetric
	}
	if tol.Inner < 0 || tol.Inner >= 1 {
		return fmt.Errorf("tolerance.inner must be in [0,1) (received %g)", tol.Inner)
	}
	if tol.Outer < 0 || tol.Outer >= 1 {
		return fmt.Errorf("tolerance.outer must be in [0,1) (received %g)", tol.Outer)
	}
	cfg.Tolerance = tol

	// --- Probability blend ---
	prob := schema.GetDefaultProbabilityWeights()
	if input.Probability.Progress != nil {
		prob.Progress = *input.Probability.Progress
	}
	if input.Probability.OnTrack != nil {
		prob.OnTrack = *input.Probability.OnTrack
	}
	if input.Probability.Behind != nil {
		prob.Behind = *input.Probability.Behind
	}
	if input.Probability.HistorySat != nil {
		prob.HistorySat = *input.Probability.HistorySat
	}
	if prob.Progress < 0 || prob.OnTrack < 0 || prob.Behind < 0 {
		return fmt.Errorf("probability weights cannot be negative")
	}
	if prob.HistorySat < 1 {
		return fmt.Errorf("probability.history_sat must be at least 1 (received %d)", prob.HistorySat)
	}
	cfg.Probability = prob

	// --- Pressure curve ---
	press := schema.GetDefaultPressureParams()
	if input.Pressure.Peak != nil {
		press.Peak = *input.Pressure.Peak
	}
	if input.Pressure.DecayDays != nil {
		press.DecayDays = *input.Pressure.DecayDays
	}
	if input.Pressure.HorizonDays != nil {
		press.HorizonDays = *input.Pressure.HorizonDays
	}
	if input.Pressure.ResidualDays != nil {
		press.ResidualDays = *input.Pressure.ResidualDays
	}
	if input.Pressure.Ambient != nil {
		press.Ambient = *input.Pressure.Ambient
	}
	if input.Pressure.MaxPressure != nil {
		press.MaxPressure = *input.Pressure.MaxPressure
	}
	if press.DecayDays <= 0 {
		return fmt.Errorf("pressure.decay_days must be positive (received %g)", press.DecayDays)
	}
	if press.MaxPressure <= 0 {
		return fmt.Errorf("pressure.max_pressure must be positive (received %g)", press.MaxPressure)
	}
	cfg.Pressure = press

	return nil
}

// resolveDatasetPath validates the dataset file argument.
func resolveDatasetPath(cfg *Config, input *ConfigRawInput) error {
	if input.DatasetPathStr == "" {
		return fmt.Errorf("a dataset file argument is required")
	}
	abs, err := filepath.Abs(input.DatasetPathStr)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("dataset file %q: %w", input.DatasetPathStr, err)
	}
	if info.IsDir() {
		return fmt.Errorf("dataset path %q is a directory, expected a JSON file", input.DatasetPathStr)
	}

	cfg.DatasetPath = abs
	return nil
}
