// Package parquet exports pipeline runs and ranked actions to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/pulselab/portpulse/schema"
)

// RunRow is one recorded pipeline run. Maps to the portpulse_runs table.
type RunRow struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartedAt is when the run began
	StartedAt time.Time `parquet:"started_at,snappy"`

	// EndedAt is when the run completed (nullable for in-flight runs)
	EndedAt *time.Time `parquet:"ended_at,optional,snappy"`

	// CompanyCount is the number of companies derived in this run
	CompanyCount int32 `parquet:"company_count,snappy"`

	// ActionCount is the number of ranked actions produced
	ActionCount int32 `parquet:"action_count,snappy"`

	// GateFailed is the number of failing invariant checks
	GateFailed int32 `parquet:"gate_failed,snappy"`
}

// RunActionRow is the audit copy of one ranked action in one run.
// Maps to the portpulse_run_actions table.
type RunActionRow struct {
	// RunID references the parent run
	RunID int64 `parquet:"run_id,snappy"`

	// ActionID is the deterministic action identifier
	ActionID string `parquet:"action_id,snappy"`

	// CompanyID is the company the action belongs to
	CompanyID string `parquet:"company_id,snappy"`

	// Title is the human-readable recommendation
	Title string `parquet:"title,snappy"`

	// RecordedAt is when the audit copy was written
	RecordedAt time.Time `parquet:"recorded_at,snappy"`

	// Rank is 1-based position in the ranked list
	Rank int32 `parquet:"rank,snappy"`

	// RankScore is the score the ranking engine assigned
	RankScore float64 `parquet:"rank_score,snappy"`

	// Sources is the comma-joined source types (nullable)
	Sources *string `parquet:"sources,optional,snappy"`
}

// ActionRow is one ranked action exported straight from a pipeline
// result, without run tracking.
type ActionRow struct {
	// Rank is 1-based position in the ranked list
	Rank int32 `parquet:"rank,snappy"`

	// ActionID is the deterministic action identifier
	ActionID string `parquet:"action_id,snappy"`

	// CompanyID is the company the action belongs to
	CompanyID string `parquet:"company_id,snappy"`

	// Title is the human-readable recommendation
	Title string `parquet:"title,snappy"`

	// RankScore is the score the ranking engine assigned
	RankScore float64 `parquet:"rank_score,snappy"`

	// Sources is the comma-joined source types (nullable)
	Sources *string `parquet:"sources,optional,snappy"`

	// Categories is the comma-joined category tags (nullable)
	Categories *string `parquet:"categories,optional,snappy"`
}

// ConvertRunRecords converts stored run records to Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []RunRow {
	rows := make([]RunRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, RunRow{
			RunID:        r.ID,
			StartedAt:    r.StartedAt,
			EndedAt:      r.EndedAt,
			CompanyCount: int32(r.CompanyCount),
			ActionCount:  int32(r.ActionCount),
			GateFailed:   int32(r.GateFailed),
		})
	}
	return rows
}

// ConvertActionRecords converts stored action audit records to Parquet rows.
func ConvertActionRecords(runID int64, records []schema.ActionRecord) []RunActionRow {
	rows := make([]RunActionRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, RunActionRow{
			RunID:      runID,
			ActionID:   r.ActionID,
			CompanyID:  r.CompanyID,
			Title:      r.Title,
			RecordedAt: r.RecordedAt,
			Rank:       int32(r.Rank),
			RankScore:  r.RankScore,
			Sources:    optional(r.Sources),
		})
	}
	return rows
}

// ConvertActions converts a ranked action list to Parquet rows,
// preserving the order it was handed over in.
func ConvertActions(actions []schema.Action) []ActionRow {
	rows := make([]ActionRow, 0, len(actions))
	for i, a := range actions {
		types := make([]string, 0, len(a.Sources))
		for _, s := range a.Sources {
			types = append(types, string(s.Type))
		}
		rows = append(rows, ActionRow{
			Rank:       int32(i + 1),
			ActionID:   a.ID,
			CompanyID:  a.CompanyID,
			Title:      a.Title,
			RankScore:  a.RankScore,
			Sources:    optional(strings.Join(types, ",")),
			Categories: optional(strings.Join(a.Categories, ",")),
		})
	}
	return rows
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WriteRunsParquet writes run rows to a Parquet file.
func WriteRunsParquet(data []RunRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunActionsParquet writes run action rows to a Parquet file.
func WriteRunActionsParquet(data []RunActionRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteActionsParquet writes ranked action rows to a Parquet file.
func WriteActionsParquet(data []ActionRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows to outputPath with the schema inferred from
// the row struct's tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
