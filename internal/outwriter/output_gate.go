package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/schema"
)

// WriteGateReport outputs the invariant battery report, dispatching based
// on the output format configured.
func WriteGateReport(report *schema.GateReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForGate(csvWriter, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for actions and run exports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGateText(report, cfg, duration, w)
		}, "Wrote report")
	}
}

// statusMark picks the marker for one check line.
func statusMark(status schema.CheckStatus, useEmojis bool) string {
	if useEmojis {
		switch status {
		case schema.CheckPassed:
			return "✅"
		case schema.CheckFailed:
			return "❌"
		default:
			return "⏭️"
		}
	}
	switch status {
	case schema.CheckPassed:
		return "PASS"
	case schema.CheckFailed:
		return "FAIL"
	default:
		return "SKIP"
	}
}

func writeGateText(report *schema.GateReport, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	for _, result := range report.Results {
		if _, err := fmt.Fprintf(writer, "%s %s\n", statusMark(result.Status, cfg.UseEmojis), result.Name); err != nil {
			return err
		}
		for _, msg := range result.Messages {
			if _, err := fmt.Fprintf(writer, "    %s\n", msg); err != nil {
				return err
			}
		}
	}

	verdict := "PASSED"
	if !report.Success() {
		verdict = "FAILED"
	}
	if _, err := fmt.Fprintf(writer, "%s: %d passed, %d failed, %d skipped\n",
		verdict, report.Passed, report.Failed, report.Skipped); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Verification completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

func writeCSVResultsForGate(w *csv.Writer, report *schema.GateReport) error {
	header := []string{"check", "status", "messages"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, result := range report.Results {
		rec := []string{
			result.Name,
			string(result.Status),
			strings.Join(result.Messages, "; "),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
