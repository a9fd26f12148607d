package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/internal/parquet"
	"github.com/pulselab/portpulse/schema"
)

// WriteActionResults outputs the ranked action list, dispatching based on
// the output format configured. The input order is never changed here:
// position one is position one in every format.
func WriteActionResults(actions []schema.Action, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeActionJSONResults(actions, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeActionCSVResults(actions, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeActionParquetResults(actions, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeActionTable(actions, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeActionJSONResults handles opening the file and calling the JSON writer.
func writeActionJSONResults(actions []schema.Action, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, schema.EnrichActions(actions))
	}, "Wrote JSON")
}

// writeActionCSVResults handles opening the file and calling the CSV writer.
func writeActionCSVResults(actions []schema.Action, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForActions(csvWriter, actions, fmtFloat)
	}, "Wrote CSV")
}

// writeActionParquetResults writes the list as a Parquet file. Parquet is
// a binary format, so a real output file is required.
func writeActionParquetResults(actions []schema.Action, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	rows := parquet.ConvertActions(actions)
	if err := parquet.WriteActionsParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	return nil
}

// writeActionTable generates and writes the human-readable table.
func writeActionTable(actions []schema.Action, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	headers := []string{"Rank", "Company", "Title", "Score", "Label"}
	if cfg.Explain {
		headers = append(headers, "Drivers", "Sources")
	}
	table.Header(headers)

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, a := range actions {
		row := []string{
			strconv.Itoa(i + 1),
			a.CompanyID,
			contract.TruncateTitle(a.Title, getMaxTableTitleWidth(cfg)),
			fmtFloat(a.RankScore),
			labelFor(a.RankScore, cfg),
		}
		if cfg.Explain {
			row = append(row, formatTopContribution(&a), schema.FormatSources(a.Sources))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	companies := make(map[string]struct{})
	critical := 0
	for _, a := range actions {
		companies[a.CompanyID] = struct{}{}
		if schema.GetPlainLabel(a.RankScore) == contract.CriticalValue {
			critical++
		}
	}
	if _, err := fmt.Fprintf(writer, "Showing top %d actions across %d companies (critical: %d)\n", len(actions), len(companies), critical); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Pipeline completed in %v with %d workers. Run backend: %s\n", duration, cfg.Workers, cfg.RunBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForActions writes the ranked list in CSV format.
func writeCSVResultsForActions(w *csv.Writer, actions []schema.Action, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"action_id",
		"company",
		"title",
		"score",
		"label",
		"goal_id",
		"categories",
		"sources",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, a := range actions {
		rec := []string{
			strconv.Itoa(i + 1),
			a.ID,
			a.CompanyID,
			a.Title,
			fmtFloat(a.RankScore),
			contract.GetPlainLabel(a.RankScore),
			a.GoalID,
			strings.Join(a.Categories, "|"),
			schema.FormatSources(a.Sources),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// labelFor picks the colored or plain label based on config.
func labelFor(score float64, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return contract.GetPlainLabel(score)
}
