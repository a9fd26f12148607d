package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/schema"
)

// WriteAnomalyResults outputs detection findings, dispatching based on
// the output format configured.
func WriteAnomalyResults(companies []schema.CompanyDerived, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, anomalyJSONModel(companies))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForAnomalies(csvWriter, companies, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for actions and run exports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnomalyTable(companies, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
}

// anomalyJSONModel strips companies down to the detection view.
func anomalyJSONModel(companies []schema.CompanyDerived) []map[string]any {
	output := make([]map[string]any, len(companies))
	for i, c := range companies {
		output[i] = map[string]any{
			"companyId":   c.CompanyID,
			"companyName": c.CompanyName,
			"stage":       c.Stage,
			"anomalies":   c.Anomalies,
			"summary":     c.Summary,
		}
	}
	return output
}

func writeAnomalyTable(companies []schema.CompanyDerived, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Company", "Metric", "Severity", "Type", "Actual", "Bounds", "Note"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	total := 0
	var data [][]string
	for _, c := range companies {
		for _, a := range c.Anomalies {
			total++
			data = append(data, []string{
				c.CompanyID,
				string(a.Metric),
				contract.GetSeverityLabel(a.Severity.String(), cfg.UseColors),
				string(a.Type),
				fmtFloat(a.Evidence.Actual),
				fmt.Sprintf("[%s, %s]", fmtFloat(a.Evidence.Min), fmtFloat(a.Evidence.Max)),
				contract.TruncateTitle(a.Evidence.Explanation, getMaxTableTitleWidth(cfg)),
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "%s\n", headerLine(cfg, "🔍", fmt.Sprintf("Found %d anomalies across %d companies", total, len(companies)))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Detection completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

func writeCSVResultsForAnomalies(w *csv.Writer, companies []schema.CompanyDerived, fmtFloat func(float64) string) error {
	header := []string{
		"company",
		"metric",
		"severity",
		"type",
		"entity",
		"actual",
		"min",
		"max",
		"feathered",
		"in_tolerance_zone",
		"direction",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, c := range companies {
		for _, a := range c.Anomalies {
			rec := []string{
				c.CompanyID,
				string(a.Metric),
				a.Severity.String(),
				string(a.Type),
				a.EntityRef.ID,
				fmtFloat(a.Evidence.Actual),
				fmtFloat(a.Evidence.Min),
				fmtFloat(a.Evidence.Max),
				fmt.Sprintf("%t", a.Evidence.Feathered),
				fmt.Sprintf("%t", a.Evidence.InToleranceZone),
				string(a.Evidence.Direction),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
