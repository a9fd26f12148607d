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

// WriteGoalResults outputs goal outlooks, dispatching based on the output
// format configured. Goals keep their selection order within a company.
func WriteGoalResults(companies []schema.CompanyDerived, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, goalJSONModel(companies))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForGoals(csvWriter, companies, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for actions and run exports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGoalTable(companies, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
}

// goalJSONModel strips companies down to the goal outlook view.
func goalJSONModel(companies []schema.CompanyDerived) []map[string]any {
	output := make([]map[string]any, len(companies))
	for i, c := range companies {
		output[i] = map[string]any{
			"companyId":    c.CompanyID,
			"companyName":  c.CompanyName,
			"goals":        c.Goals,
			"trajectories": c.Trajectories,
			"damages":      c.Damages,
		}
	}
	return output
}

// formatOnTrack renders the three-valued outlook flag.
func formatOnTrack(t *schema.GoalTrajectory) string {
	if t == nil || t.OnTrack == nil {
		return "unknown"
	}
	if *t.OnTrack {
		return "yes"
	}
	return "no"
}

func writeGoalTable(companies []schema.CompanyDerived, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Company", "Goal", "Status", "Progress", "Days Left", "On Track", "P(hit)", "Confidence"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	total := 0
	var data [][]string
	for _, c := range companies {
		for _, g := range c.Goals {
			total++
			var traj *schema.GoalTrajectory
			if t, ok := c.Trajectories[g.ID]; ok {
				traj = &t
			}
			row := []string{
				c.CompanyID,
				contract.TruncateTitle(g.Name, getMaxTableTitleWidth(cfg)),
				string(g.Status),
			}
			if traj != nil {
				row = append(row,
					fmtFloat(traj.Progress),
					fmtFloat(traj.DaysLeft),
					formatOnTrack(traj),
					fmtFloat(traj.ProbabilityOfHit),
					fmtFloat(traj.Confidence),
				)
			} else {
				row = append(row, "-", "-", "unknown", "-", "-")
			}
			data = append(data, row)
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "%s\n", headerLine(cfg, "🎯", fmt.Sprintf("Showing %d goals across %d companies", total, len(companies)))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Projection completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

func writeCSVResultsForGoals(w *csv.Writer, companies []schema.CompanyDerived, fmtFloat func(float64) string) error {
	header := []string{
		"company",
		"goal_id",
		"name",
		"type",
		"status",
		"weight",
		"due",
		"progress",
		"days_left",
		"on_track",
		"velocity",
		"required_velocity",
		"probability_of_hit",
		"confidence",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, c := range companies {
		for _, g := range c.Goals {
			var traj *schema.GoalTrajectory
			if t, ok := c.Trajectories[g.ID]; ok {
				traj = &t
			}
			rec := []string{
				c.CompanyID,
				g.ID,
				g.Name,
				string(g.Type),
				string(g.Status),
				fmtFloat(g.Weight),
				g.Due.Format(contract.DateTimeFormat),
			}
			if traj != nil {
				rec = append(rec,
					fmtFloat(traj.Progress),
					fmtFloat(traj.DaysLeft),
					formatOnTrack(traj),
					fmtFloat(traj.Velocity),
					fmtFloat(traj.RequiredVelocity),
					fmtFloat(traj.ProbabilityOfHit),
					fmtFloat(traj.Confidence),
				)
			} else {
				rec = append(rec, "", "", "unknown", "", "", "", "")
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
