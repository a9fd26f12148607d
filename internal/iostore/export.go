package iostore

import (
	"errors"
	"fmt"

	"github.com/pulselab/portpulse/internal/parquet"
)

// ExecuteRunExport exports recorded runs and their ranked actions to
// Parquet files next to the given output path.
func ExecuteRunExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run tracking is disabled; nothing to export")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no recorded runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total action records: %d\n", status.TotalActions)

	runs, err := store.ListRuns(status.TotalRuns)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	var rowCount int
	actionsFile := outputFile + ".run_actions.parquet"
	var allRows []parquet.RunActionRow
	for _, run := range runs {
		records, err := store.ListActions(run.ID)
		if err != nil {
			return fmt.Errorf("failed to retrieve actions for run %d: %w", run.ID, err)
		}
		allRows = append(allRows, parquet.ConvertActionRecords(run.ID, records)...)
		rowCount += len(records)
	}
	if err := parquet.WriteRunActionsParquet(allRows, actionsFile); err != nil {
		return fmt.Errorf("failed to write run actions: %w", err)
	}
	fmt.Printf("Exported %d action records to: %s\n", rowCount, actionsFile)

	return nil
}
