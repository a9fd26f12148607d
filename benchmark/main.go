// Package main provides a performance benchmarking tool for the portpulse CLI.
// It generates synthetic portfolio snapshots of increasing size, measures
// execution times across command types, running each test multiple times and
// treating the first run as cold and averaging the rest as warm, and generates
// CSV output for performance analysis and documentation.
//
// Prerequisites:
// - portpulse binary installed and available in PATH
//
// Usage: go run benchmark/main.go [output-dir]
//
//	output-dir: Directory where synthetic datasets are written
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset  string
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	OutputDir string
	Timeout   time.Duration
	Workers   int
	Runs      int
	Sizes     []int // portfolio sizes in companies
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [output-dir]\n", os.Args[0])
		os.Exit(1)
	}
	outputDir := os.Args[1]

	config := BenchmarkConfig{
		OutputDir: outputDir,
		Timeout:   2 * time.Minute,
		Workers:   8,
		Runs:      4,
		Sizes:     []int{10, 100, 1000, 5000},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	datasets, err := generateDatasets(config)
	if err != nil {
		fmt.Printf("Failed to generate datasets: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, datasets)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the portpulse binary and output directory exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("portpulse"); err != nil {
		return fmt.Errorf("portpulse binary not found in PATH")
	}
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output dir %s: %w", config.OutputDir, err)
	}
	return nil
}

// generateDatasets writes one synthetic snapshot per configured size and
// returns a name -> path map.
func generateDatasets(config BenchmarkConfig) (map[string]string, error) {
	datasets := make(map[string]string, len(config.Sizes))
	for _, size := range config.Sizes {
		name := fmt.Sprintf("portfolio-%d", size)
		path := filepath.Join(config.OutputDir, name+".json")
		fmt.Printf("Generating %s (%d companies)\n", path, size)
		if err := os.WriteFile(path, buildSnapshot(size), 0o644); err != nil {
			return nil, err
		}
		datasets[name] = path
	}
	return datasets, nil
}

// buildSnapshot produces a deterministic synthetic snapshot with n companies.
// Metric spreads are chosen so roughly a third of the companies trip stage
// bounds, which keeps the action ranking phase busy.
func buildSnapshot(n int) []byte {
	var b strings.Builder
	b.WriteString(`{"generatedAt": "2026-02-28T00:00:00Z", "companies": [`)
	stages := []string{"pre_seed", "seed", "series_a", "series_b"}
	for i := range n {
		if i > 0 {
			b.WriteString(",")
		}
		stage := stages[i%len(stages)]
		cash := 300_000 + (i%7)*450_000
		burn := 60_000 + (i%5)*55_000
		mrr := (i % 11) * 20_000
		fmt.Fprintf(&b, `{
			"id": "c-%04d", "name": "Synthetic %d", "stage": %q,
			"metrics": {"cash": %d, "burn": %d, "headcount": %d, "mrr": %d},
			"goals": [{
				"id": "g-%04d", "entityRefs": [{"type": "company", "id": "c-%04d"}],
				"type": "revenue_growth", "name": "Grow MRR", "current": %d, "target": %d,
				"due": "2026-12-01T00:00:00Z", "status": "active", "weight": 70, "provenance": "manual",
				"history": [
					{"timestamp": "2025-12-01T00:00:00Z", "value": %d},
					{"timestamp": "2026-01-01T00:00:00Z", "value": %d},
					{"timestamp": "2026-02-01T00:00:00Z", "value": %d}
				]
			}],
			"issues": [{"id": "i-%04d", "type": "burn_overrun", "severity": %d, "title": "Synthetic issue", "openedAt": "2026-01-15T00:00:00Z"}],
			"constraints": [{"id": "k-%04d", "type": "board_meeting", "date": "2026-03-15T00:00:00Z", "title": "Board"}]
		}`,
			i, i, stage, cash, burn, 5+(i%40), mrr,
			i, i, mrr, mrr*2+50_000,
			mrr*6/10, mrr*8/10, mrr,
			i, 1+(i%3), i)
	}
	b.WriteString(`], "events": []}`)
	return []byte(b.String())
}

// runBenchmarks executes all benchmark tests across generated datasets.
func runBenchmarks(config BenchmarkConfig, datasets map[string]string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, %d runs each\n",
		len(datasets), config.Timeout, config.Workers, config.Runs)

	commands := []string{"actions", "anomalies", "goals", "gate"}
	for _, size := range []int{10, 100, 1000, 5000} {
		name := fmt.Sprintf("portfolio-%d", size)
		path, ok := datasets[name]
		if !ok {
			continue
		}
		fmt.Printf("Benchmarking %s\n", name)
		for _, command := range commands {
			results = append(results, runBenchmarkSuite(config, name, path, command))
		}
	}

	return results
}

// runBenchmarkSuite runs one command against one dataset and splits the
// timings into a cold first run and a warm average.
func runBenchmarkSuite(config BenchmarkConfig, dataset, datasetPath, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, dataset)

	cold, warmTimes := runBenchmark(config, datasetPath, command)

	coldStr := "TIMEOUT"
	if cold > 0 {
		coldStr = fmt.Sprintf("%.3fs", cold)
	}
	warmStr := "TIMEOUT"
	if len(warmTimes) > 0 {
		var sum float64
		for _, t := range warmTimes {
			sum += t
		}
		warmStr = fmt.Sprintf("%.3fs", sum/float64(len(warmTimes)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldStr, warmStr)

	return BenchmarkResult{
		Dataset:  dataset,
		Command:  command,
		ColdTime: coldStr,
		WarmTime: warmStr,
	}
}

// runBenchmark executes a portpulse command multiple times and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, datasetPath, command string) (coldTime float64, warmTimes []float64) {
	args := []string{
		command, datasetPath,
		"--as-of", "2026-02-28T00:00:00Z",
		"--workers", fmt.Sprintf("%d", config.Workers),
		"--run-backend", "none",
	}

	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("portpulse", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "gate" {
		return strings.Contains(outputStr, "Verification completed in")
	}
	if command == "actions" {
		return strings.Contains(outputStr, "Pipeline completed in")
	}
	return len(outputStr) > 0
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/portpulse_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, command := range []string{"actions", "anomalies", "goals", "gate"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-15s: Cold: %s, Warm: %s\n", result.Dataset, result.ColdTime, result.WarmTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
