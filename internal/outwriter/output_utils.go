package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// headerLine renders a section header, with the emoji only when enabled.
func headerLine(cfg *contract.Config, emoji, text string) string {
	if cfg.UseEmojis && emoji != "" {
		return emoji + " " + text
	}
	return text
}

// breakdownContrib holds a key-value pair from an action's Breakdown map.
type breakdownContrib struct {
	Name  string
	Value float64
}

const (
	contribMinimum = 0.01
	topNContribs   = 3
)

// formatTopContribution names the top contributors behind an action's
// position, largest absolute term first.
func formatTopContribution(a *schema.Action) string {
	var contribs []breakdownContrib
	for k, v := range a.Breakdown {
		if math.Abs(v) >= contribMinimum {
			contribs = append(contribs, breakdownContrib{Name: k, Value: v})
		}
	}
	if len(contribs) == 0 {
		return "Not applicable"
	}

	sort.Slice(contribs, func(i, j int) bool {
		if math.Abs(contribs[i].Value) != math.Abs(contribs[j].Value) {
			return math.Abs(contribs[i].Value) > math.Abs(contribs[j].Value)
		}
		return contribs[i].Name < contribs[j].Name
	})

	var parts []string
	limit := min(len(contribs), topNContribs)
	for i := range limit {
		parts = append(parts, contribs[i].Name)
	}
	return strings.Join(parts, " > ")
}

// getMaxTableTitleWidth calculates the maximum width for action titles in
// table output based on terminal width and table configuration.
func getMaxTableTitleWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for fixed columns with table formatting
	baseWidth := 40 // Rank + Company + Score + Label with borders/padding

	if cfg.Explain {
		baseWidth += 50 // Drivers + Sources columns with formatting
	}

	// Reserve generous space for table borders, separators, and padding
	baseWidth += 15

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
