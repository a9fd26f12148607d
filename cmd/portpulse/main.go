// main is the entry point for the portpulse CLI.
package main

import (
	"os"

	"github.com/pulselab/portpulse/cmd"
	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/internal/iostore"
)

func main() {
	err := cmd.Execute()

	// Flush run tracking and profiling before deciding the exit code, so a
	// failed command still records what it can.
	iostore.CloseRunTracking()
	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Could not stop profiling", profErr)
	}

	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
