package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/internal/iostore"
	"github.com/pulselab/portpulse/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [dataset]",
	Short: "Start the PortPulse MCP server",
	Long: `Launch an MCP server that lets AI agents query ranked actions,
anomalies, goal outlooks and gate reports via standard tools.

A dataset argument is optional here: tool requests can supply their own
dataset_path, and a dataset given on the command line becomes the
default for requests that omit it.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: mcpSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

// mcpSetup mirrors sharedSetup but does not require a dataset argument.
// Header logs are suppressed inside the server to keep stdio clean for
// the protocol.
func mcpSetup(_ context.Context, _ *cobra.Command, args []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if len(args) == 1 {
		input.DatasetPathStr = args[0]
	}
	if err := contract.ProcessAndValidateServer(cfg, input); err != nil {
		return err
	}
	if err := iostore.InitRunTracking(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}
	if storeManager == nil {
		storeManager = iostore.Manager
	}
	return nil
}

// mcpSetupWrapper wraps mcpSetup to provide context for Cobra's PreRunE.
func mcpSetupWrapper(cmd *cobra.Command, args []string) error {
	return mcpSetup(rootCtx, cmd, args)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
