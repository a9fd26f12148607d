// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pulselab/portpulse/internal/contract"
)

// NewMCPServer initializes and configures the PortPulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"PortPulse Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_ranked_actions ---
	s.AddTool(mcp.NewTool("get_ranked_actions",
		mcp.WithDescription("Run the portfolio derivation pipeline and return the globally ranked action list."),
		mcp.WithString("dataset_path", mcp.Description("Path to the portfolio dataset JSON file (defaults to the configured dataset).")),
		mcp.WithString("company", mcp.Description("Restrict the run to one company ID.")),
		mcp.WithString("as_of", mcp.Description("Reference time, absolute ISO8601 or 'N days ago'. Defaults to now.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetActions)

	// --- 2. Tool: get_company_anomalies ---
	s.AddTool(mcp.NewTool("get_company_anomalies",
		mcp.WithDescription("Run anomaly detection against stage-calibrated metric bounds and return the findings per company."),
		mcp.WithString("dataset_path", mcp.Description("Path to the portfolio dataset JSON file.")),
		mcp.WithString("company", mcp.Description("Restrict the run to one company ID.")),
		mcp.WithString("as_of", mcp.Description("Reference time, absolute ISO8601 or 'N days ago'.")),
	), h.handleGetAnomalies)

	// --- 3. Tool: get_goal_outlook ---
	s.AddTool(mcp.NewTool("get_goal_outlook",
		mcp.WithDescription("Project goal trajectories and damages, returning each company's goal outlook."),
		mcp.WithString("dataset_path", mcp.Description("Path to the portfolio dataset JSON file.")),
		mcp.WithString("company", mcp.Description("Restrict the run to one company ID.")),
		mcp.WithString("as_of", mcp.Description("Reference time, absolute ISO8601 or 'N days ago'.")),
	), h.handleGetGoalOutlook)

	// --- 4. Tool: run_gate ---
	s.AddTool(mcp.NewTool("run_gate",
		mcp.WithDescription("Run the full invariant verification battery against a pipeline run and return the report."),
		mcp.WithString("dataset_path", mcp.Description("Path to the portfolio dataset JSON file.")),
		mcp.WithString("company", mcp.Description("Restrict the run to one company ID.")),
		mcp.WithString("as_of", mcp.Description("Reference time, absolute ISO8601 or 'N days ago'.")),
	), h.handleRunGate)

	return s
}

// StartMCPServer starts the PortPulse MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
