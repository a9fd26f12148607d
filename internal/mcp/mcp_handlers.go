package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pulselab/portpulse/core"
	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// configForRequest clones the base config and applies the request's
// common overrides. Every tool run is pinned to its own reference time.
func (h *toolHandler) configForRequest(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("dataset_path", ""); p != "" {
		cfg.DatasetPath = p
	}
	if cfg.DatasetPath == "" {
		return nil, fmt.Errorf("dataset_path is required when no dataset is configured")
	}
	if _, err := os.Stat(cfg.DatasetPath); err != nil {
		return nil, fmt.Errorf("dataset file %q: %w", cfg.DatasetPath, err)
	}
	cfg.CompanyFilter = request.GetString("company", cfg.CompanyFilter)

	if asOf := request.GetString("as_of", ""); asOf != "" {
		t, err := time.Parse(contract.DateTimeFormat, asOf)
		if err != nil {
			t, err = contract.ParseRelativeTime(asOf, time.Now())
			if err != nil {
				return nil, fmt.Errorf("invalid as_of value %q: %w", asOf, err)
			}
		}
		cfg.ReferenceTime = t
	} else if cfg.ReferenceTime.IsZero() {
		cfg.ReferenceTime = time.Now()
	}
	return cfg, nil
}

func (h *toolHandler) handleGetActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configForRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request parameters: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	result, _, err := core.GetPortfolioResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("pipeline failed: %v", err)), nil
	}

	enriched := schema.EnrichActions(result.RankedActions)
	jsonData, _ := json.MarshalIndent(enriched, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetAnomalies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configForRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request parameters: %v", err)), nil
	}

	result, _, err := core.GetPortfolioResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("detection failed: %v", err)), nil
	}

	type companyFindings struct {
		CompanyID   string                  `json:"companyId"`
		CompanyName string                  `json:"companyName"`
		Stage       schema.Stage            `json:"stage"`
		Anomalies   []schema.Anomaly        `json:"anomalies"`
		Summary     schema.DetectionSummary `json:"summary"`
	}
	findings := make([]companyFindings, len(result.Companies))
	for i, c := range result.Companies {
		findings[i] = companyFindings{
			CompanyID:   c.CompanyID,
			CompanyName: c.CompanyName,
			Stage:       c.Stage,
			Anomalies:   c.Anomalies,
			Summary:     c.Summary,
		}
	}
	jsonData, _ := json.MarshalIndent(findings, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetGoalOutlook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configForRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request parameters: %v", err)), nil
	}

	result, _, err := core.GetPortfolioResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("projection failed: %v", err)), nil
	}

	type companyOutlook struct {
		CompanyID    string                           `json:"companyId"`
		CompanyName  string                           `json:"companyName"`
		Goals        []schema.Goal                    `json:"goals"`
		Trajectories map[string]schema.GoalTrajectory `json:"trajectories"`
		Damages      []schema.GoalDamage              `json:"damages"`
	}
	outlooks := make([]companyOutlook, len(result.Companies))
	for i, c := range result.Companies {
		outlooks[i] = companyOutlook{
			CompanyID:    c.CompanyID,
			CompanyName:  c.CompanyName,
			Goals:        c.Goals,
			Trajectories: c.Trajectories,
			Damages:      c.Damages,
		}
	}
	jsonData, _ := json.MarshalIndent(outlooks, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRunGate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configForRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request parameters: %v", err)), nil
	}

	_, report, _, err := core.GetGateResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("verification failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
