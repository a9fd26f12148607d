package mcp_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulselab/portpulse/internal/contract"
	mcp_internal "github.com/pulselab/portpulse/internal/mcp"
)

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{
		ResultLimit: contract.DefaultResultLimit,
		Workers:     contract.DefaultWorkers,
	}

	// Create a dummy manager, though we shouldn't hit it because we test validation errors
	var mgr contract.StoreManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	ctx := context.Background()

	t.Run("get_ranked_actions missing dataset", func(t *testing.T) {
		tool := s.GetTool("get_ranked_actions")
		require.NotNil(t, tool, "Tool get_ranked_actions should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "get_ranked_actions",
				Arguments: map[string]any{},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "dataset_path is required")
	})

	t.Run("get_ranked_actions dataset does not exist", func(t *testing.T) {
		tool := s.GetTool("get_ranked_actions")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_ranked_actions",
				Arguments: map[string]any{
					"dataset_path": "/nonexistent/portfolio.json",
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "/nonexistent/portfolio.json")
	})

	t.Run("run_gate invalid as_of", func(t *testing.T) {
		tool := s.GetTool("run_gate")
		require.NotNil(t, tool, "Tool run_gate should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "run_gate",
				Arguments: map[string]any{
					"dataset_path": "testdata/does-not-matter.json",
					"as_of":        "yesterday-ish", // Invalid
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError, "The response should indicate an error state")
	})

	t.Run("all tools registered", func(t *testing.T) {
		for _, name := range []string{"get_ranked_actions", "get_company_anomalies", "get_goal_outlook", "run_gate"} {
			assert.NotNil(t, s.GetTool(name), "Tool %s should exist", name)
		}
	})
}
