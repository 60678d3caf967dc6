// ABOUTME: MCP resource implementations for the habit tracker.
// ABOUTME: Provides habits://summary and habits://heatmap resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// habits://summary - today's dashboard
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "habits://summary",
		Name:        "Habit Summary Dashboard",
		Description: "Today's progress, streaks, and goals at a glance",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	// habits://heatmap - this year's activity grid
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "habits://heatmap",
		Name:        "Activity Heatmap",
		Description: "This year's daily check-in activity with intensity levels",
		MIMEType:    "application/json",
	}, s.handleHeatmapResource)
}

// Resource handlers

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	summary, err := s.dashboard.Summarize(s.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	weekly, err := s.dashboard.Weekly(s.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to build weekly view: %w", err)
	}

	result := map[string]interface{}{
		"summary": summary,
		"weekly":  weekly,
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "habits://summary",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleHeatmapResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	heatmap, err := s.aggregator.Heatmap(s.owner, s.clk.Today().Year)
	if err != nil {
		return nil, fmt.Errorf("failed to build heatmap: %w", err)
	}

	data, err := json.MarshalIndent(heatmap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "habits://heatmap",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
