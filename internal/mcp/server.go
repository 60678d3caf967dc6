// ABOUTME: MCP server setup for the habit tracker.
// ABOUTME: Wraps the MCP server with storage and engine access for one owner.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/habits/internal/achievement"
	"github.com/harperreed/habits/internal/analytics"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/dashboard"
	"github.com/harperreed/habits/internal/goal"
	"github.com/harperreed/habits/internal/storage"
	"github.com/harperreed/habits/internal/streak"
)

// Server wraps the MCP server with engine access. MCP sessions act as a
// single owner, set at construction.
type Server struct {
	mcpServer  *mcp.Server
	repo       storage.Repository
	clk        *clock.Clock
	owner      string
	streaks    *streak.Engine
	goals      *goal.Engine
	badges     *achievement.Engine
	aggregator *analytics.Aggregator
	dashboard  *dashboard.Composer
}

// NewServer creates a new MCP server over the given storage.
func NewServer(repo storage.Repository, clk *clock.Clock, owner string) (*Server, error) {
	badges, err := achievement.NewEngine(repo, clk, nil)
	if err != nil {
		return nil, fmt.Errorf("build achievement engine: %w", err)
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "habits",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer:  mcpServer,
		repo:       repo,
		clk:        clk,
		owner:      owner,
		streaks:    streak.NewEngine(repo, clk),
		goals:      goal.NewEngine(repo, clk),
		badges:     badges,
		aggregator: analytics.NewAggregator(repo, clk),
		dashboard:  dashboard.NewComposer(repo, clk, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
