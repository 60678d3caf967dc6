// ABOUTME: MCP tool implementations for the habit tracker.
// ABOUTME: Covers habit creation, check-ins, goals, progress, and the summary.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
)

func (s *Server) registerTools() {
	// add_habit
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_habit",
		Description: "Create a new daily habit to track",
	}, s.handleAddHabit)

	// list_habits
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_habits",
		Description: "List active habits with current streaks",
	}, s.handleListHabits)

	// check_in
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "check_in",
		Description: "Record a check-in for a habit (today unless a date is given)",
	}, s.handleCheckIn)

	// add_goal
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_goal",
		Description: "Create a new goal with a target value",
	}, s.handleAddGoal)

	// log_progress
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_progress",
		Description: "Log progress toward a goal",
	}, s.handleLogProgress)

	// get_summary
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_summary",
		Description: "Get today's habit and goal summary",
	}, s.handleGetSummary)
}

// Tool input/output types

type addHabitInput struct {
	Name        string `json:"name" jsonschema:"Habit name"`
	Description string `json:"description,omitempty" jsonschema:"Optional description"`
	Icon        string `json:"icon,omitempty" jsonschema:"Emoji icon"`
}

type habitOutput struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type checkInInput struct {
	HabitID string `json:"habit_id" jsonschema:"Habit ID or prefix"`
	Date    string `json:"date,omitempty" jsonschema:"Day (YYYY-MM-DD), defaults to today"`
	Notes   string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type checkInOutput struct {
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	Message       string `json:"message"`
}

type addGoalInput struct {
	Title       string `json:"title" jsonschema:"Goal title"`
	Type        string `json:"type" jsonschema:"Goal type (COUNT, STREAK, DURATION)"`
	TargetValue int    `json:"target_value" jsonschema:"Target value to reach"`
	Unit        string `json:"unit,omitempty" jsonschema:"Unit label (books, km, minutes)"`
	Deadline    string `json:"deadline,omitempty" jsonschema:"Deadline (YYYY-MM-DD)"`
}

type goalOutput struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type logProgressInput struct {
	GoalID string `json:"goal_id" jsonschema:"Goal ID or prefix"`
	Delta  int    `json:"delta" jsonschema:"Positive amount of progress"`
}

type progressOutput struct {
	CurrentValue int     `json:"current_value"`
	TargetValue  int     `json:"target_value"`
	Percentage   float64 `json:"percentage"`
	Completed    bool    `json:"completed"`
	Message      string  `json:"message"`
}

type emptyInput struct{}

// Tool handlers

func (s *Server) handleAddHabit(ctx context.Context, req *mcp.CallToolRequest, input addHabitInput) (*mcp.CallToolResult, habitOutput, error) {
	h := models.NewHabit(s.owner, input.Name)
	if input.Description != "" {
		h = h.WithDescription(input.Description)
	}
	if input.Icon != "" {
		h = h.WithIcon(input.Icon)
	}
	if err := h.Validate(); err != nil {
		return nil, habitOutput{}, err
	}
	if err := s.repo.CreateHabit(h); err != nil {
		return nil, habitOutput{}, fmt.Errorf("failed to create habit: %w", err)
	}

	return nil, habitOutput{
		ID:      h.ID.String()[:8],
		Name:    h.Name,
		Message: fmt.Sprintf("Added habit %s %s (ID: %s)", h.Icon, h.Name, h.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListHabits(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	habits, err := s.repo.ListHabits(s.owner, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list habits: %w", err)
	}
	if len(habits) == 0 {
		return nil, map[string]interface{}{"message": "No habits yet."}, nil
	}

	var results []map[string]interface{}
	for _, h := range habits {
		state, err := s.streaks.ComputeState(s.owner, h.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to compute state: %w", err)
		}
		results = append(results, map[string]interface{}{
			"id":               h.ID.String()[:8],
			"name":             h.Name,
			"icon":             h.Icon,
			"current_streak":   state.CurrentStreak,
			"longest_streak":   state.LongestStreak,
			"checked_in_today": state.CheckedInToday,
		})
	}
	return nil, results, nil
}

func (s *Server) handleCheckIn(ctx context.Context, req *mcp.CallToolRequest, input checkInInput) (*mcp.CallToolResult, checkInOutput, error) {
	id, err := s.repo.ResolveHabitID(s.owner, input.HabitID)
	if err != nil {
		return nil, checkInOutput{}, fmt.Errorf("habit not found: %s", input.HabitID)
	}

	var day clock.Day
	if input.Date != "" {
		if day, err = clock.ParseDay(input.Date); err != nil {
			return nil, checkInOutput{}, fmt.Errorf("invalid date: %s", input.Date)
		}
	}

	state, err := s.streaks.CheckIn(s.owner, id, day, input.Notes)
	if errors.Is(err, apperror.ErrAlreadyCheckedIn) && state != nil {
		return nil, checkInOutput{
			CurrentStreak: state.CurrentStreak,
			LongestStreak: state.LongestStreak,
			Message:       "Already checked in for that day.",
		}, nil
	}
	if err != nil {
		return nil, checkInOutput{}, fmt.Errorf("failed to check in: %w", err)
	}

	return nil, checkInOutput{
		CurrentStreak: state.CurrentStreak,
		LongestStreak: state.LongestStreak,
		Message:       fmt.Sprintf("Checked in! Current streak: %d days", state.CurrentStreak),
	}, nil
}

func (s *Server) handleAddGoal(ctx context.Context, req *mcp.CallToolRequest, input addGoalInput) (*mcp.CallToolResult, goalOutput, error) {
	if !models.IsValidGoalType(input.Type) {
		return nil, goalOutput{}, fmt.Errorf("unknown goal type: %s", input.Type)
	}

	g := models.NewGoal(s.owner, input.Title, models.GoalType(input.Type), input.TargetValue)
	if input.Unit != "" {
		g = g.WithUnit(input.Unit)
	}
	if input.Deadline != "" {
		deadline, err := clock.ParseDay(input.Deadline)
		if err != nil {
			return nil, goalOutput{}, fmt.Errorf("invalid deadline: %s", input.Deadline)
		}
		g = g.WithDeadline(deadline)
	}

	created, err := s.goals.Create(g)
	if err != nil {
		return nil, goalOutput{}, fmt.Errorf("failed to create goal: %w", err)
	}

	return nil, goalOutput{
		ID:      created.ID.String()[:8],
		Title:   created.Title,
		Message: fmt.Sprintf("Added goal %s %s (target: %d, ID: %s)", created.Icon, created.Title, created.TargetValue, created.ID.String()[:8]),
	}, nil
}

func (s *Server) handleLogProgress(ctx context.Context, req *mcp.CallToolRequest, input logProgressInput) (*mcp.CallToolResult, progressOutput, error) {
	id, err := s.repo.ResolveGoalID(s.owner, input.GoalID)
	if err != nil {
		return nil, progressOutput{}, fmt.Errorf("goal not found: %s", input.GoalID)
	}

	g, err := s.goals.IncrementProgress(s.owner, id, input.Delta)
	if err != nil {
		return nil, progressOutput{}, fmt.Errorf("failed to log progress: %w", err)
	}

	msg := fmt.Sprintf("Progress: %d/%d (%.0f%%)", g.CurrentValue, g.TargetValue, g.ProgressPercentage())
	if g.Completed {
		msg = fmt.Sprintf("Goal completed! %d/%d", g.CurrentValue, g.TargetValue)
	}
	return nil, progressOutput{
		CurrentValue: g.CurrentValue,
		TargetValue:  g.TargetValue,
		Percentage:   g.ProgressPercentage(),
		Completed:    g.Completed,
		Message:      msg,
	}, nil
}

func (s *Server) handleGetSummary(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	summary, err := s.dashboard.Summarize(s.owner)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return nil, summary, nil
}
