// ABOUTME: CLI commands for managing goals and logging progress.
// ABOUTME: Covers add, list, progress, stats, and rm.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/goal"
	"github.com/harperreed/habits/internal/models"
)

var (
	goalAddType        string
	goalAddTarget      int
	goalAddUnit        string
	goalAddIcon        string
	goalAddDescription string
	goalAddDeadline    string
)

var goalCmd = &cobra.Command{
	Use:     "goal",
	Aliases: []string{"g"},
	Short:   "Manage goals",
}

var goalAddCmd = &cobra.Command{
	Use:     "add <title>",
	Aliases: []string{"a"},
	Short:   "Add a new goal",
	Long: `Add a goal with a numeric target.

GOAL TYPES:

  COUNT     Count things up to a target (books read, workouts done)
  STREAK    Reach a streak length
  DURATION  Accumulate time, in whatever unit you log

Examples:
  habits goal add "Read 12 books" --target 12 --unit books
  habits goal add "Run 100km" --type COUNT --target 100 --unit km --deadline 2024-12-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goalType := strings.ToUpper(goalAddType)
		if !models.IsValidGoalType(goalType) {
			return fmt.Errorf("unknown goal type %q (want COUNT, STREAK, or DURATION)", goalAddType)
		}

		g := models.NewGoal(owner, args[0], models.GoalType(goalType), goalAddTarget)
		if goalAddDescription != "" {
			g = g.WithDescription(goalAddDescription)
		}
		if goalAddUnit != "" {
			g = g.WithUnit(goalAddUnit)
		}
		if goalAddIcon != "" {
			g = g.WithIcon(goalAddIcon)
		}
		if goalAddDeadline != "" {
			d, err := clock.ParseDay(goalAddDeadline)
			if err != nil {
				return fmt.Errorf("invalid deadline: %s (use YYYY-MM-DD)", goalAddDeadline)
			}
			g = g.WithDeadline(d)
		}

		engine := goal.NewEngine(repo, clk)
		if _, err := engine.Create(g); err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}

		color.Green("✓ Added goal %s (target %d)", g.Title, g.TargetValue)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(g.ID.String()[:8]))
		return nil
	},
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List goals with progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := goal.NewEngine(repo, clk)
		goals, err := engine.List(owner)
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}
		if len(goals) == 0 {
			fmt.Println("No goals yet. Add one with 'habits goal add'.")
			return nil
		}

		today := clk.Today()
		faint := color.New(color.Faint)
		for _, g := range goals {
			unit := ""
			if g.Unit != nil {
				unit = " " + *g.Unit
			}
			status := progressBar(g.ProgressPercentage())
			if g.Completed {
				status = color.GreenString("✓ completed")
			} else if g.Overdue(today) {
				status = color.RedString("overdue")
			}
			fmt.Printf("%s %s %d/%d%s %s\n",
				faint.Sprint(g.ID.String()[:8]),
				padRight(g.Title, 28),
				g.CurrentValue,
				g.TargetValue,
				unit,
				status)
			if d := g.DaysRemaining(today); d != nil && !g.Completed && *d >= 0 {
				fmt.Printf("  %s\n", faint.Sprintf("%d days left", *d))
			}
		}
		return nil
	},
}

var goalProgressCmd = &cobra.Command{
	Use:     "progress <id> <delta>",
	Aliases: []string{"log"},
	Short:   "Log progress toward a goal",
	Long: `Add progress to a goal. Deltas are positive and accumulate; progress on a
completed goal still counts, and completion never reverts.

Examples:
  habits goal progress a1b2c3d4 1
  habits goal log a1b2 5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := repo.ResolveGoalID(owner, args[0])
		if err != nil {
			return err
		}
		var delta int
		if _, err := fmt.Sscanf(args[1], "%d", &delta); err != nil {
			return fmt.Errorf("invalid delta: %s (want an integer)", args[1])
		}

		engine := goal.NewEngine(repo, clk)
		g, err := engine.IncrementProgress(owner, id, delta)
		if err != nil {
			return err
		}

		if g.Completed {
			color.Green("🎉 Goal completed: %s (%d/%d)", g.Title, g.CurrentValue, g.TargetValue)
		} else {
			color.Green("✓ Logged %d. %s is at %d/%d (%.1f%%)",
				delta, g.Title, g.CurrentValue, g.TargetValue, g.ProgressPercentage())
		}
		return nil
	},
}

var goalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate goal statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := goal.NewEngine(repo, clk)
		stats, err := engine.GetStats(owner)
		if err != nil {
			return fmt.Errorf("failed to compute goal stats: %w", err)
		}

		fmt.Printf("Goals:              %d\n", stats.TotalGoals)
		fmt.Printf("Completed:          %d\n", stats.CompletedGoals)
		fmt.Printf("In progress:        %d\n", stats.InProgressGoals)
		fmt.Printf("Average progress:   %.1f%%\n", stats.AverageProgress)
		if stats.UpcomingDeadlines > 0 {
			color.Yellow("Deadlines this week: %d", stats.UpcomingDeadlines)
		}
		return nil
	},
}

var goalRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a goal and its progress log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := repo.ResolveGoalID(owner, args[0])
		if err != nil {
			return err
		}
		engine := goal.NewEngine(repo, clk)
		if err := engine.Delete(owner, id); err != nil {
			return err
		}
		color.Green("✓ Deleted goal %s", id.String()[:8])
		return nil
	},
}

// progressBar renders a ten-slot bar like [████______] 42.0%.
func progressBar(pct float64) string {
	filled := int(pct / 10)
	if filled > 10 {
		filled = 10
	}
	return fmt.Sprintf("[%s%s] %.1f%%",
		strings.Repeat("█", filled),
		strings.Repeat("_", 10-filled),
		pct)
}

func init() {
	goalAddCmd.Flags().StringVar(&goalAddType, "type", "COUNT", "goal type (COUNT, STREAK, DURATION)")
	goalAddCmd.Flags().IntVar(&goalAddTarget, "target", 0, "target value (required)")
	goalAddCmd.Flags().StringVar(&goalAddUnit, "unit", "", "unit label (books, km, minutes)")
	goalAddCmd.Flags().StringVar(&goalAddIcon, "icon", "", "emoji icon")
	goalAddCmd.Flags().StringVar(&goalAddDescription, "description", "", "goal description")
	goalAddCmd.Flags().StringVar(&goalAddDeadline, "deadline", "", "deadline (YYYY-MM-DD)")
	_ = goalAddCmd.MarkFlagRequired("target")

	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalProgressCmd)
	goalCmd.AddCommand(goalStatsCmd)
	goalCmd.AddCommand(goalRmCmd)
	rootCmd.AddCommand(goalCmd)
}
