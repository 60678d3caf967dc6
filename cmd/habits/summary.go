// ABOUTME: CLI command for the dashboard summary: today's progress, streaks,
// ABOUTME: the weekly view, the habit leaderboard, and a motivational quote.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/habits/internal/dashboard"
)

var (
	summaryWeekly      bool
	summaryLeaderboard bool
)

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"today", "s"},
	Short:   "Show today's dashboard",
	Long: `Show the dashboard: today's completion, streaks, goals, and a quote.

Examples:
  habits summary
  habits summary --weekly
  habits summary --leaderboard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		composer := dashboard.NewComposer(repo, clk, nil)

		if summaryWeekly {
			return printWeekly(composer)
		}
		if summaryLeaderboard {
			return printLeaderboard(composer)
		}

		s, err := composer.Summarize(owner)
		if err != nil {
			return fmt.Errorf("failed to build summary: %w", err)
		}

		fmt.Printf("📅 %s\n\n", clk.Today())
		if s.TodayProgress != nil {
			fmt.Printf("Today:     %.1f%% (%d done, %d to go)\n",
				*s.TodayProgress, intOrZero(s.CompletedToday), intOrZero(s.RemainingToday))
			fmt.Printf("Streak:    🔥%d longest\n", intOrZero(s.LongestStreak))
			fmt.Printf("All time:  %d check-ins over %d days\n",
				intOrZero(s.TotalCheckIns), intOrZero(s.DaysActive))
		}
		if s.ActiveGoals != nil {
			fmt.Printf("Goals:     %d active\n", *s.ActiveGoals)
		}
		for _, section := range s.Degraded {
			color.Yellow("⚠ %s unavailable right now", section)
		}
		if s.Motivation != "" {
			fmt.Printf("\n%s\n", color.New(color.Faint, color.Italic).Sprintf("“%s”", s.Motivation))
		}
		return nil
	},
}

func printWeekly(composer *dashboard.Composer) error {
	days, err := composer.Weekly(owner)
	if err != nil {
		return fmt.Errorf("failed to build weekly view: %w", err)
	}

	faint := color.New(color.Faint)
	for _, d := range days {
		fmt.Printf("%s %s %d/%d %s\n",
			faint.Sprint(d.Date),
			padRight(d.DayName, 10),
			d.Completed,
			d.Total,
			rateBar(d.CompletionRate))
	}
	return nil
}

func printLeaderboard(composer *dashboard.Composer) error {
	entries, err := composer.Leaderboard(owner)
	if err != nil {
		return fmt.Errorf("failed to build leaderboard: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No habits yet.")
		return nil
	}

	medals := []string{"🥇", "🥈", "🥉"}
	for i, e := range entries {
		rank := fmt.Sprintf("%2d.", i+1)
		if i < len(medals) {
			rank = medals[i] + " "
		}
		fmt.Printf("%s %s %s 🔥%-3d best %d\n",
			rank, e.Icon, padRight(e.HabitName, 24), e.CurrentStreak, e.LongestStreak)
	}
	return nil
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryWeekly, "weekly", false, "show the last 7 days")
	summaryCmd.Flags().BoolVar(&summaryLeaderboard, "leaderboard", false, "rank habits by streak")
	rootCmd.AddCommand(summaryCmd)
}
