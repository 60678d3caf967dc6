// ABOUTME: CLI commands for analytics: trends, heatmap, per-habit rates,
// ABOUTME: monthly calendar, and achievements.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/habits/internal/achievement"
	"github.com/harperreed/habits/internal/analytics"
	"github.com/harperreed/habits/internal/models"
)

var (
	trendsPeriod string
	trendsWindow int
	heatmapYear  int
	perHabitDays int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Analytics over your check-in history",
}

var statsTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Completion-rate trend over a trailing window",
	Long: `Show completion rates over a trailing window of days.

Daily trends print one line per day; weekly trends bucket days into weeks
starting on Sunday.

Examples:
  habits stats trends
  habits stats trends --period weekly --window 90`,
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := analytics.NewAggregator(repo, clk)
		data, err := agg.Trends(owner, trendsPeriod, trendsWindow)
		if err != nil {
			return err
		}

		faint := color.New(color.Faint)
		for _, p := range data.DataPoints {
			bar := rateBar(p.CompletionRate)
			fmt.Printf("%s %s %5.1f%% %s\n",
				faint.Sprint(p.Date), padRight(p.Label, 10), p.CompletionRate, bar)
		}
		fmt.Printf("\nAverage: %d%%  Check-ins: %d\n",
			data.AverageCompletionRate, data.TotalCheckIns)
		return nil
	},
}

var statsHeatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Year activity heatmap",
	Long: `Render a GitHub-style activity grid for a year. Cell shading reflects
how many check-ins landed on that day relative to the year's busiest day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		year := heatmapYear
		if year == 0 {
			year = clk.Today().Year
		}

		agg := analytics.NewAggregator(repo, clk)
		data, err := agg.Heatmap(owner, year)
		if err != nil {
			return err
		}

		// rows[weekday][week] = level glyph
		weeks := 0
		for _, c := range data.Cells {
			if c.Week > weeks {
				weeks = c.Week
			}
		}
		rows := make([][]string, 7)
		for i := range rows {
			rows[i] = make([]string, weeks+1)
			for j := range rows[i] {
				rows[i][j] = " "
			}
		}
		for _, c := range data.Cells {
			rows[c.Weekday][c.Week] = levelGlyph(c.Level)
		}

		fmt.Printf("%d\n", data.Year)
		labels := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
		for wd, row := range rows {
			fmt.Printf("%s %s\n", labels[wd], strings.Join(row, ""))
		}
		fmt.Printf("\nCheck-ins: %d  Active days: %d  Longest streak: %d\n",
			data.TotalCheckIns, data.DaysWithActivity, data.LongestStreak)
		return nil
	},
}

var statsHabitsCmd = &cobra.Command{
	Use:   "habits",
	Short: "Per-habit completion rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := analytics.NewAggregator(repo, clk)
		breakdowns, err := agg.PerHabit(owner, perHabitDays)
		if err != nil {
			return err
		}
		if len(breakdowns) == 0 {
			fmt.Println("No habits yet.")
			return nil
		}

		fmt.Printf("Last %d days:\n\n", perHabitDays)
		for _, b := range breakdowns {
			fmt.Printf("%s %s %5.1f%% %s 🔥%-3d best %d\n",
				b.Icon,
				padRight(b.HabitName, 24),
				b.CompletionRate,
				rateBar(b.CompletionRate),
				b.CurrentStreak,
				b.LongestStreak)
		}
		return nil
	},
}

var statsMonthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "Monthly check-in calendar",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		today := clk.Today()
		year, month := today.Year, today.Month
		if len(args) == 1 {
			t, err := time.Parse("2006-01", args[0])
			if err != nil {
				return fmt.Errorf("invalid month: %s (use YYYY-MM)", args[0])
			}
			year, month = t.Year(), t.Month()
		}

		agg := analytics.NewAggregator(repo, clk)
		data, err := agg.Month(owner, year, month)
		if err != nil {
			return err
		}

		fmt.Printf("%s %d: %d of %d days active (%.1f%%)\n\n",
			data.Month, data.Year, data.DaysWithCheckIns,
			data.TotalDaysInMonth, data.MonthlyCompletionRate)
		for _, h := range data.Habits {
			fmt.Printf("%s %s %2d check-ins 🔥%d\n",
				h.Icon, padRight(h.HabitName, 24), h.CheckInCount, h.CurrentStreak)
		}
		return nil
	},
}

var achievementsCmd = &cobra.Command{
	Use:     "achievements",
	Aliases: []string{"badges"},
	Short:   "Show achievements and progress toward locked ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := achievement.NewEngine(repo, clk, nil)
		if err != nil {
			return err
		}
		badges, err := engine.Evaluate(owner)
		if err != nil {
			return fmt.Errorf("failed to evaluate achievements: %w", err)
		}

		faint := color.New(color.Faint)
		unlocked := 0
		for _, a := range badges {
			if a.Unlocked {
				unlocked++
				date := ""
				if a.UnlockedAt != nil {
					date = faint.Sprintf(" (%s)", a.UnlockedAt.Format("2006-01-02"))
				}
				fmt.Printf("%s %s%s\n", a.Icon, a.Name, date)
			} else {
				fmt.Printf("%s %s %s\n",
					faint.Sprint("🔒"),
					faint.Sprint(a.Name),
					faint.Sprintf("%d/%d", a.CurrentProgress, a.RequiredProgress))
			}
		}
		fmt.Printf("\n%d of %d unlocked\n", unlocked, len(models.DefaultAchievementRules))
		return nil
	},
}

// rateBar renders a coarse bar scaled to 20 columns.
func rateBar(pct float64) string {
	filled := int(pct / 5)
	if filled > 20 {
		filled = 20
	}
	return color.GreenString(strings.Repeat("▪", filled))
}

func levelGlyph(level int) string {
	glyphs := []string{"·", "░", "▒", "▓", "█"}
	if level < 0 || level >= len(glyphs) {
		return " "
	}
	return glyphs[level]
}

func init() {
	statsTrendsCmd.Flags().StringVar(&trendsPeriod, "period", "daily", "trend period (daily, weekly)")
	statsTrendsCmd.Flags().IntVar(&trendsWindow, "window", 30, "trailing window in days")
	statsHeatmapCmd.Flags().IntVar(&heatmapYear, "year", 0, "year to render (default current)")
	statsHabitsCmd.Flags().IntVarP(&perHabitDays, "days", "n", 30, "trailing window in days")

	statsCmd.AddCommand(statsTrendsCmd)
	statsCmd.AddCommand(statsHeatmapCmd)
	statsCmd.AddCommand(statsHabitsCmd)
	statsCmd.AddCommand(statsMonthCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(achievementsCmd)
}
