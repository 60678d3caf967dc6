// ABOUTME: CLI commands for managing habits and check-ins.
// ABOUTME: Covers add, list, checkin, history, and rm (archive).
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/streak"
)

var (
	habitAddDescription string
	habitAddIcon        string
	habitListAll        bool
	checkinDate         string
	checkinNotes        string
	historyDays         int
)

var habitCmd = &cobra.Command{
	Use:     "habit",
	Aliases: []string{"h"},
	Short:   "Manage habits",
}

var habitAddCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"a"},
	Short:   "Add a new habit",
	Long: `Add a new daily habit to track.

Examples:
  habits habit add "Read"
  habits habit add "Meditate" --icon 🧘 --description "10 minutes each morning"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h := models.NewHabit(owner, args[0])
		if habitAddDescription != "" {
			h = h.WithDescription(habitAddDescription)
		}
		if habitAddIcon != "" {
			h = h.WithIcon(habitAddIcon)
		}
		if err := h.Validate(); err != nil {
			return err
		}
		if err := repo.CreateHabit(h); err != nil {
			return fmt.Errorf("failed to create habit: %w", err)
		}

		color.Green("✓ Added %s %s", h.Icon, h.Name)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(h.ID.String()[:8]))
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List habits with streaks",
	Long: `List habits with their current and longest streaks.

OUTPUT FORMAT:

  Each line shows: ID  ICON NAME  STREAK  LONGEST  TODAY

  The ID is an 8-character prefix you can use with other habit commands.

EXAMPLES:

  habits habit list          # Active habits
  habits habit list --all    # Include archived habits`,
	RunE: func(cmd *cobra.Command, args []string) error {
		habits, err := repo.ListHabits(owner, !habitListAll)
		if err != nil {
			return fmt.Errorf("failed to list habits: %w", err)
		}
		if len(habits) == 0 {
			fmt.Println("No habits yet. Add one with 'habits habit add'.")
			return nil
		}

		engine := streak.NewEngine(repo, clk)
		faint := color.New(color.Faint)
		for _, h := range habits {
			state, err := engine.ComputeState(owner, h.ID)
			if err != nil {
				return fmt.Errorf("failed to compute streak: %w", err)
			}

			today := faint.Sprint("·")
			if state.CheckedInToday {
				today = color.GreenString("✓")
			}
			archived := ""
			if !h.Active {
				archived = faint.Sprint(" (archived)")
			}
			fmt.Printf("%s %s %s 🔥%-3d best %-3d %s%s\n",
				faint.Sprint(h.ID.String()[:8]),
				h.Icon,
				padRight(h.Name, 24),
				state.CurrentStreak,
				state.LongestStreak,
				today,
				archived)
		}
		return nil
	},
}

var habitCheckinCmd = &cobra.Command{
	Use:     "checkin <id>",
	Aliases: []string{"ci", "done"},
	Short:   "Check in for a habit",
	Long: `Record a check-in for a habit. Defaults to today; use --date for a past day.

A second check-in for the same day is reported, not recorded twice.

Examples:
  habits habit checkin a1b2c3d4
  habits habit checkin a1b2 --date 2024-06-14 --notes "before bed"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := repo.ResolveHabitID(owner, args[0])
		if err != nil {
			return err
		}

		var day clock.Day
		if checkinDate != "" {
			if day, err = clock.ParseDay(checkinDate); err != nil {
				return fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", checkinDate)
			}
		}

		engine := streak.NewEngine(repo, clk)
		state, err := engine.CheckIn(owner, id, day, checkinNotes)
		if errors.Is(err, apperror.ErrAlreadyCheckedIn) && state != nil {
			color.Yellow("Already checked in for that day.")
			fmt.Printf("  Current streak: %d days\n", state.CurrentStreak)
			return nil
		}
		if err != nil {
			return err
		}

		color.Green("✓ Checked in! Current streak: %d days", state.CurrentStreak)
		if state.CurrentStreak > 1 && state.CurrentStreak == state.LongestStreak {
			fmt.Println("  New personal best! 🎉")
		}
		return nil
	},
}

var habitHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show a habit's check-in history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := repo.ResolveHabitID(owner, args[0])
		if err != nil {
			return err
		}

		engine := streak.NewEngine(repo, clk)
		checkIns, err := engine.History(owner, id, historyDays)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		if len(checkIns) == 0 {
			fmt.Printf("No check-ins in the last %d days.\n", historyDays)
			return nil
		}

		faint := color.New(color.Faint)
		for _, c := range checkIns {
			notes := ""
			if c.Notes != nil && *c.Notes != "" {
				notes = faint.Sprintf(" (%s)", truncate(*c.Notes, 40))
			}
			fmt.Printf("%s %s%s\n", color.GreenString("✓"), c.Day, notes)
		}
		return nil
	},
}

var habitRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"archive"},
	Short:   "Archive a habit",
	Long: `Archive a habit. Its check-in history is retained and still counts
toward past analytics; it just stops appearing in lists and today's targets.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := repo.ResolveHabitID(owner, args[0])
		if err != nil {
			return err
		}
		if err := repo.ArchiveHabit(owner, id); err != nil {
			return err
		}
		color.Green("✓ Archived habit %s", id.String()[:8])
		return nil
	},
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	habitAddCmd.Flags().StringVar(&habitAddDescription, "description", "", "habit description")
	habitAddCmd.Flags().StringVar(&habitAddIcon, "icon", "", "emoji icon")
	habitListCmd.Flags().BoolVar(&habitListAll, "all", false, "include archived habits")
	habitCheckinCmd.Flags().StringVar(&checkinDate, "date", "", "day to check in (YYYY-MM-DD, default today)")
	habitCheckinCmd.Flags().StringVar(&checkinNotes, "notes", "", "notes for the check-in")
	habitHistoryCmd.Flags().IntVarP(&historyDays, "days", "n", 30, "number of days to show")

	habitCmd.AddCommand(habitAddCmd)
	habitCmd.AddCommand(habitListCmd)
	habitCmd.AddCommand(habitCheckinCmd)
	habitCmd.AddCommand(habitHistoryCmd)
	habitCmd.AddCommand(habitRmCmd)
	rootCmd.AddCommand(habitCmd)
}
