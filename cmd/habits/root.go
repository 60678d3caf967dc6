// ABOUTME: Root Cobra command for habits CLI.
// ABOUTME: Handles config load and storage lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/config"
	"github.com/harperreed/habits/internal/storage"
)

var (
	cfg       *config.Config
	repo      storage.Repository
	clk       *clock.Clock
	owner     string
	ownerFlag string
)

var rootCmd = &cobra.Command{
	Use:   "habits",
	Short: "Personal habit tracker",
	Long: `Habits is a CLI tool for tracking daily habits, streaks, and goals.

QUICK START:

  $ habits habit add "Read" --icon 📚     # Create a habit
  $ habits habit checkin read             # Check in for today
  $ habits habit list                     # See habits with streaks
  $ habits goal add "Read 12 books" --target 12 --unit books
  $ habits goal progress <id> 1           # Log progress
  $ habits summary                        # Today's dashboard

STATS:

  $ habits stats trends --period weekly   # Completion-rate trends
  $ habits stats heatmap                  # This year's activity grid
  $ habits achievements                   # Unlocked achievements
  $ habits stats habits                   # Per-habit breakdown

SERVERS:

  $ habits serve                          # REST API on :8080
  $ habits mcp                            # MCP server over stdio

SYNC:

  With the charm backend, data syncs across devices via Charm Cloud,
  E2E encrypted with your SSH key.

  $ habits sync link      # Link device to your Charm account
  $ habits sync status    # Check sync status

DATA STORAGE:

  By default data lives in a SQLite database at ~/.local/share/habits.
  Run 'habits config set backend charm' to sync via Charm Cloud instead.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip storage init for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}

		clk = cfg.Clock()
		owner = cfg.GetOwner()
		if ownerFlag != "" {
			owner = ownerFlag
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			return repo.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "act as this owner (default from config)")
}
