// ABOUTME: CLI commands for viewing and editing on-disk configuration.
// ABOUTME: Covers backend selection, data directory, owner, and timezone.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/habits/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change configuration",
	Long: `View or change configuration stored in config.json.

KEYS:

  backend    Storage backend: sqlite (default) or charm
  data_dir   Directory for the local database
  owner      Owner ID used for all commands (default "default")
  timezone   IANA timezone for day boundaries (default local)

EXAMPLES:

  habits config show
  habits config set backend charm
  habits config set timezone America/Chicago`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint)
		fmt.Printf("backend:   %s\n", cfg.GetBackend())
		fmt.Printf("data_dir:  %s\n", cfg.GetDataDir())
		fmt.Printf("owner:     %s\n", cfg.GetOwner())
		tz := cfg.Timezone
		if tz == "" {
			tz = "(local)"
		}
		fmt.Printf("timezone:  %s\n", tz)
		fmt.Println(faint.Sprintf("\nconfig file: %s", config.GetConfigPath()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		switch key {
		case "backend":
			if value != "sqlite" && value != "charm" {
				return fmt.Errorf("unknown backend %q (use sqlite or charm)", value)
			}
			cfg.Backend = value
		case "data_dir":
			cfg.DataDir = value
		case "owner":
			if value == "" {
				return fmt.Errorf("owner cannot be empty")
			}
			cfg.Owner = value
		case "timezone":
			if _, err := time.LoadLocation(value); err != nil {
				return fmt.Errorf("unknown timezone %q", value)
			}
			cfg.Timezone = value
		default:
			return fmt.Errorf("unknown key %q (use backend, data_dir, owner, or timezone)", key)
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
