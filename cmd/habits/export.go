// ABOUTME: CLI commands for exporting and importing habit data.
// ABOUTME: Supports JSON and YAML export, and JSON import for restores.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/habits/internal/storage"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export habit data",
	Long: `Export all habits, check-ins, goals, progress, and achievements.

FORMATS:

  json   Full JSON export (suitable for backup/restore)
  yaml   YAML export (human-readable)

EXAMPLES:

  habits export json                  # Export all data as JSON
  habits export json -o backup.json   # Save to file
  habits export yaml                  # Export as YAML`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		export, err := repo.GetAllData(owner)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var data []byte
		switch args[0] {
		case "json":
			data, err = json.MarshalIndent(export, "", "  ")
		case "yaml":
			data, err = yaml.Marshal(export)
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import habit data from JSON",
	Long: `Import habits, check-ins, goals, and progress from a JSON backup.

Records keep their original IDs. Check-ins that already exist for a day are
skipped; other duplicates cause an error.

EXAMPLES:

  habits import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var data storage.ExportData
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("invalid backup file: %w", err)
		}

		for _, h := range data.Habits {
			if err := repo.CreateHabit(h); err != nil {
				return fmt.Errorf("import failed on habit %s: %w", h.Name, err)
			}
		}
		skipped := 0
		for _, c := range data.CheckIns {
			if err := repo.AppendCheckIn(c); err != nil {
				skipped++
			}
		}
		for _, g := range data.Goals {
			if err := repo.CreateGoal(g); err != nil {
				return fmt.Errorf("import failed on goal %s: %w", g.Title, err)
			}
		}
		for _, inc := range data.Increments {
			if err := repo.AppendProgress(inc); err != nil {
				return fmt.Errorf("import failed on progress entry: %w", err)
			}
		}
		for _, u := range data.Unlocks {
			if err := repo.RecordUnlock(u); err != nil {
				return fmt.Errorf("import failed on achievement unlock: %w", err)
			}
		}

		color.Green("✓ Imported %d habits, %d check-ins, %d goals",
			len(data.Habits), len(data.CheckIns), len(data.Goals))
		if skipped > 0 {
			fmt.Printf("  Skipped %d duplicate check-ins\n", skipped)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
