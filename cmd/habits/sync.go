// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports link, unlink, status, and reset operations.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/habits/internal/charm"
)

// charmRepo returns the Charm-backed store, or nil when the configured
// backend is SQLite.
func charmRepo() *charm.Client {
	c, ok := repo.(*charm.Client)
	if !ok {
		return nil
	}
	return c
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync habit data across devices",
	Long: `Sync habit data across devices using Charm Cloud.

Your data is E2E encrypted with your SSH key before upload.
The server never sees your unencrypted habit data.

Sync requires the charm backend. Enable it with:

  habits config set backend charm

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     habits sync link

  2. On other devices, link with the same Charm account:
     habits sync link

  3. Check sync status:
     habits sync status

COMMANDS:

  link     Link this device to your Charm account
  unlink   Disconnect this device from Charm
  status   Show sync status and account info
  reset    Reset local data and restore from cloud (destructive)

Data syncs automatically after each write.`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.
If you already have an account, you'll be prompted to link via charm.sh.

Example:
  habits sync link`,
	RunE: func(cmd *cobra.Command, args []string) error {
		charmCmd := exec.Command("charm", "link")
		charmCmd.Stdin = os.Stdin
		charmCmd.Stdout = os.Stdout
		charmCmd.Stderr = os.Stderr

		if err := charmCmd.Run(); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		color.Green("\n✓ Device linked to Charm")
		fmt.Println("Your habit data will now sync automatically across devices.")

		if c := charmRepo(); c != nil {
			if err := c.Sync(); err != nil {
				color.Yellow("⚠ Initial sync failed: %v", err)
			} else {
				color.Green("✓ Initial sync complete")
			}
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete your local habit data.
You can link again later with 'habits sync link'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		charmCmd := exec.Command("charm", "unlink")
		charmCmd.Stdin = os.Stdin
		charmCmd.Stdout = os.Stdout
		charmCmd.Stderr = os.Stderr

		if err := charmCmd.Run(); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		color.Green("✓ Device unlinked from Charm")
		fmt.Println("Your local habit data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := charmRepo()
		if c == nil {
			color.Yellow("Sync is only available with the charm backend.")
			fmt.Println("\nEnable it with 'habits config set backend charm'.")
			return nil
		}

		id, err := c.ID()
		if err != nil {
			color.Yellow("Not linked to Charm")
			fmt.Println("\nRun 'habits sync link' to connect to Charm.")
			return nil
		}

		fmt.Println("Charm ID:", id)
		fmt.Println("Server: charm.2389.dev")
		fmt.Println()

		habits, _ := c.ListHabits(owner, false)
		goals, _ := c.ListGoals(owner)

		color.Green("✓ Connected to Charm")
		fmt.Printf("  Habits: %d\n", len(habits))
		fmt.Printf("  Goals: %d\n", len(goals))
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	Long: `Delete the local database and restore from the latest cloud copy.

This is a DESTRUCTIVE operation for local-only changes. Anything not yet
synced to Charm Cloud will be lost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := charmRepo()
		if c == nil {
			color.Yellow("Sync is only available with the charm backend.")
			return nil
		}

		fmt.Println("This will replace local data with the latest cloud copy.")
		fmt.Print("Type 'reset' to confirm: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "reset" {
			fmt.Println("Canceled.")
			return nil
		}

		if err := c.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		color.Green("✓ Local data restored from cloud")
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncResetCmd)
	rootCmd.AddCommand(syncCmd)
}
