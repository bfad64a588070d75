package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dukaan",
	Short: "dukaan — POS offline-resilience service",
	Long: "dukaan keeps a till working through network loss: it mirrors the " +
		"remote catalog into a local cache, takes nightly backups with " +
		"retention, and force-closes cash sessions left open at end of day.",
}

func init() {
	// Daemon
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleListCmd)

	// Sync
	rootCmd.AddCommand(syncCmd)

	// Backups
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)

	// Sessions
	rootCmd.AddCommand(sessionsCloseCmd)
}
