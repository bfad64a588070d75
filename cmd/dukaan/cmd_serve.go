package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dukaan-pos/dukaan/config"
	"github.com/dukaan-pos/dukaan/internal/daemon"
)

// dukaan serve — run the resilience daemon.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the offline-resilience daemon (scheduler + sync)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return daemon.Run(ctx)
	},
}

// dukaan schedule:list — print the configured schedules.
var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "Show the configured job schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		rows := map[string]string{
			"backup":          config.BackupSchedule(),
			"session-closure": config.SessionCloseSchedule(),
			"catalog-sync":    fmt.Sprintf("every %d minutes", config.SyncIntervalMinutes()),
		}
		names := make([]string, 0, len(rows))
		for name := range rows {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "JOB\tSCHEDULE\tTIMEZONE")
		fmt.Fprintln(w, "---\t--------\t--------")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, rows[name], config.Timezone())
		}
		return w.Flush()
	},
}
