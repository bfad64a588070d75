package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukaan-pos/dukaan/app/cachestore"
	"github.com/dukaan-pos/dukaan/app/repositories"
	"github.com/dukaan-pos/dukaan/app/services"
	"github.com/dukaan-pos/dukaan/config"
	"github.com/dukaan-pos/dukaan/internal/daemon"
)

var syncFull bool

// dukaan sync — manual refresh of the local cache.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the local cache from the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		db, err := daemon.OpenRemote()
		if err != nil {
			return fmt.Errorf("remote store unreachable: %w", err)
		}

		cache, err := cachestore.Open(config.CachePath())
		if err != nil {
			return err
		}
		defer cache.Close()

		engine := services.NewSyncEngine(repositories.NewCatalog(db), cache)

		var report services.SyncReport
		if syncFull {
			report = engine.SyncAll(cmd.Context())
		} else {
			report = engine.SyncIncremental(cmd.Context(), time.Time{})
		}

		printReport(report)
		if !report.OK() && !report.Partial() {
			return fmt.Errorf("sync failed for every entity")
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "replace every table instead of syncing incrementally")
}

func printReport(report services.SyncReport) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ENTITY\tMODE\tROWS\tSKIPPED\tRESULT")
	fmt.Fprintln(w, "------\t----\t----\t-------\t------")
	for _, o := range report.Outcomes {
		mode := "incremental"
		if o.Full {
			mode = "full"
		}
		result := "ok"
		if o.Err != nil {
			result = o.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", o.Entity, mode, o.Rows, o.Skipped, result)
	}
	w.Flush()
}
