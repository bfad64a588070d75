package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaan-pos/dukaan/app/cachestore"
	"github.com/dukaan-pos/dukaan/app/jobs"
	"github.com/dukaan-pos/dukaan/app/services"
	"github.com/dukaan-pos/dukaan/config"
	"github.com/dukaan-pos/dukaan/pkg/event"
	"github.com/dukaan-pos/dukaan/pkg/storage"
)

// dukaan backup — operator-initiated backup, identical semantics to the
// nightly job: create one artifact, then prune to the retention count.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a backup of the local cache and prune old artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		cache, err := cachestore.Open(config.CachePath())
		if err != nil {
			return err
		}
		defer cache.Close()

		disk := storage.NewLocal(config.BackupDir())
		producer := services.NewCacheFileProducer(cache, config.BackupDir())
		retention := services.NewRetentionPolicy(disk, config.BackupRetention())
		job := jobs.NewBackupJob(producer, retention, disk, nil)

		runner := jobs.NewRunner(event.NewBus())
		if err := runner.Dispatch(cmd.Context(), job); err != nil {
			return err
		}
		fmt.Printf("Backup written to %s (keeping newest %d)\n", config.BackupDir(), config.BackupRetention())
		return nil
	},
}

// dukaan restore <file> — copy a backup artifact over the local cache.
var restoreCmd = &cobra.Command{
	Use:   "restore <artifact>",
	Short: "Restore the local cache from a backup artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		cache, err := cachestore.Open(config.CachePath())
		if err != nil {
			return err
		}
		producer := services.NewCacheFileProducer(cache, config.BackupDir())

		// The store must not hold the file while it is overwritten.
		if err := cache.Close(); err != nil {
			return err
		}
		if err := producer.RestoreBackup(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Cache restored from %s\n", args[0])
		return nil
	},
}
