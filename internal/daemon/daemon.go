// Package daemon wires the offline-resilience service together: cache,
// remote store, scheduler, jobs and the status event bus. Everything is
// constructed here and injected — no package holds a process-wide instance.
package daemon

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dukaan-pos/dukaan/app/cachestore"
	"github.com/dukaan-pos/dukaan/app/jobs"
	"github.com/dukaan-pos/dukaan/app/repositories"
	"github.com/dukaan-pos/dukaan/app/services"
	"github.com/dukaan-pos/dukaan/config"
	"github.com/dukaan-pos/dukaan/pkg/database"
	"github.com/dukaan-pos/dukaan/pkg/event"
	"github.com/dukaan-pos/dukaan/pkg/logger"
	"github.com/dukaan-pos/dukaan/pkg/schedule"
	"github.com/dukaan-pos/dukaan/pkg/storage"
)

// remoteRetryInterval paces reconnect attempts while the remote store is
// unreachable at boot. Once a pool is established, database/sql reconnects
// on its own after transient losses.
const remoteRetryInterval = 30 * time.Second

// Run starts the resilience daemon and blocks until ctx is cancelled.
func Run(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("daemon: load config: %w", err)
	}

	if uri := config.LogMongoURI(); uri != "" {
		mh, err := logger.EnableMongoShipping(uri, config.LogMongoDB(), config.LogMongoCollection())
		if err != nil {
			// Shipping is best-effort; stdout logging continues either way.
			logger.Warn("daemon: log shipping disabled", "error", err)
		} else {
			defer mh.Close()
		}
	}

	loc, err := time.LoadLocation(config.Timezone())
	if err != nil {
		return fmt.Errorf("daemon: unknown timezone %q: %w", config.Timezone(), err)
	}

	// Every expression is validated before the scheduler starts; a
	// malformed schedule must fail boot, not a 17:00 firing.
	syncExpr := fmt.Sprintf("0 */%d * * * *", config.SyncIntervalMinutes())
	for _, expr := range []string{config.BackupSchedule(), config.SessionCloseSchedule(), syncExpr} {
		if err := schedule.Validate(expr); err != nil {
			return fmt.Errorf("daemon: %w", err)
		}
	}

	cache, err := cachestore.Open(config.CachePath())
	if err != nil {
		return fmt.Errorf("daemon: open cache: %w", err)
	}
	defer cache.Close()

	bus := event.NewBus()
	runner := jobs.NewRunner(bus)
	sched := schedule.New(loc)

	// Backup needs only the cache, so it is live even with the store link
	// down on boot.
	backupDisk := storage.NewLocal(config.BackupDir())
	producer := services.NewCacheFileProducer(cache, config.BackupDir())
	retention := services.NewRetentionPolicy(backupDisk, config.BackupRetention())
	backupJob := jobs.NewBackupJob(producer, retention, backupDisk, offsiteDisk())

	if _, err := sched.Schedule(config.BackupSchedule(), runner.Task(backupJob), schedule.WithName(backupJob.Name())); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}

	sched.Start(ctx)
	defer sched.Stop()

	// The remote-backed jobs come up as soon as the source-of-truth store
	// answers; until then the POS serves the last cached snapshot.
	go func() {
		db := connectRemote(ctx)
		if db == nil {
			return
		}

		engine := services.NewSyncEngine(repositories.NewCatalog(db), cache)
		syncJob := jobs.NewSyncJob(engine)
		closureJob := jobs.NewSessionClosureJob(repositories.NewSessions(db))

		if _, err := sched.Schedule(syncExpr, runner.Task(syncJob), schedule.WithName(syncJob.Name())); err != nil {
			logger.Error("daemon: register sync job", "error", err)
		}
		if _, err := sched.Schedule(config.SessionCloseSchedule(), runner.Task(closureJob), schedule.WithName(closureJob.Name())); err != nil {
			logger.Error("daemon: register session closure job", "error", err)
		}

		// Prime the cache immediately rather than waiting a full cadence.
		_ = runner.Dispatch(ctx, syncJob)
	}()

	logger.Info("daemon: running",
		"cache", config.CachePath(),
		"backup_schedule", config.BackupSchedule(),
		"closure_schedule", config.SessionCloseSchedule(),
		"timezone", config.Timezone())

	<-ctx.Done()
	logger.Info("daemon: shutting down")
	return nil
}

// offsiteDisk builds the S3 replica target when a bucket is configured.
func offsiteDisk() storage.Disk {
	if config.S3Bucket() == "" {
		return nil
	}
	d, err := storage.NewS3(storage.S3Config{
		Bucket:   config.S3Bucket(),
		Region:   config.S3Region(),
		Key:      config.S3Key(),
		Secret:   config.S3Secret(),
		Endpoint: config.S3Endpoint(),
	})
	if err != nil {
		logger.Warn("daemon: offsite backups disabled", "error", err)
		return nil
	}
	return d
}

// connectRemote dials the source-of-truth store until it answers or ctx
// ends. Returns nil only on cancellation.
func connectRemote(ctx context.Context) *gorm.DB {
	for {
		db, err := database.Open(config.RemoteDriver(), config.RemoteDSN())
		if err == nil {
			logger.Info("daemon: remote store connected", "driver", config.RemoteDriver())
			return db
		}
		logger.Warn("daemon: remote store unreachable, serving cached data", "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(remoteRetryInterval):
		}
	}
}

// OpenRemote is the one-shot variant the CLI commands use: they would
// rather report "store unreachable" than sit in a retry loop.
func OpenRemote() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Open(config.RemoteDriver(), config.RemoteDSN())
}
