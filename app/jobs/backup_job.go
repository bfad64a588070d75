package jobs

import (
	"context"
	"path"

	"github.com/dukaan-pos/dukaan/pkg/logger"
	"github.com/dukaan-pos/dukaan/pkg/storage"

	"github.com/dukaan-pos/dukaan/app/services"
)

// BackupJob creates one backup artifact, prunes old ones, and — when an
// offsite disk is configured — replicates the fresh artifact off the till.
// The manual `dukaan backup` path dispatches this same job.
type BackupJob struct {
	producer  services.BackupProducer
	retention *services.RetentionPolicy
	local     storage.Disk
	offsite   storage.Disk // nil when no bucket is configured
}

func NewBackupJob(producer services.BackupProducer, retention *services.RetentionPolicy, local, offsite storage.Disk) *BackupJob {
	return &BackupJob{producer: producer, retention: retention, local: local, offsite: offsite}
}

func (j *BackupJob) Name() string { return "backup" }

func (j *BackupJob) Run(ctx context.Context) (Counts, error) {
	artifact, err := j.producer.CreateBackup(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("backup: artifact created",
		"job", j.Name(), "file", artifact.Filename, "size_bytes", artifact.SizeBytes)

	pruned, err := j.retention.Apply(artifact.Filename)
	if err != nil {
		// The artifact exists; a failed prune pass is a warning, not a
		// failed backup.
		logger.Warn("backup: retention pass failed", "job", j.Name(), "error", err)
	}

	counts := Counts{
		"size_bytes": int(artifact.SizeBytes),
		"kept":       pruned.Kept,
		"deleted":    pruned.Deleted,
	}

	if j.offsite != nil {
		if err := j.replicate(artifact.Filename); err != nil {
			// Fail-soft: the till may simply be offline right now.
			logger.Warn("backup: offsite replication failed", "job", j.Name(), "file", artifact.Filename, "error", err)
		} else {
			counts["replicated"] = 1
			logger.Info("backup: replicated offsite", "job", j.Name(), "file", artifact.Filename)
		}
	}

	return counts, nil
}

func (j *BackupJob) replicate(filename string) error {
	rc, err := j.local.GetStream(filename)
	if err != nil {
		return err
	}
	defer rc.Close()
	return j.offsite.PutStream(path.Base(filename), rc)
}
