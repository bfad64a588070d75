package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dukaan-pos/dukaan/app/cachestore"
)

// Artifact describes one backup file as reported to operators and consumed
// by the retention policy.
type Artifact struct {
	Filename  string
	CreatedAt time.Time
	SizeBytes int64
}

// BackupProducer creates and restores backup artifacts. The production
// deployment may plug in an external producer; CacheFileProducer below is
// the built-in one.
type BackupProducer interface {
	CreateBackup(ctx context.Context) (Artifact, error)
	RestoreBackup(ctx context.Context, filename string) error
}

// CacheFileProducer snapshots the embedded cache database into the backup
// directory using sqlite's VACUUM INTO, which yields a consistent copy even
// while readers and the sync engine are active.
type CacheFileProducer struct {
	cache *cachestore.Store
	dir   string
}

func NewCacheFileProducer(cache *cachestore.Store, dir string) *CacheFileProducer {
	return &CacheFileProducer{cache: cache, dir: dir}
}

// CreateBackup writes one timestamped artifact and reports its metadata.
func (p *CacheFileProducer) CreateBackup(ctx context.Context) (Artifact, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("backup: mkdir %s: %w", p.dir, err)
	}

	name := fmt.Sprintf("dukaan-%s.db", time.Now().Format("20060102-150405"))
	full := filepath.Join(p.dir, name)

	if err := p.cache.SnapshotTo(ctx, full); err != nil {
		return Artifact{}, fmt.Errorf("backup: snapshot: %w", err)
	}

	info, err := os.Stat(full)
	if err != nil {
		return Artifact{}, fmt.Errorf("backup: stat %s: %w", name, err)
	}

	return Artifact{Filename: name, CreatedAt: info.ModTime(), SizeBytes: info.Size()}, nil
}

// RestoreBackup copies the named artifact over the live cache file. The
// caller must have closed the store first.
func (p *CacheFileProducer) RestoreBackup(ctx context.Context, filename string) error {
	src, err := os.Open(filepath.Join(p.dir, filename))
	if err != nil {
		return fmt.Errorf("backup: open artifact %s: %w", filename, err)
	}
	defer src.Close()

	dst, err := os.Create(p.cache.Path())
	if err != nil {
		return fmt.Errorf("backup: open cache file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("backup: restore %s: %w", filename, err)
	}
	return nil
}
