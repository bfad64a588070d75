// Package storage abstracts the filesystems backup artifacts live on.
//
// Two drivers are provided:
//   - local — a directory on the till's disk (where retention runs)
//   - s3    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces),
//     used to replicate fresh backups off-site when the link is up
//
// Drivers are constructed explicitly and injected:
//
//	disk := storage.NewLocal(cfg.BackupDir)
//	offsite, err := storage.NewS3(storage.S3Config{Bucket: "dukaan-backups"})
package storage

import (
	"io"
	"time"
)

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// GetStream returns a ReadCloser for the file. Caller must close it.
	GetStream(path string) (io.ReadCloser, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Size returns the byte size of the file.
	Size(path string) (int64, error)

	// LastModified returns the file's last-modified time.
	LastModified(path string) (time.Time, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// Files lists non-recursive filenames directly inside directory.
	Files(directory string) ([]string, error)

	// MakeDirectory creates directory (and any parents).
	MakeDirectory(path string) error
}
