package services

import (
	"fmt"
	"path"
	"time"

	"github.com/dukaan-pos/dukaan/pkg/collection"
	"github.com/dukaan-pos/dukaan/pkg/logger"
	"github.com/dukaan-pos/dukaan/pkg/storage"
)

// Pruned reports one retention pass: how many deletes were attempted and
// how many landed. A failed delete is logged and counted, never fatal.
type Pruned struct {
	Kept      int
	Attempted int
	Deleted   int
}

// RetentionPolicy deletes every backup artifact beyond the newest N on a
// disk. It runs right after each backup and from the manual trigger path
// with identical semantics.
type RetentionPolicy struct {
	disk storage.Disk
	keep int
}

func NewRetentionPolicy(disk storage.Disk, keep int) *RetentionPolicy {
	if keep < 1 {
		keep = 1
	}
	return &RetentionPolicy{disk: disk, keep: keep}
}

type artifactRef struct {
	name    string
	modTime time.Time
}

// Apply prunes the disk root down to the newest keep artifacts.
// justCreated names the artifact produced in this same invocation; it is
// never deleted regardless of how its timestamp sorts.
func (p *RetentionPolicy) Apply(justCreated string) (Pruned, error) {
	files, err := p.disk.Files("")
	if err != nil {
		return Pruned{}, fmt.Errorf("retention: list artifacts: %w", err)
	}

	refs := make([]artifactRef, 0, len(files))
	for _, f := range files {
		mod, err := p.disk.LastModified(f)
		if err != nil {
			logger.Warn("retention: cannot stat artifact, leaving it", "file", f, "error", err)
			continue
		}
		refs = append(refs, artifactRef{name: f, modTime: mod})
	}

	collection.SortBy(refs, func(a, b artifactRef) bool { return a.modTime.After(b.modTime) })

	result := Pruned{}
	for i, ref := range refs {
		if i < p.keep || path.Base(ref.name) == path.Base(justCreated) {
			result.Kept++
			continue
		}
		result.Attempted++
		if err := p.disk.Delete(ref.name); err != nil {
			logger.Warn("retention: delete failed", "file", ref.name, "error", err)
			continue
		}
		result.Deleted++
	}

	logger.Info("retention: pruned backups",
		"kept", result.Kept, "deleted", result.Deleted, "attempted", result.Attempted)
	return result, nil
}
