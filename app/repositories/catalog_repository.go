// Package repositories is the narrow surface the sync engine and the
// scheduled jobs use to talk to the source-of-truth store. Everything takes
// a context with a deadline: the remote pool is shared and bounded, so a
// busy or unreachable store must produce a timeout, never an open-ended
// wait.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrRemoteUnavailable marks a failure to reach the source-of-truth store.
// Callers degrade to serving the last cached snapshot and retry on the next
// cadence — this error is never fatal to the process.
var ErrRemoteUnavailable = errors.New("repositories: remote store unavailable")

// remoteCallTimeout bounds every remote round trip, including the wait for
// a pooled connection.
const remoteCallTimeout = 30 * time.Second

// Catalog reads mirrored entities out of the remote store.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// FetchAll returns every remote row of T.
func FetchAll[T any](ctx context.Context, r *Catalog) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteCallTimeout)
	defer cancel()

	var rows []T
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: fetch all: %v", ErrRemoteUnavailable, err)
	}
	return rows, nil
}

// FetchChangedSince returns the rows of T changed after since. When the
// entity's schema carries no update timestamp, supported is false and the
// caller should fall back to a full fetch.
func FetchChangedSince[T any](ctx context.Context, r *Catalog, since time.Time) (rows []T, supported bool, err error) {
	if !hasUpdatedAt[T](r.db) {
		return nil, false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, remoteCallTimeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Where("updated_at > ?", since).Find(&rows).Error; err != nil {
		return nil, true, fmt.Errorf("%w: fetch changed: %v", ErrRemoteUnavailable, err)
	}
	return rows, true, nil
}

// hasUpdatedAt reports whether T's schema exposes an updated_at column.
func hasUpdatedAt[T any](db *gorm.DB) bool {
	var zero T
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&zero); err != nil {
		return false
	}
	_, ok := stmt.Schema.FieldsByDBName["updated_at"]
	return ok
}
