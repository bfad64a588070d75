// Package cachestore owns the embedded database that mirrors the
// source-of-truth catalog for offline reads.
//
// The store is a sqlite file in WAL mode: POS search keeps reading the
// previous snapshot while a sync transaction writes the next one. Rows here
// are always a (possibly stale) projection of the remote store — the cache
// never originates data, so every write path is keyed by the remote id.
package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dukaan-pos/dukaan/app/models"
	"github.com/dukaan-pos/dukaan/pkg/database"
	"github.com/dukaan-pos/dukaan/pkg/logger"
)

// ErrNotFound is returned by point lookups that match nothing.
var ErrNotFound = errors.New("cachestore: not found")

// StorageFault wraps a local I/O or constraint failure. A fault on one row
// skips that row and never aborts the batch it arrived in.
type StorageFault struct {
	Op  string
	Err error
}

func (f *StorageFault) Error() string { return fmt.Sprintf("cachestore: %s: %v", f.Op, f.Err) }
func (f *StorageFault) Unwrap() error { return f.Err }

// Store is the local cache handle. Construct with Open and inject it;
// there is no package-level instance.
type Store struct {
	db   *gorm.DB
	path string
}

// mirrored is every table the cache owns, parents before dependents.
func mirrored() []interface{} {
	return []interface{}{
		&models.Batch{}, &models.Brand{}, &models.Category{}, &models.Unit{},
		&models.Status{}, &models.PaymentType{}, &models.Company{},
		&models.Customer{}, &models.Supplier{}, &models.User{}, &models.Counter{},
		&models.Product{}, &models.ProductVariation{}, &models.StockLot{},
		&models.SyncState{},
	}
}

// Open opens (or creates) the cache file at path, switches it to WAL mode
// and migrates the mirror schema.
func Open(path string) (*Store, error) {
	db, err := database.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cachestore: %w", err)
	}

	// WAL keeps readers on the old snapshot while a sync writes the new
	// one; the busy timeout bounds writer contention instead of erroring.
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("cachestore: enable WAL: %w", err)
	}
	if err := db.Exec("PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, fmt.Errorf("cachestore: busy timeout: %w", err)
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		return nil, fmt.Errorf("cachestore: synchronous: %w", err)
	}

	if err := db.AutoMigrate(mirrored()...); err != nil {
		return nil, fmt.Errorf("cachestore: migrate: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// DB exposes the underlying handle for read-only query composition.
func (s *Store) DB() *gorm.DB { return s.db }

// Path is the cache database file location.
func (s *Store) Path() string { return s.path }

// SnapshotTo writes a consistent copy of the cache to dest via VACUUM INTO.
// Safe to run while readers and the sync engine are active.
func (s *Store) SnapshotTo(ctx context.Context, dest string) error {
	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return &StorageFault{Op: "snapshot", Err: err}
	}
	return nil
}

// Close releases the underlying sqlite handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ── Writes ────────────────────────────────────────────────────────────────────

// Upsert inserts or replaces one row by primary key. Idempotent: applying
// the same remote row twice leaves the table unchanged.
func Upsert[T any](s *Store, row T) error {
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return &StorageFault{Op: "upsert", Err: err}
	}
	return nil
}

// UpsertAll applies rows one by one. A constraint violation (for example a
// duplicate barcode arriving from a bad source row) drops that row with a
// warning and moves on — per-row faults never abort the batch.
func UpsertAll[T any](s *Store, rows []T) (applied, skipped int) {
	for _, row := range rows {
		if err := Upsert(s, row); err != nil {
			skipped++
			logger.Warn("cachestore: dropping row", "error", err)
			continue
		}
		applied++
	}
	return applied, skipped
}

// BulkReplace transactionally clears and repopulates the table for T.
// All-or-nothing: a failure mid-replace leaves the previous snapshot
// intact, and a concurrent reader sees either the old snapshot or the new
// one, never a mix.
func BulkReplace[T any](s *Store, rows []T) error {
	var zero T
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&zero).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return &StorageFault{Op: "bulk replace", Err: err}
	}
	return nil
}

// Count returns the number of cached rows for T.
func Count[T any](s *Store) (int64, error) {
	var zero T
	var n int64
	if err := s.db.Model(&zero).Count(&n).Error; err != nil {
		return 0, &StorageFault{Op: "count", Err: err}
	}
	return n, nil
}

// ── POS lookups ───────────────────────────────────────────────────────────────
// Equality and prefix lookups back the scan/search path; each hits a
// dedicated index so an in-flight sync never makes the till feel slow.

// VariationByBarcode resolves an exact scanner read.
func (s *Store) VariationByBarcode(barcode string) (models.ProductVariation, error) {
	var v models.ProductVariation
	err := s.db.Where("barcode = ?", barcode).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, &StorageFault{Op: "variation by barcode", Err: err}
	}
	return v, nil
}

// SearchProductsByCode matches product codes by prefix, for manual entry.
func (s *Store) SearchProductsByCode(prefix string, limit int) ([]models.Product, error) {
	var out []models.Product
	err := s.db.Where("code LIKE ?", prefix+"%").Order("code").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, &StorageFault{Op: "search products", Err: err}
	}
	return out, nil
}

// SearchVariationsByBarcode matches barcodes by prefix, for partial scans.
func (s *Store) SearchVariationsByBarcode(prefix string, limit int) ([]models.ProductVariation, error) {
	var out []models.ProductVariation
	err := s.db.Where("barcode LIKE ?", prefix+"%").Order("barcode").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, &StorageFault{Op: "search variations", Err: err}
	}
	return out, nil
}

// LotsForVariation returns the priced stock lots of one variation.
func (s *Store) LotsForVariation(variationID uint) ([]models.StockLot, error) {
	var out []models.StockLot
	err := s.db.Where("variation_id = ?", variationID).Find(&out).Error
	if err != nil {
		return nil, &StorageFault{Op: "lots for variation", Err: err}
	}
	return out, nil
}

// CustomersByContact looks customers up by phone-number prefix.
func (s *Store) CustomersByContact(prefix string, limit int) ([]models.Customer, error) {
	var out []models.Customer
	err := s.db.Where("contact LIKE ?", prefix+"%").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, &StorageFault{Op: "customers by contact", Err: err}
	}
	return out, nil
}

// SuppliersByContact looks suppliers up by phone-number prefix.
func (s *Store) SuppliersByContact(prefix string, limit int) ([]models.Supplier, error) {
	var out []models.Supplier
	err := s.db.Where("contact LIKE ?", prefix+"%").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, &StorageFault{Op: "suppliers by contact", Err: err}
	}
	return out, nil
}

// ForEach streams the full table for T in restartable batches, for scan
// paths that must not hold the whole catalog in memory.
func ForEach[T any](s *Store, batchSize int, fn func(batch []T) error) error {
	var rows []T
	result := s.db.FindInBatches(&rows, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(rows)
	})
	if result.Error != nil {
		return &StorageFault{Op: "scan", Err: result.Error}
	}
	return nil
}

// ── Watermarks ────────────────────────────────────────────────────────────────

// Watermark returns the last successful incremental sync time for entity.
// ok is false when the entity has never synced.
func (s *Store) Watermark(entity string) (ts time.Time, ok bool, err error) {
	var state models.SyncState
	e := s.db.Where("entity = ?", entity).First(&state).Error
	if errors.Is(e, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if e != nil {
		return time.Time{}, false, &StorageFault{Op: "watermark", Err: e}
	}
	return state.Watermark, true, nil
}

// SetWatermark records ts as the last successful sync time for entity.
func (s *Store) SetWatermark(entity string, ts time.Time) error {
	state := models.SyncState{Entity: entity, Watermark: ts}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&state).Error
	if err != nil {
		return &StorageFault{Op: "set watermark", Err: err}
	}
	return nil
}
