// Package services holds the offline-resilience engines: remote→cache sync,
// backup production and backup retention.
package services

import (
	"context"
	"time"

	"github.com/dukaan-pos/dukaan/app/cachestore"
	"github.com/dukaan-pos/dukaan/app/models"
	"github.com/dukaan-pos/dukaan/app/repositories"
	"github.com/dukaan-pos/dukaan/pkg/collection"
	"github.com/dukaan-pos/dukaan/pkg/logger"
)

// EntityOutcome is the result of syncing one mirrored entity type.
type EntityOutcome struct {
	Entity   string
	Rows     int           // rows written to the cache
	Skipped  int           // rows dropped on constraint faults
	Full     bool          // whole-table replace vs incremental upserts
	Duration time.Duration
	Err      error
}

func (o EntityOutcome) OK() bool { return o.Err == nil }

// SyncReport is the structured outcome of one sync pass. A partial sync —
// some entities failed while others landed — is reported here, not raised
// as an error: the entities that succeeded are already serving reads.
type SyncReport struct {
	StartedAt time.Time
	Outcomes  []EntityOutcome
}

// OK reports whether every entity synced.
func (r SyncReport) OK() bool {
	for _, o := range r.Outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}

// Partial reports whether the pass mixed successes and failures.
func (r SyncReport) Partial() bool {
	var ok, failed bool
	for _, o := range r.Outcomes {
		if o.OK() {
			ok = true
		} else {
			failed = true
		}
	}
	return ok && failed
}

// Failed lists the entity names that did not sync.
func (r SyncReport) Failed() []string {
	failed := collection.Filter(r.Outcomes, func(o EntityOutcome) bool { return !o.OK() })
	return collection.Map(failed, func(o EntityOutcome) string { return o.Entity })
}

// entityTask binds one mirrored entity type to its fetch/write strategies.
type entityTask struct {
	name string
	// full fetches everything and replaces the table atomically.
	full func(ctx context.Context) (rows, skipped int, err error)
	// incremental upserts rows changed since the watermark. supported is
	// false when the remote schema cannot filter this entity by timestamp.
	incremental func(ctx context.Context, since time.Time) (rows, skipped int, supported bool, err error)
}

// SyncEngine keeps the local cache close to the remote store without ever
// blocking POS reads. Parent entities are ordered before dependents so a
// mid-sync query rarely sees a dangling reference; when it does, the row is
// upserted anyway — reference integrity in the cache is advisory.
type SyncEngine struct {
	cache *cachestore.Store
	tasks []entityTask
}

func NewSyncEngine(src *repositories.Catalog, cache *cachestore.Store) *SyncEngine {
	return &SyncEngine{
		cache: cache,
		tasks: []entityTask{
			entity[models.Batch]("batches", src, cache),
			entity[models.Brand]("brands", src, cache),
			entity[models.Category]("categories", src, cache),
			entity[models.Unit]("units", src, cache),
			entity[models.Status]("statuses", src, cache),
			entity[models.PaymentType]("payment_types", src, cache),
			entity[models.Company]("companies", src, cache),
			entity[models.Customer]("customers", src, cache),
			entity[models.Supplier]("suppliers", src, cache),
			entity[models.User]("users", src, cache),
			entity[models.Counter]("counters", src, cache),
			entity[models.Product]("products", src, cache),
			entity[models.ProductVariation]("product_variations", src, cache),
			entity[models.StockLot]("stock_lots", src, cache),
		},
	}
}

func entity[T any](name string, src *repositories.Catalog, cache *cachestore.Store) entityTask {
	return entityTask{
		name: name,
		full: func(ctx context.Context) (int, int, error) {
			rows, err := repositories.FetchAll[T](ctx, src)
			if err != nil {
				return 0, 0, err
			}
			if err := cachestore.BulkReplace(cache, rows); err != nil {
				return 0, 0, err
			}
			return len(rows), 0, nil
		},
		incremental: func(ctx context.Context, since time.Time) (int, int, bool, error) {
			rows, supported, err := repositories.FetchChangedSince[T](ctx, src, since)
			if err != nil || !supported {
				return 0, 0, supported, err
			}
			applied, skipped := cachestore.UpsertAll(cache, rows)
			return applied, skipped, true, nil
		},
	}
}

// SyncAll fetches every mirrored entity whole and replaces each table.
// Used on first run and manual refresh. A failure on one entity type is
// logged and does not abort the rest — partial sync beats no sync.
func (e *SyncEngine) SyncAll(ctx context.Context) SyncReport {
	report := SyncReport{StartedAt: time.Now()}
	for _, t := range e.tasks {
		report.Outcomes = append(report.Outcomes, e.runFull(ctx, t, report.StartedAt))
	}
	return report
}

// SyncIncremental fetches only rows changed after the watermark and upserts
// them. A zero since uses each entity's persisted watermark. Entities that
// cannot filter by timestamp, or that have never synced, fall back to a
// full replace.
func (e *SyncEngine) SyncIncremental(ctx context.Context, since time.Time) SyncReport {
	report := SyncReport{StartedAt: time.Now()}

	for _, t := range e.tasks {
		from := since
		if from.IsZero() {
			wm, ok, err := e.cache.Watermark(t.name)
			if err != nil || !ok {
				report.Outcomes = append(report.Outcomes, e.runFull(ctx, t, report.StartedAt))
				continue
			}
			from = wm
		}

		began := time.Now()
		rows, skipped, supported, err := t.incremental(ctx, from)
		if !supported && err == nil {
			report.Outcomes = append(report.Outcomes, e.runFull(ctx, t, report.StartedAt))
			continue
		}

		out := EntityOutcome{Entity: t.name, Rows: rows, Skipped: skipped, Duration: time.Since(began), Err: err}
		if err == nil {
			e.advanceWatermark(t.name, report.StartedAt)
			logger.Debug("sync: incremental", "entity", t.name, "rows", rows, "skipped", skipped)
		} else {
			logger.Warn("sync: entity failed, cache keeps prior snapshot", "entity", t.name, "error", err)
		}
		report.Outcomes = append(report.Outcomes, out)
	}
	return report
}

func (e *SyncEngine) runFull(ctx context.Context, t entityTask, startedAt time.Time) EntityOutcome {
	began := time.Now()
	rows, skipped, err := t.full(ctx)
	out := EntityOutcome{Entity: t.name, Rows: rows, Skipped: skipped, Full: true, Duration: time.Since(began), Err: err}
	if err == nil {
		e.advanceWatermark(t.name, startedAt)
		logger.Debug("sync: full replace", "entity", t.name, "rows", rows)
	} else {
		logger.Warn("sync: entity failed, cache keeps prior snapshot", "entity", t.name, "error", err)
	}
	return out
}

// advanceWatermark records the pass start time, not the finish time, so
// rows changing while the fetch ran are picked up again next pass.
func (e *SyncEngine) advanceWatermark(entityName string, startedAt time.Time) {
	if err := e.cache.SetWatermark(entityName, startedAt); err != nil {
		logger.Warn("sync: could not persist watermark", "entity", entityName, "error", err)
	}
}
