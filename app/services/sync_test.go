package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dukaan-pos/dukaan/app/cachestore"
	"github.com/dukaan-pos/dukaan/app/models"
	"github.com/dukaan-pos/dukaan/app/repositories"
	"github.com/dukaan-pos/dukaan/app/services"
	"github.com/dukaan-pos/dukaan/pkg/database"
)

// openRemoteFixture builds a sqlite stand-in for the source-of-truth store.
func openRemoteFixture(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "remote.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Batch{}, &models.Brand{}, &models.Category{}, &models.Unit{},
		&models.Status{}, &models.PaymentType{}, &models.Company{},
		&models.Customer{}, &models.Supplier{}, &models.User{}, &models.Counter{},
		&models.Product{}, &models.ProductVariation{}, &models.StockLot{},
	))
	return db
}

func openCache(t *testing.T) *cachestore.Store {
	t.Helper()
	cache, err := cachestore.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func outcomeFor(t *testing.T, report services.SyncReport, entity string) services.EntityOutcome {
	t.Helper()
	for _, o := range report.Outcomes {
		if o.Entity == entity {
			return o
		}
	}
	t.Fatalf("no outcome for entity %q", entity)
	return services.EntityOutcome{}
}

func TestSyncAllMirrorsEveryEntity(t *testing.T) {
	remote := openRemoteFixture(t)
	cache := openCache(t)

	require.NoError(t, remote.Create(&models.Category{ID: 1, Name: "Grocery"}).Error)
	require.NoError(t, remote.Create(&models.Product{ID: 1, Name: "Atta 10kg", Code: "ATTA-10", CategoryID: 1}).Error)
	require.NoError(t, remote.Create(&models.ProductVariation{ID: 1, ProductID: 1, Barcode: "8901"}).Error)
	require.NoError(t, remote.Create(&models.StockLot{ID: 1, VariationID: 1, Barcode: "8901", Quantity: 12, RetailPrice: 450}).Error)

	engine := services.NewSyncEngine(repositories.NewCatalog(remote), cache)
	report := engine.SyncAll(context.Background())

	require.True(t, report.OK(), "failed entities: %v", report.Failed())

	n, err := cachestore.Count[models.Product](cache)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	lots, err := cache.LotsForVariation(1)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	require.Equal(t, 12, lots[0].Quantity)
}

func TestSyncAllPartialFailureKeepsPriorSnapshot(t *testing.T) {
	remote := openRemoteFixture(t)
	cache := openCache(t)

	// Prior snapshot in the cache.
	require.NoError(t, cachestore.Upsert(cache, models.StockLot{ID: 99, VariationID: 7, Quantity: 3}))

	require.NoError(t, remote.Create(&models.Product{ID: 1, Name: "Atta 10kg", Code: "ATTA-10"}).Error)

	// Make fetching stock lots fail while products stay reachable.
	require.NoError(t, remote.Migrator().DropTable(&models.StockLot{}))

	engine := services.NewSyncEngine(repositories.NewCatalog(remote), cache)
	report := engine.SyncAll(context.Background())

	require.False(t, report.OK())
	require.True(t, report.Partial())
	require.Contains(t, report.Failed(), "stock_lots")

	require.NoError(t, outcomeFor(t, report, "products").Err)
	require.Error(t, outcomeFor(t, report, "stock_lots").Err)

	// Products reflect the new data.
	n, err := cachestore.Count[models.Product](cache)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Stock lots retain the prior snapshot.
	lots, err := cache.LotsForVariation(7)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	require.EqualValues(t, 99, lots[0].ID)
}

func TestSyncIncrementalUpsertsChangedRows(t *testing.T) {
	remote := openRemoteFixture(t)
	cache := openCache(t)

	require.NoError(t, remote.Create(&models.Product{ID: 1, Name: "Atta 10kg", Code: "ATTA-10"}).Error)
	require.NoError(t, remote.Create(&models.Product{ID: 2, Name: "Sugar 1kg", Code: "SUG-1"}).Error)

	engine := services.NewSyncEngine(repositories.NewCatalog(remote), cache)
	require.True(t, engine.SyncAll(context.Background()).OK())

	// Change one product and add another after the first pass.
	require.NoError(t, remote.Model(&models.Product{ID: 1}).Update("name", "Atta 10kg (new pack)").Error)
	require.NoError(t, remote.Create(&models.Product{ID: 3, Name: "Salt 1kg", Code: "SALT-1"}).Error)

	report := engine.SyncIncremental(context.Background(), time.Time{})
	require.True(t, report.OK(), "failed entities: %v", report.Failed())

	products := outcomeFor(t, report, "products")
	require.False(t, products.Full, "products should sync incrementally")

	n, err := cachestore.Count[models.Product](cache)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	got, err := cache.SearchProductsByCode("ATTA-10", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Atta 10kg (new pack)", got[0].Name)
}

func TestSyncIncrementalFallsBackForEntitiesWithoutTimestamps(t *testing.T) {
	remote := openRemoteFixture(t)
	cache := openCache(t)

	require.NoError(t, remote.Create(&models.Batch{ID: 1, Name: "B-2026-01"}).Error)

	engine := services.NewSyncEngine(repositories.NewCatalog(remote), cache)
	require.True(t, engine.SyncAll(context.Background()).OK())

	report := engine.SyncIncremental(context.Background(), time.Time{})
	require.True(t, report.OK())

	// Batches carry no update timestamp, so every pass replaces them whole.
	require.True(t, outcomeFor(t, report, "batches").Full)
}

func TestSyncIncrementalOnFreshCacheDoesFullReplace(t *testing.T) {
	remote := openRemoteFixture(t)
	cache := openCache(t)

	require.NoError(t, remote.Create(&models.Product{ID: 1, Name: "Atta 10kg", Code: "ATTA-10"}).Error)

	engine := services.NewSyncEngine(repositories.NewCatalog(remote), cache)
	report := engine.SyncIncremental(context.Background(), time.Time{})
	require.True(t, report.OK())

	// No watermark yet: first pass must be a full replace.
	require.True(t, outcomeFor(t, report, "products").Full)

	n, err := cachestore.Count[models.Product](cache)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
