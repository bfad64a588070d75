package services_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaan-pos/dukaan/app/cachestore"
	"github.com/dukaan-pos/dukaan/app/models"
	"github.com/dukaan-pos/dukaan/app/services"
)

func TestCreateBackupReportsArtifactMetadata(t *testing.T) {
	cache := openCache(t)
	require.NoError(t, cachestore.Upsert(cache, models.Product{ID: 1, Name: "Tea", Code: "TEA-1"}))

	dir := t.TempDir()
	producer := services.NewCacheFileProducer(cache, dir)

	artifact, err := producer.CreateBackup(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(artifact.Filename, "dukaan-"))
	assert.True(t, strings.HasSuffix(artifact.Filename, ".db"))
	assert.Positive(t, artifact.SizeBytes)
	assert.FileExists(t, filepath.Join(dir, artifact.Filename))
}

func TestRestoreBackupBringsDataBack(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.db")
	cache, err := cachestore.Open(cachePath)
	require.NoError(t, err)
	require.NoError(t, cachestore.Upsert(cache, models.Product{ID: 1, Name: "Tea", Code: "TEA-1"}))

	dir := t.TempDir()
	producer := services.NewCacheFileProducer(cache, dir)
	artifact, err := producer.CreateBackup(context.Background())
	require.NoError(t, err)

	// Lose the live data after the backup was taken.
	require.NoError(t, cachestore.BulkReplace(cache, []models.Product{}))
	n, err := cachestore.Count[models.Product](cache)
	require.NoError(t, err)
	require.Zero(t, n)

	// The store must not hold the file during the restore.
	require.NoError(t, cache.Close())
	require.NoError(t, producer.RestoreBackup(context.Background(), artifact.Filename))

	reopened, err := cachestore.Open(cachePath)
	require.NoError(t, err)
	defer reopened.Close()

	n, err = cachestore.Count[models.Product](reopened)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
