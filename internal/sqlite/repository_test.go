package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/imgstash/internal/files"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func record(name string, size int64, uploadedAt time.Time) *files.FileRecord {
	return &files.FileRecord{
		Name:        name,
		StoragePath: "/data/" + name,
		SizeBytes:   size,
		UploadedAt:  uploadedAt,
	}
}

func TestSaveAndFindByName(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Save(ctx, record("photo.jpg", 1024, now)))

	found, err := repo.FindByName(ctx, "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", found.Name)
	assert.Equal(t, "/data/photo.jpg", found.StoragePath)
	assert.Equal(t, int64(1024), found.SizeBytes)
	assert.WithinDuration(t, now, found.UploadedAt, time.Second)
}

func TestFindByNameMissing(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.FindByName(context.Background(), "nope.jpg")
	assert.ErrorIs(t, err, files.ErrNotFound)
}

func TestSaveReplacesExistingRecord(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Save(ctx, record("photo.jpg", 1024, now)))
	require.NoError(t, repo.Save(ctx, record("photo.jpg", 2048, now.Add(time.Minute))))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2048), all[0].SizeBytes)
}

func TestFindAllOrdersNewestFirst(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Save(ctx, record("older.jpg", 1, now.Add(-time.Hour))))
	require.NoError(t, repo.Save(ctx, record("newer.jpg", 2, now)))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer.jpg", all[0].Name)
	assert.Equal(t, "older.jpg", all[1].Name)
}

func TestFindAllEmpty(t *testing.T) {
	repo := setupRepo(t)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, record("photo.jpg", 1024, time.Now().UTC())))
	require.NoError(t, repo.Delete(ctx, "photo.jpg"))

	_, err := repo.FindByName(ctx, "photo.jpg")
	assert.ErrorIs(t, err, files.ErrNotFound)
}

func TestDeleteMissing(t *testing.T) {
	repo := setupRepo(t)

	err := repo.Delete(context.Background(), "nope.jpg")
	assert.ErrorIs(t, err, files.ErrNotFound)
}
