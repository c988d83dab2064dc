package snapshot_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vendsync/core/snapshot"
	"vendsync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleResult() *snapshot.ScanResult {
	return &snapshot.ScanResult{
		SearchDate:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TotalSearched: 2,
		Found: map[string]snapshot.MatchEntry{
			"P001": {
				Page:     3,
				Position: 14,
				Product: snapshot.ProductData{
					ID:        42,
					Title:     "Chair",
					Reference: "P001",
					Price:     decimal.RequireFromString("19.90"),
					Stock:     5,
				},
			},
		},
		NotFound:     []string{"P002"},
		PagesScanned: 3,
	}
}

func TestFileStoreRoundtrip(t *testing.T) {
	store, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "default", sampleResult()))

	loaded, err := store.Load(ctx, "default")
	require.NoError(t, err)

	assert.Equal(t, 2, loaded.TotalSearched)
	require.Contains(t, loaded.Found, "P001")
	assert.Equal(t, 3, loaded.Found["P001"].Page)
	assert.Equal(t, 14, loaded.Found["P001"].Position)
	assert.True(t, loaded.Found["P001"].Product.Price.Equal(decimal.RequireFromString("19.90")))
	assert.Equal(t, []string{"P002"}, loaded.NotFound)
}

func TestFileStoreMissingYieldsEmpty(t *testing.T) {
	store, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)

	loaded, err := store.Load(context.Background(), "nope")
	require.NoError(t, err)

	assert.True(t, loaded.IsEmpty())
	assert.NotNil(t, loaded.Found)
	assert.NotNil(t, loaded.NotFound)
}

func TestFileStoreCorruptYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := snapshot.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.json"), []byte("{not json"), 0o644))

	loaded, err := store.Load(context.Background(), "default")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := snapshot.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "default", sampleResult()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "default.json", entries[0].Name())
}

func TestFileStoreDelete(t *testing.T) {
	store, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "default", sampleResult()))
	require.NoError(t, store.Delete(ctx, "default"))

	loaded, err := store.Load(ctx, "default")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "default"))
}

func TestObjectStoreCreatesMissingBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "snaps", mock.Anything).Return(nil)

	_, err := snapshot.NewObjectStore(context.Background(), client, "snaps")
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestObjectStoreRoundtrip(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(true, nil)

	var uploaded []byte
	client.On("PutObject", mock.Anything, "snaps", "snapshots/default.json",
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			uploaded = data
		}).
		Return(minio.UploadInfo{}, nil)

	ctx := context.Background()
	store, err := snapshot.NewObjectStore(ctx, client, "snaps")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "default", sampleResult()))
	require.NotEmpty(t, uploaded)

	client.On("GetObject", mock.Anything, "snaps", "snapshots/default.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(uploaded)), nil)

	loaded, err := store.Load(ctx, "default")
	require.NoError(t, err)
	assert.Contains(t, loaded.Found, "P001")
	assert.Equal(t, []string{"P002"}, loaded.NotFound)
}

func TestObjectStoreLoadErrorYieldsEmpty(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(true, nil)
	client.On("GetObject", mock.Anything, "snaps", "snapshots/default.json", mock.Anything).
		Return(nil, errors.New("object not found"))

	ctx := context.Background()
	store, err := snapshot.NewObjectStore(ctx, client, "snaps")
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "default")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestObjectStoreDelete(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(true, nil)
	client.On("RemoveObject", mock.Anything, "snaps", "snapshots/default.json", mock.Anything).
		Return(nil)

	ctx := context.Background()
	store, err := snapshot.NewObjectStore(ctx, client, "snaps")
	require.NoError(t, err)

	assert.NoError(t, store.Delete(ctx, "default"))
	client.AssertExpectations(t)
}
