package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filedrop-backend/models"
)

func TestLocalStorageRoundtrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	storagePath, err := s.Upload(ctx, "report final.pdf", strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(storagePath, "_report_final.pdf"))

	reader, err := s.Download(ctx, storagePath)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestLocalStorageCreatesBaseDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "uploads")

	_, err := NewLocalStorage(base)
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStorageUploadsGetDistinctPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	first, err := s.Upload(ctx, "a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := s.Upload(ctx, "a.txt", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalStorageDownloadMissing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Download(context.Background(), "ab/nope_a.txt")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLocalStorageDeleteIdempotent(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	storagePath, err := s.Upload(ctx, "a.txt", strings.NewReader("bytes"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, storagePath))

	_, err = s.Download(ctx, storagePath)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Second delete of the same path is not an error
	assert.NoError(t, s.Delete(ctx, storagePath))
}
