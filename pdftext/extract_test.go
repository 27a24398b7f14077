package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("Jane Doe CV.pdf"))
	assert.True(t, IsPDF("JOHN SMITH CV.PDF"))
	assert.False(t, IsPDF("notes.txt"))
	assert.False(t, IsPDF("pdf"))
}

func TestExtractDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a cv"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Broken CV.PDF"), []byte("garbage bytes"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	records, failures, err := ExtractDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Empty(t, records)
	require.Len(t, failures, 1)
	assert.Equal(t, "Broken CV.PDF", failures[0].File)
	assert.ErrorIs(t, failures[0].Err, ErrUnreadablePDF)
}

func TestExtractDir_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, _, err := ExtractDir(context.Background(), filepath.Join(t.TempDir(), "absent"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cv.pdf")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		_, _, err := ExtractDir(context.Background(), path)
		assert.ErrorIs(t, err, ErrNotDirectory)
	})

	t.Run("canceled", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0o644))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := ExtractDir(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
