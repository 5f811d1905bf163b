package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := s.Save(ctx, 7, "../foto 3x4.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.PersonID)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, int64(len(pngHeader)), info.Size)
	assert.Equal(t, "7", filepath.Dir(info.Path))
	assert.True(t, strings.HasSuffix(info.Path, "_foto_3x4.png"), info.Path)

	rc, got, err := s.Open(ctx, 7, info.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, info.ID, got.ID)

	// Another person's files are not visible.
	_, err = s.Info(ctx, 8, info.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, 7, info.ID))
	_, err = os.Stat(s.Abs(info))
	assert.True(t, os.IsNotExist(err))
	_, _, err = s.Open(ctx, 7, info.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	files, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, files)

	first, err := s.Save(ctx, 1, "a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := s.Save(ctx, 1, "b.txt", strings.NewReader("bb"))
	require.NoError(t, err)

	files, err = s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, files, 2)
	ids := []uuid.UUID{files[0].ID, files[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c.jpg", sanitizeFilename("a/b\\c.jpg"))
	assert.Equal(t, "foto", sanitizeFilename("  "))
	assert.Equal(t, "__etc_passwd", sanitizeFilename("../etc/passwd"))
}
