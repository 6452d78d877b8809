package afs

import (
	"context"
	"io"
	"testing"

	"github.com/go-kit/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donmikel/lcpmedia/applications/server/domain"
)

func newFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/media/a.mp4", []byte("hello"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/media2/b.mp4", []byte("world"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/drive/c.mp4", []byte("cloud"), 0o644))
	return fs
}

func TestStoreWithoutRoots(t *testing.T) {
	store := NewStore(newFs(t), nil, nil, log.NewNopLogger())
	ctx := context.Background()

	fi, err := store.Stat(ctx, "/media2/b.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(5), fi.Size())

	f, err := store.Open(ctx, "/media/a.mp4")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	require.NoError(t, f.Close())

	_, err = store.Stat(ctx, "/media/missing.mp4")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Open(ctx, "/media/missing.mp4")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreRoots(t *testing.T) {
	store := NewStore(newFs(t), []string{"/media", ""}, nil, log.NewNopLogger())
	ctx := context.Background()

	_, err := store.Stat(ctx, "/media/a.mp4")
	assert.NoError(t, err)

	_, err = store.Stat(ctx, "/media")
	assert.NoError(t, err)

	// A sibling sharing the root's prefix is not inside it.
	_, err = store.Stat(ctx, "/media2/b.mp4")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = store.Open(ctx, "/media2/b.mp4")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = store.ReadDir(ctx, "/")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStoreReadDir(t *testing.T) {
	store := NewStore(newFs(t), nil, nil, log.NewNopLogger())
	ctx := context.Background()

	entries, err := store.ReadDir(ctx, "/media")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.mp4", entries[0].Name())

	_, err = store.ReadDir(ctx, "/media/a.mp4")
	assert.ErrorIs(t, err, domain.ErrNotAFile)

	_, err = store.ReadDir(ctx, "/nowhere")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreKind(t *testing.T) {
	store := NewStore(newFs(t), nil, []string{"/drive"}, log.NewNopLogger())

	assert.Equal(t, domain.StorageCloudMounted, store.Kind("/drive/c.mp4"))
	assert.Equal(t, domain.StorageCloudMounted, store.Kind("/drive"))
	assert.Equal(t, domain.StorageLocal, store.Kind("/drive2/c.mp4"))
	assert.Equal(t, domain.StorageLocal, store.Kind("/media/a.mp4"))
}
