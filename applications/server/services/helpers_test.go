package services

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-kit/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/donmikel/lcpmedia/applications/server/adapters/afs"
	"github.com/donmikel/lcpmedia/applications/server/interfaces"
)

// countingFs tracks how many files are open at any time.
type countingFs struct {
	afero.Fs
	open atomic.Int64
}

func (c *countingFs) Open(name string) (afero.File, error) {
	f, err := c.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	c.open.Add(1)

	return &countingFile{File: f, fs: c}, nil
}

type countingFile struct {
	afero.File
	fs   *countingFs
	once sync.Once
}

func (f *countingFile) Close() error {
	f.once.Do(func() { f.fs.open.Add(-1) })
	return f.File.Close()
}

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func newTestStore(t *testing.T, files map[string][]byte, roots ...string) (*countingFs, interfaces.MediaStore) {
	t.Helper()

	fs := &countingFs{Fs: afero.NewMemMapFs()}
	for path, data := range files {
		require.NoError(t, fs.Fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs.Fs, path, data, 0o644))
	}

	return fs, afs.NewStore(fs, roots, nil, log.NewNopLogger())
}

func openTestFile(t *testing.T, fs *countingFs, path string) interfaces.File {
	t.Helper()

	f, err := fs.Open(path)
	require.NoError(t, err)

	return f
}
