package interfaces

import (
	"context"
	"io"
	"os"

	"github.com/donmikel/lcpmedia/applications/server/domain"
)

// File is an opened media file. ReadAt is used for range reads.
type File interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

type MediaStore interface {
	Stat(ctx context.Context, path string) (os.FileInfo, error)
	Open(ctx context.Context, path string) (File, error)
	ReadDir(ctx context.Context, dir string) ([]os.FileInfo, error)
	Kind(path string) domain.StorageKind
}
