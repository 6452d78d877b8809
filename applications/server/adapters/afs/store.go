package afs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	"github.com/donmikel/lcpmedia/applications/server/domain"
	"github.com/donmikel/lcpmedia/applications/server/interfaces"
)

type store struct {
	fs         afero.Fs
	roots      []string
	cloudRoots []string
	logger     log.Logger
}

// NewStore returns a MediaStore over fs. When roots is not empty only paths
// inside one of them are reachable. Paths inside cloudRoots are reported as
// cloud mounted.
func NewStore(fs afero.Fs, roots, cloudRoots []string, logger log.Logger) interfaces.MediaStore {
	return &store{
		fs:         fs,
		roots:      cleanAll(roots),
		cloudRoots: cleanAll(cloudRoots),
		logger:     logger,
	}
}

func (s *store) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := s.allowed(path); err != nil {
		return nil, err
	}

	fi, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return fi, nil
}

func (s *store) Open(ctx context.Context, path string) (interfaces.File, error) {
	if err := s.allowed(path); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	level.Debug(s.logger).Log("msg", "file opened", "path", path)

	return f, nil
}

func (s *store) ReadDir(ctx context.Context, dir string) ([]os.FileInfo, error) {
	fi, err := s.Stat(ctx, dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("read dir %s: %w", dir, domain.ErrNotAFile)
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	return entries, nil
}

func (s *store) Kind(path string) domain.StorageKind {
	for _, root := range s.cloudRoots {
		if within(root, path) {
			return domain.StorageCloudMounted
		}
	}

	return domain.StorageLocal
}

func (s *store) allowed(path string) error {
	if len(s.roots) == 0 {
		return nil
	}

	for _, root := range s.roots {
		if within(root, path) {
			return nil
		}
	}

	level.Warn(s.logger).Log("msg", "path rejected by roots allow-list", "path", path)

	return fmt.Errorf("%s: %w", path, domain.ErrForbidden)
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func cleanAll(paths []string) []string {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		result = append(result, filepath.Clean(p))
	}

	return result
}
