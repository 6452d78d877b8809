package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/donmikel/lcpmedia/applications/server"
	"github.com/donmikel/lcpmedia/applications/server/domain"
	"github.com/donmikel/lcpmedia/applications/server/interfaces"
)

var (
	videoExtensions = map[string]bool{
		".mp4": true, ".mkv": true, ".webm": true, ".avi": true, ".mov": true, ".m4v": true,
	}

	// Browsers only render WebVTT natively, so it wins over the other formats.
	subtitlePriority = map[string]int{".vtt": 3, ".srt": 2, ".ass": 1}

	resourceExtensions = map[string]bool{
		".pdf": true, ".zip": true, ".rar": true, ".7z": true, ".png": true, ".jpg": true,
		".jpeg": true, ".txt": true, ".md": true, ".pptx": true, ".docx": true, ".xlsx": true,
	}
)

type scanner struct {
	store  interfaces.MediaStore
	scheme string
	logger log.Logger
}

func NewScanner(store interfaces.MediaStore, scheme string, logger log.Logger) server.CourseScanner {
	return &scanner{
		store:  store,
		scheme: scheme,
		logger: logger,
	}
}

func (s *scanner) Scan(ctx context.Context, dir string) (domain.Listing, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("can't make %q absolute: %w", dir, err)
	}

	entries, err := s.store.ReadDir(ctx, dir)
	if err != nil {
		return domain.Listing{}, err
	}

	listing := domain.Listing{
		Dir:       dir,
		Videos:    []domain.Video{},
		Resources: []domain.Resource{},
	}
	subtitles := map[string]string{}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		// Directory listings don't follow links.
		if entry.Mode()&os.ModeSymlink != 0 {
			if entry, err = s.store.Stat(ctx, path); err != nil {
				level.Debug(s.logger).Log("msg", "skipping unresolvable link", "path", path, "err", err)
				continue
			}
		}
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		base := strings.TrimSuffix(name, filepath.Ext(name))

		switch {
		case videoExtensions[ext]:
			listing.Videos = append(listing.Videos, domain.Video{
				ID:       base,
				Name:     name,
				Path:     path,
				URI:      EncodePath(s.scheme, path),
				BaseName: base,
				Size:     entry.Size(),
				Storage:  s.store.Kind(path),
			})
		case subtitlePriority[ext] > 0:
			current, ok := subtitles[base]
			if !ok || subtitlePriority[ext] > subtitlePriority[strings.ToLower(filepath.Ext(current))] {
				subtitles[base] = path
			}
		case resourceExtensions[ext]:
			listing.Resources = append(listing.Resources, domain.Resource{
				Name:      name,
				Path:      path,
				URI:       EncodePath(s.scheme, path),
				Type:      strings.ToUpper(strings.TrimPrefix(ext, ".")),
				Size:      entry.Size(),
				HumanSize: humanize.Bytes(uint64(entry.Size())),
				Storage:   s.store.Kind(path),
			})
		}
	}

	// Collator keeps per-instance buffers, so one per scan.
	col := collate.New(language.Und, collate.Numeric, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(listing.Videos, func(i, j int) bool {
		return col.CompareString(listing.Videos[i].Name, listing.Videos[j].Name) < 0
	})

	for i := range listing.Videos {
		v := &listing.Videos[i]
		v.Order = i + 1
		if sub, ok := subtitles[v.BaseName]; ok {
			v.Subtitle = &domain.Subtitle{Path: sub, URI: EncodePath(s.scheme, sub)}
		}
	}

	level.Info(s.logger).Log("msg", "course directory scanned",
		"dir", dir,
		"videos", len(listing.Videos),
		"resources", len(listing.Resources),
		"subtitles", len(subtitles),
	)

	return listing, nil
}
