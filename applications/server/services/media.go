package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/lcpmedia/applications/server"
	"github.com/donmikel/lcpmedia/applications/server/domain"
	"github.com/donmikel/lcpmedia/applications/server/interfaces"
)

// sniffLen covers what mimetype inspects by default.
const sniffLen = 3072

type MediaOptions struct {
	Scheme             string
	ChunkSize          int
	BufferChunks       int
	IdleReadTimeout    time.Duration
	ContentTypes       map[string]string
	DefaultContentType string
}

type mediaService struct {
	store  interfaces.MediaStore
	scheme string
	types  *ContentTypes
	stream StreamOptions
	logger log.Logger
}

func NewMediaService(store interfaces.MediaStore, opts MediaOptions, logger log.Logger) server.MediaService {
	return &mediaService{
		store:  store,
		scheme: opts.Scheme,
		types:  NewContentTypes(opts.ContentTypes, opts.DefaultContentType),
		stream: StreamOptions{
			ChunkSize:    opts.ChunkSize,
			BufferChunks: opts.BufferChunks,
			IdleTimeout:  opts.IdleReadTimeout,
		},
		logger: logger,
	}
}

func (s *mediaService) Resolve(ctx context.Context, uri string) (domain.Target, error) {
	path, err := DecodeURI(s.scheme, uri)
	if err != nil {
		return domain.Target{}, err
	}

	fi, err := s.store.Stat(ctx, path)
	if err != nil {
		return domain.Target{}, err
	}

	if !fi.Mode().IsRegular() {
		return domain.Target{}, fmt.Errorf("%s: %w", path, domain.ErrNotAFile)
	}

	ct, known := s.types.ByExtension(path)
	if !known {
		ct = s.types.Fallback()
	}

	return domain.Target{
		Path:        path,
		Size:        fi.Size(),
		ContentType: ct,
		Sniff:       !known,
		Kind:        s.store.Kind(path),
	}, nil
}

func (s *mediaService) Open(ctx context.Context, target domain.Target, rng domain.ByteRange) (domain.Media, error) {
	f, err := s.store.Open(ctx, target.Path)
	if err != nil {
		return domain.Media{}, fmt.Errorf("can't open media: %w", err)
	}

	if target.Sniff {
		if ct, ok := s.types.Sniff(io.NewSectionReader(f, 0, sniffLen)); ok {
			target.ContentType = ct
		}
		target.Sniff = false
		level.Debug(s.logger).Log("msg", "content type sniffed", "path", target.Path, "type", target.ContentType)
	}

	return domain.Media{
		Target: target,
		Range:  rng,
		Body:   NewStream(ctx, f, rng, s.stream),
	}, nil
}
