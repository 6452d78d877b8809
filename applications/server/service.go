package server

import (
	"context"

	"github.com/donmikel/lcpmedia/applications/server/domain"
)

type MediaService interface {
	// Resolve decodes a scheme URI and stats the file it points to.
	Resolve(ctx context.Context, uri string) (domain.Target, error)
	// Open returns a stream of rng with the final content type. Cancelling
	// ctx or closing the body releases the file.
	Open(ctx context.Context, target domain.Target, rng domain.ByteRange) (domain.Media, error)
}

type CourseScanner interface {
	Scan(ctx context.Context, dir string) (domain.Listing, error)
}

type PlayerSession interface {
	State() domain.SessionState
	Update(fn func(*domain.SessionState)) domain.SessionState
	Subscribe() (<-chan domain.SessionState, func())
}
