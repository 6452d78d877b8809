package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/donmikel/lcpmedia/applications/server/domain"
	"github.com/donmikel/lcpmedia/applications/server/interfaces"
)

const (
	defaultChunkSize    = 64 * 1024 // 64 kB
	defaultBufferChunks = 4
)

var errStreamClosed = errors.New("stream closed")

type StreamOptions struct {
	ChunkSize    int
	BufferChunks int
	// IdleTimeout aborts the stream when the consumer doesn't take a chunk in
	// time. Zero disables it.
	IdleTimeout time.Duration
}

// Stream pushes the bytes of a range through a bounded buffer. A producer
// goroutine owns the file and closes it when the range is done, on a read
// error, on ctx cancellation or on Close.
type Stream struct {
	chunks  chan []byte
	pending []byte
	err     error
	closed  atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewStream(ctx context.Context, f interfaces.File, rng domain.ByteRange, opts StreamOptions) *Stream {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.BufferChunks <= 0 {
		opts.BufferChunks = defaultBufferChunks
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		chunks: make(chan []byte, opts.BufferChunks),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.produce(ctx, f, rng, opts)

	return s
}

func (s *Stream) produce(ctx context.Context, f interfaces.File, rng domain.ByteRange, opts StreamOptions) {
	defer close(s.done)
	defer close(s.chunks)
	defer f.Close()

	var idle *time.Timer
	if opts.IdleTimeout > 0 {
		idle = time.NewTimer(opts.IdleTimeout)
		defer idle.Stop()
	}

	remaining := rng.Length()
	r := io.NewSectionReader(f, rng.Start, remaining)
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			s.err = err
			return
		}

		buf := make([]byte, min(int64(opts.ChunkSize), remaining))
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			remaining -= int64(n)
			if !s.send(ctx, buf[:n], idle, opts.IdleTimeout) {
				return
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.err = fmt.Errorf("file ended %d bytes before range end: %w", remaining, io.ErrUnexpectedEOF)
			} else {
				s.err = fmt.Errorf("can't read range: %w", err)
			}
			return
		}
	}
}

func (s *Stream) send(ctx context.Context, chunk []byte, idle *time.Timer, timeout time.Duration) bool {
	var idleC <-chan time.Time
	if idle != nil {
		idle.Reset(timeout)
		idleC = idle.C
	}

	select {
	case s.chunks <- chunk:
		return true
	case <-ctx.Done():
		s.err = ctx.Err()
	case <-idleC:
		s.err = domain.ErrIdleTimeout
	}

	return false
}

func (s *Stream) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, errStreamClosed
	}

	if len(s.pending) == 0 {
		chunk, ok := <-s.chunks
		if !ok {
			if s.err != nil {
				return 0, s.err
			}
			return 0, io.EOF
		}
		s.pending = chunk
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	return n, nil
}

// Close stops the producer and returns once the file has been closed.
func (s *Stream) Close() error {
	s.closed.Store(true)
	s.cancel()
	<-s.done

	return nil
}
