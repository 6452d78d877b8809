package domain

import (
	"errors"
	"io"
)

var (
	ErrNotFound           = errors.New("file not found")
	ErrNotAFile           = errors.New("not a file")
	ErrForbidden          = errors.New("path is outside of the allowed roots")
	ErrInvalidRange       = errors.New("invalid range header")
	ErrUnsatisfiableRange = errors.New("range not satisfiable")
	ErrIdleTimeout        = errors.New("stream consumer idle timeout")
)

// Target is a resolved local media file.
type Target struct {
	Path        string
	Size        int64
	ContentType string
	// Sniff is set when ContentType is only a fallback and the file contents
	// should decide once it is opened.
	Sniff bool
	Kind  StorageKind
}

// ByteRange is an end-inclusive byte range.
type ByteRange struct {
	Start int64
	End   int64
}

// FullRange returns the range covering the whole of a file of the given size.
// For an empty file the returned range has zero length.
func FullRange(size int64) ByteRange {
	return ByteRange{Start: 0, End: size - 1}
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// Media is an opened range of a Target.
type Media struct {
	Target Target
	Range  ByteRange
	Body   io.ReadCloser
}
