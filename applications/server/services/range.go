package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/donmikel/lcpmedia/applications/server/domain"
)

const bytesUnit = "bytes="

// ParseRange parses a single-range Range header against a file of the given
// size. It returns domain.ErrInvalidRange when the header can't be parsed and
// domain.ErrUnsatisfiableRange when it doesn't overlap the file.
//
// A missing end means the rest of the file; an end past the file is clamped.
// The suffix form bytes=-N selects the last N bytes.
func ParseRange(header string, size int64) (domain.ByteRange, error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), bytesUnit)
	if !ok || strings.Contains(spec, ",") {
		return domain.ByteRange{}, fmt.Errorf("%q: %w", header, domain.ErrInvalidRange)
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return domain.ByteRange{}, fmt.Errorf("%q: %w", header, domain.ErrInvalidRange)
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" {
		return suffixRange(header, endStr, size)
	}

	start, err := parseOffset(startStr)
	if err != nil {
		return domain.ByteRange{}, fmt.Errorf("%q: %w", header, err)
	}

	end := max(size-1, start)
	if endStr != "" {
		if end, err = parseOffset(endStr); err != nil {
			return domain.ByteRange{}, fmt.Errorf("%q: %w", header, err)
		}
	}

	if start >= size || start > end {
		return domain.ByteRange{}, fmt.Errorf("%q of %d bytes: %w", header, size, domain.ErrUnsatisfiableRange)
	}

	return domain.ByteRange{Start: start, End: min(end, size-1)}, nil
}

func suffixRange(header, lengthStr string, size int64) (domain.ByteRange, error) {
	n, err := parseOffset(lengthStr)
	if err != nil {
		return domain.ByteRange{}, fmt.Errorf("%q: %w", header, err)
	}

	if n == 0 || size == 0 {
		return domain.ByteRange{}, fmt.Errorf("%q of %d bytes: %w", header, size, domain.ErrUnsatisfiableRange)
	}

	return domain.ByteRange{Start: size - min(n, size), End: size - 1}, nil
}

func parseOffset(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, domain.ErrInvalidRange
	}

	return v, nil
}

// ContentRange formats the Content-Range value of a partial response.
func ContentRange(r domain.ByteRange, size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// UnsatisfiedContentRange formats the Content-Range value of a 416 response.
func UnsatisfiedContentRange(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}
