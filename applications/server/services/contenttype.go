package services

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultContentType = "video/mp4"

var builtinContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
	".vtt":  "text/vtt; charset=utf-8",
	".srt":  "text/plain; charset=utf-8",
	".ass":  "text/plain; charset=utf-8",
}

// ContentTypes picks the Content-Type sent for a media file.
type ContentTypes struct {
	byExt    map[string]string
	fallback string
}

func NewContentTypes(overrides map[string]string, fallback string) *ContentTypes {
	byExt := make(map[string]string, len(builtinContentTypes)+len(overrides))
	for ext, ct := range builtinContentTypes {
		byExt[ext] = ct
	}
	for ext, ct := range overrides {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		byExt[ext] = ct
	}

	if fallback == "" {
		fallback = DefaultContentType
	}

	return &ContentTypes{byExt: byExt, fallback: fallback}
}

func (c *ContentTypes) ByExtension(path string) (string, bool) {
	ct, ok := c.byExt[strings.ToLower(filepath.Ext(path))]
	return ct, ok
}

// Sniff detects the type from the head of the file. Only playable or textual
// types are accepted.
func (c *ContentTypes) Sniff(r io.Reader) (string, bool) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return "", false
	}

	for t := m; t != nil; t = t.Parent() {
		ct := t.String()
		if strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") || strings.HasPrefix(ct, "text/") {
			return ct, true
		}
	}

	return "", false
}

func (c *ContentTypes) Fallback() string {
	return c.fallback
}
