package services

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/donmikel/lcpmedia/applications/server/domain"
)

// EncodePath builds the request URI a player uses for a local path: OS
// separators become forward slashes and the whole path is escaped as a single
// component.
func EncodePath(scheme, path string) string {
	return scheme + "://" + url.PathEscape(strings.ReplaceAll(path, `\`, "/"))
}

// DecodeURI reverses EncodePath and returns a cleaned absolute path.
func DecodeURI(scheme, uri string) (string, error) {
	prefix := scheme + "://"
	if len(uri) < len(prefix) || !strings.EqualFold(uri[:len(prefix)], prefix) {
		return "", fmt.Errorf("uri %q does not start with %s", uri, prefix)
	}

	decoded, err := url.PathUnescape(uri[len(prefix):])
	if err != nil {
		return "", fmt.Errorf("can't decode uri %q: %w", uri, err)
	}

	if decoded == "" {
		return "", fmt.Errorf("uri %q: empty path: %w", uri, domain.ErrNotFound)
	}

	path := filepath.Clean(filepath.FromSlash(decoded))
	if !filepath.IsAbs(path) {
		if path, err = filepath.Abs(path); err != nil {
			return "", fmt.Errorf("can't make %q absolute: %w", decoded, err)
		}
	}

	return path, nil
}
