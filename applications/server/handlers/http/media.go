package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"

	"github.com/donmikel/lcpmedia/applications/server"
	"github.com/donmikel/lcpmedia/applications/server/domain"
	"github.com/donmikel/lcpmedia/applications/server/services"
)

const copyBufferSize = 256 * 1024 // 256 kB

type Services struct {
	Media   server.MediaService
	Scanner server.CourseScanner
	Session server.PlayerSession
}

// NewRouter serves scheme URIs under /<scheme>/<encoded path>, so that
// <scheme>://X is reachable as /<scheme>/X.
func NewRouter(scheme string, svc Services, logger log.Logger) http.Handler {
	r := mux.NewRouter()
	r.SkipClean(true)
	r.UseEncodedPath()
	r.Use(corsMiddleware)

	r.PathPrefix("/" + scheme + "/").Handler(MediaHandler(svc.Media, scheme, logger)).
		Methods(http.MethodGet, http.MethodHead, http.MethodOptions)
	r.HandleFunc("/courses/scan", ScanHandler(svc.Scanner, logger)).Methods(http.MethodGet)
	r.HandleFunc("/session", GetSessionHandler(svc.Session, logger)).Methods(http.MethodGet)
	r.HandleFunc("/session", PutSessionHandler(svc.Session, logger)).Methods(http.MethodPut)
	r.HandleFunc("/session/events", SessionEventsHandler(svc.Session, logger)).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}

func MediaHandler(svc server.MediaService, scheme string, logger log.Logger) http.HandlerFunc {
	routePrefix := "/" + scheme + "/"

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		uri := scheme + "://" + strings.TrimPrefix(r.URL.EscapedPath(), routePrefix)

		target, err := svc.Resolve(r.Context(), uri)
		if err != nil {
			writeErr(w, logger, uri, err)
			return
		}

		rng := domain.FullRange(target.Size)
		status := http.StatusOK
		if header := r.Header.Get("Range"); header != "" {
			parsed, err := services.ParseRange(header, target.Size)
			switch {
			case err == nil:
				rng = parsed
				status = http.StatusPartialContent
			case errors.Is(err, domain.ErrUnsatisfiableRange):
				w.Header().Set("Content-Range", services.UnsatisfiedContentRange(target.Size))
				w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
				return
			default:
				level.Debug(logger).Log("msg", "ignoring range header", "uri", uri, "err", err)
			}
		}

		// HEAD and empty bodies are answered from the stat alone.
		var body io.ReadCloser
		if r.Method != http.MethodHead && rng.Length() > 0 {
			media, err := svc.Open(r.Context(), target, rng)
			if err != nil {
				writeErr(w, logger, uri, err)
				return
			}
			defer media.Body.Close()

			target, body = media.Target, media.Body
		}

		h := w.Header()
		h.Set("Content-Type", target.ContentType)
		h.Set("Accept-Ranges", "bytes")
		h.Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
		if status == http.StatusPartialContent {
			h.Set("Content-Range", services.ContentRange(rng, target.Size))
		}
		w.WriteHeader(status)

		if body == nil {
			return
		}

		n, err := copyFlush(w, body)
		if err != nil {
			if errors.Is(err, context.Canceled) || r.Context().Err() != nil {
				level.Debug(logger).Log("msg", "stream cancelled by client",
					"path", target.Path,
					"sent", humanize.Bytes(uint64(n)),
				)
				return
			}
			level.Error(logger).Log("msg", "stream aborted",
				"path", target.Path,
				"sent", humanize.Bytes(uint64(n)),
				"err", err,
			)
			return
		}

		level.Debug(logger).Log("msg", "stream complete",
			"path", target.Path,
			"status", status,
			"sent", humanize.Bytes(uint64(n)),
		)
	}
}

func copyFlush(w http.ResponseWriter, body io.Reader) (int64, error) {
	buf := make([]byte, copyBufferSize)
	flusher, _ := w.(http.Flusher)

	var written int64
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			m, writeErr := w.Write(buf[:n])
			written += int64(m)
			if writeErr != nil {
				return written, writeErr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, readErr
		}
	}
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "File not found"
	case errors.Is(err, domain.ErrNotAFile):
		return http.StatusBadRequest, "Not a file"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

func writeErr(w http.ResponseWriter, logger log.Logger, subject string, err error) {
	status, text := statusFor(err)
	if status == http.StatusInternalServerError {
		level.Error(logger).Log("msg", "request failed", "subject", subject, "err", err)
	} else {
		level.Debug(logger).Log("msg", "request rejected", "subject", subject, "status", status, "err", err)
	}

	writeText(w, status, text)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}
