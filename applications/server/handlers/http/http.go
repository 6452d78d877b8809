package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-kit/log"

	"github.com/donmikel/lcpmedia/applications/server/config"
)

const readHeaderTimeout = 10 * time.Second

// NewHTTPServer has no write timeout: media responses stream for as long as
// the player keeps reading. Request contexts derive from ctx, so cancelling it
// ends open streams and event subscriptions and lets Shutdown finish.
func NewHTTPServer(ctx context.Context, conf config.Server, svc Services, logger log.Logger) *http.Server {
	return &http.Server{
		Addr:              conf.API.HTTPAddr,
		Handler:           NewRouter(conf.Media.Scheme, svc, logger),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

// corsMiddleware lets fetch() from the player page read media responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Range")
		h.Set("Access-Control-Expose-Headers", "Content-Range, Content-Length, Accept-Ranges")
		next.ServeHTTP(w, r)
	})
}
