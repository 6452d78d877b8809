package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/lcpmedia/applications/server"
	"github.com/donmikel/lcpmedia/applications/server/domain"
)

func GetSessionHandler(svc server.PlayerSession, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, svc.State())
	}
}

func PutSessionHandler(svc server.PlayerSession, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var next domain.SessionState
		if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
			writeText(w, http.StatusBadRequest, "invalid session state")
			return
		}

		if next.Volume < 0 || next.Volume > 1 || next.Position < 0 {
			writeText(w, http.StatusBadRequest, "invalid session state")
			return
		}

		state := svc.Update(func(s *domain.SessionState) { *s = next })

		writeJSON(w, logger, http.StatusOK, state)
	}
}

// SessionEventsHandler streams session changes as server-sent events until
// the client goes away.
func SessionEventsHandler(svc server.PlayerSession, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeText(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		updates, unsubscribe := svc.Subscribe()
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		if err := writeEvent(w, svc.State()); err != nil {
			return
		}
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case state, ok := <-updates:
				if !ok {
					return
				}
				if err := writeEvent(w, state); err != nil {
					level.Debug(logger).Log("msg", "session events client gone", "err", err)
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, state domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}
