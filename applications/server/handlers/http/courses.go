package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/lcpmedia/applications/server"
)

func ScanHandler(svc server.CourseScanner, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir := r.URL.Query().Get("dir")
		if dir == "" {
			writeText(w, http.StatusBadRequest, "dir is required")
			return
		}

		listing, err := svc.Scan(r.Context(), dir)
		if err != nil {
			writeErr(w, logger, dir, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, listing)
	}
}

func writeJSON(w http.ResponseWriter, logger log.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		level.Error(logger).Log("msg", "can't write response", "err", err)
	}
}
