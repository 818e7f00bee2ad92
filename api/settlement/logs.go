// Package settlement exposes the settlement log over HTTP.
package settlement

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kilianp07/balancemkt/core/balancing/logging"
)

// LogsPath is where the handler is mounted.
const LogsPath = "/api/settlement/logs"

// NewLogHandler returns an HTTP handler exposing settlement records via
// GET /api/settlement/logs. Supported filters are from, to, broker_id and
// run_id. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewLogHandler(store logging.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		params := r.URL.Query()
		q := logging.LogQuery{
			RunID:    params.Get("run_id"),
			BrokerID: params.Get("broker_id"),
		}
		for _, f := range []struct {
			name string
			dst  *int
		}{{"from", &q.FromSlot}, {"to", &q.ToSlot}} {
			s := params.Get(f.name)
			if s == "" {
				continue
			}
			v, err := strconv.Atoi(s)
			if err != nil {
				http.Error(w, "invalid "+f.name, http.StatusBadRequest)
				return
			}
			*f.dst = v
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
