// Package handler exposes the liveness endpoint.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"projecthub/backend/internal/server/httpjson"
)

// Pinger checks backing-store connectivity; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports service and database health.
type Health struct {
	db Pinger
}

// NewHealth returns a Health handler. db may be nil when the service runs
// without a database (e.g. in tests).
func NewHealth(db Pinger) *Health {
	return &Health{db: db}
}

// Register mounts the health route on r. The route is public.
func (h *Health) Register(r *mux.Router) {
	r.HandleFunc("/healthz", h.check).Methods(http.MethodGet)
}

func (h *Health) check(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	httpjson.Write(w, code, map[string]string{"status": status})
}
