package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bookly/internal/auth/blocklist"
	"github.com/aussiebroadwan/bookly/internal/auth/store"
	"github.com/aussiebroadwan/bookly/pkg/httpx"
)

// Pinger is implemented by blocklist drivers that can report connection
// health. The in-memory driver has nothing to ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler is the readiness probe. It checks the database and, when the
// blocklist driver supports it, the revocation registry.
func ReadyzHandler(startTime time.Time, version string, st store.Store, bl blocklist.Blocklist) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{
			Database:  "ok",
			Blocklist: "ok",
		}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if p, ok := bl.(Pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				checks.Blocklist = "error: " + err.Error()
				status = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
