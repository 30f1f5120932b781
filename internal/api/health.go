package api

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// HealthCheckHandler reports process and database liveness.
func HealthCheckHandler(db *sqlx.DB, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:   "ok",
			Database: "ok",
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		if err := db.PingContext(r.Context()); err != nil {
			status.Status = "degraded"
			status.Database = "unreachable"
			respondWithSuccess(w, http.StatusServiceUnavailable, &status)
			return
		}

		respondWithSuccess(w, http.StatusOK, &status)
	}
}
