package api

import (
	"net/http"

	"github.com/ndquoc/library-notify/internal/engine"
)

// HealthResponse reports service status and the delivery queue backlog.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	QueueDepth int64  `json:"queue_depth"`
}

// HealthHandler returns the health check handler.
func HealthHandler(publisher *engine.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		depth, err := publisher.QueueDepth(r.Context())
		if err != nil {
			depth = 0
		}

		respondJSON(w, http.StatusOK, HealthResponse{
			Status:     "healthy",
			Version:    "1.0.0",
			QueueDepth: depth,
		})
	}
}
