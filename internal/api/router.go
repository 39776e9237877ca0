package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/liga/backend/internal/api/handlers"
	"github.com/wonny/liga/backend/pkg/logger"
	"github.com/wonny/liga/backend/pkg/metrics"
)

// Handlers groups the endpoint handlers; nil members leave their routes unregistered
type Handlers struct {
	Compute   *handlers.ComputeHandler
	Standings *handlers.StandingsHandler
	Export    *handlers.ExportHandler
	Live      *handlers.LiveHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, m *metrics.Metrics, limiter *IPRateLimiter, log *logger.Logger) http.Handler {
	log = log.WithComponent("api")
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(rateLimitMiddleware(limiter))

	// Stateless pipeline
	if h.Compute != nil {
		api.HandleFunc("/compute/ranking", h.Compute.Ranking).Methods("POST")
		api.HandleFunc("/compute/quotas", h.Compute.Quotas).Methods("POST")
		api.HandleFunc("/compute/zones", h.Compute.Zones).Methods("POST")
		api.HandleFunc("/compute/standings", h.Compute.Standings).Methods("POST")
	}

	division := api.PathPrefix("/stages/{stage}/divisions/{division}").Subrouter()

	if h.Standings != nil {
		division.HandleFunc("/standings", h.Standings.Get).Methods("GET")
		division.HandleFunc("/zones", h.Standings.Zones).Methods("GET")
		division.HandleFunc("/top", h.Standings.Top).Methods("GET")
		division.HandleFunc("/recompute", h.Standings.Recompute).Methods("POST")
		api.HandleFunc("/stages/{stage}/recompute", h.Standings.RecomputeStage).Methods("POST")
	}

	if h.Export != nil {
		division.HandleFunc("/standings.xlsx", h.Export.XLSX).Methods("GET")
		division.HandleFunc("/chart.png", h.Export.Chart).Methods("GET")
	}

	if h.Live != nil {
		division.HandleFunc("/live", h.Live.Division).Methods("GET")
		r.HandleFunc("/ws/standings", h.Live.All).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log, m))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "liga-api",
	})
}
