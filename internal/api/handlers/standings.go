package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/liga/backend/internal/brain"
	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/pkg/logger"
	"github.com/wonny/liga/backend/pkg/redis"
)

const defaultTopN = 3

// StandingsHandler serves saved standings and triggers recomputes
// ⭐ SSOT: 순위표 API 핸들러는 이 구조체에서만
type StandingsHandler struct {
	orchestrator *brain.Orchestrator
	limiter      *redis.RateLimiter
	logger       *logger.Logger
}

// NewStandingsHandler creates a new standings handler.
// limiter may be nil to leave recompute triggers unthrottled.
func NewStandingsHandler(orchestrator *brain.Orchestrator, limiter *redis.RateLimiter, log *logger.Logger) *StandingsHandler {
	return &StandingsHandler{
		orchestrator: orchestrator,
		limiter:      limiter,
		logger:       log,
	}
}

// StageRecomputeResponse summarises a stage-wide recompute
type StageRecomputeResponse struct {
	StageID   string                 `json:"stage_id"`
	Standings []*contracts.Standings `json:"standings"`
	Failed    map[string]string      `json:"failed"`
}

// Get returns the latest standings of a division
// GET /api/stages/{stage}/divisions/{division}/standings
func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// Zones returns quotas and zone buckets of the latest standings
// GET /api/stages/{stage}/divisions/{division}/zones
func (h *StandingsHandler) Zones(w http.ResponseWriter, r *http.Request) {
	s, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   s.RunID,
		"quotas":   s.Quotas,
		"zones":    s.Zones,
		"inactive": s.Zones.Inactive(s.Ranking),
	})
}

// Top returns the first n positioned players (default 3)
// GET /api/stages/{stage}/divisions/{division}/top?n=5
func (h *StandingsHandler) Top(w http.ResponseWriter, r *http.Request) {
	n := defaultTopN
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = v
	}

	s, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": s.RunID,
		"top":    s.TopN(n),
	})
}

// Recompute recomputes one division now
// POST /api/stages/{stage}/divisions/{division}/recompute
func (h *StandingsHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	stageID, divisionID := vars["stage"], vars["division"]

	if h.limiter != nil {
		allowed, _, err := h.limiter.Allow(r.Context(), redis.RecomputeRateLimit(stageID, divisionID))
		if err != nil {
			h.logger.WithError(err).Warn("Recompute rate limit check failed")
		} else if !allowed {
			respondError(w, http.StatusTooManyRequests, "Recompute rate limit exceeded")
			return
		}
	}

	s, err := h.orchestrator.RecomputeDivision(r.Context(), brain.TriggerAPI, stageID, divisionID)
	if err != nil {
		respondErr(w, h.logger, err, "Failed to recompute standings")
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// RecomputeStage recomputes every division of a stage
// POST /api/stages/{stage}/recompute
func (h *StandingsHandler) RecomputeStage(w http.ResponseWriter, r *http.Request) {
	stageID := mux.Vars(r)["stage"]

	result, err := h.orchestrator.RecomputeStage(r.Context(), brain.TriggerAPI, stageID)
	if result == nil {
		respondErr(w, h.logger, err, "Failed to recompute stage")
		return
	}

	resp := StageRecomputeResponse{
		StageID:   result.StageID,
		Standings: result.Standings,
		Failed:    make(map[string]string, len(result.Failed)),
	}
	for division, ferr := range result.Failed {
		resp.Failed[division] = ferr.Error()
	}

	// 일부 디비전만 실패해도 성공한 결과는 반환
	status := http.StatusOK
	if err != nil && len(result.Standings) == 0 {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, resp)
}

func (h *StandingsHandler) latest(w http.ResponseWriter, r *http.Request) (*contracts.Standings, bool) {
	vars := mux.Vars(r)
	s, err := h.orchestrator.Latest(r.Context(), vars["stage"], vars["division"])
	if err != nil {
		respondErr(w, h.logger, err, "Failed to get standings")
		return nil, false
	}
	return s, true
}
