package handlers

import (
	"net/http"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/importer"
	"github.com/wonny/liga/backend/internal/standings"
	"github.com/wonny/liga/backend/pkg/logger"
)

// ComputeHandler exposes the stateless pipeline: nothing is loaded or saved
// ⭐ SSOT: 무상태 계산 API 핸들러는 이 구조체에서만
type ComputeHandler struct {
	engine *standings.Engine
	logger *logger.Logger
}

// NewComputeHandler creates a new compute handler
func NewComputeHandler(engine *standings.Engine, log *logger.Logger) *ComputeHandler {
	return &ComputeHandler{
		engine: engine,
		logger: log,
	}
}

// QuotasRequest is the body of POST /api/compute/quotas
type QuotasRequest struct {
	N             int                      `json:"n"`
	Configuration *contracts.Configuration `json:"configuration"`
}

// ZonesRequest is the body of POST /api/compute/zones.
// Ranking must already be sorted.
type ZonesRequest struct {
	Ranking []contracts.RankingEntry `json:"ranking"`
	Quotas  contracts.Quotas         `json:"quotas"`
}

// ZonesResponse lists the buckets and the entries left outside them
type ZonesResponse struct {
	Zones    contracts.ZoneAssignment `json:"zones"`
	Inactive []contracts.RankingEntry `json:"inactive"`
}

// Ranking computes the sorted ranking of a snapshot
// POST /api/compute/ranking
func (h *ComputeHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	snapshot, err := importer.DecodeSnapshot(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondErr(w, h.logger, err, "Failed to decode snapshot")
		return
	}

	ranking, err := standings.ComputeRankingWith(snapshot.Enrollments, snapshot.Matches, h.engine.Rules().Scoring)
	if err != nil {
		respondErr(w, h.logger, err, "Failed to compute ranking")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ranking": ranking,
		"count":   len(ranking),
	})
}

// Quotas computes movement quotas for a population size
// POST /api/compute/quotas
func (h *ComputeHandler) Quotas(w http.ResponseWriter, r *http.Request) {
	var req QuotasRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, h.logger, err, "Invalid request body")
		return
	}

	quotas, err := standings.ComputeQuotas(req.N, req.Configuration)
	if err != nil {
		respondErr(w, h.logger, err, "Failed to compute quotas")
		return
	}

	respondJSON(w, http.StatusOK, quotas)
}

// Zones classifies a sorted ranking
// POST /api/compute/zones
func (h *ComputeHandler) Zones(w http.ResponseWriter, r *http.Request) {
	var req ZonesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, h.logger, err, "Invalid request body")
		return
	}
	if err := validateQuotas(req.Quotas); err != nil {
		respondErr(w, h.logger, err, "Invalid quotas")
		return
	}

	zones := standings.ClassifyZones(req.Ranking, req.Quotas)
	respondJSON(w, http.StatusOK, ZonesResponse{
		Zones:    zones,
		Inactive: zones.Inactive(req.Ranking),
	})
}

// Standings runs the full pipeline on a snapshot, resolving its configuration from the rules file
// when the body carries none
// POST /api/compute/standings
func (h *ComputeHandler) Standings(w http.ResponseWriter, r *http.Request) {
	snapshot, err := importer.DecodeSnapshot(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondErr(w, h.logger, err, "Failed to decode snapshot")
		return
	}

	result, err := h.engine.Compute(snapshot)
	if err != nil {
		respondErr(w, h.logger, err, "Failed to compute standings")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func validateQuotas(q contracts.Quotas) error {
	fields := []struct {
		name  string
		value int
	}{
		{"promotion", q.Promotion},
		{"relegation", q.Relegation},
		{"playoff", q.Playoff},
	}
	for _, f := range fields {
		if f.value < 0 {
			return &contracts.InputError{Record: "quotas", Index: -1, Field: f.name, Message: "must be >= 0"}
		}
	}
	return nil
}
