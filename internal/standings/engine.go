package standings

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/leagueconfig"
	"github.com/wonny/liga/backend/pkg/logger"
)

// Engine computes full standings for division snapshots under one rules file
// ⭐ SSOT: S1 → S5 실행은 여기서만 조율
type Engine struct {
	rules     *leagueconfig.Rules
	rulesHash string
	logger    *logger.Logger
	now       func() time.Time
}

// NewEngine creates an engine bound to rules (nil = defaults)
func NewEngine(rules *leagueconfig.Rules, log *logger.Logger) (*Engine, error) {
	if rules == nil {
		rules = leagueconfig.Default()
	}
	if log == nil {
		log = logger.NewNop()
	}

	hash, err := leagueconfig.Hash(rules)
	if err != nil {
		return nil, fmt.Errorf("hash rules: %w", err)
	}

	return &Engine{
		rules:     rules,
		rulesHash: hash,
		logger:    log,
		now:       time.Now,
	}, nil
}

// Rules returns the rules the engine was built with
func (e *Engine) Rules() *leagueconfig.Rules {
	return e.rules
}

// RulesHash returns the SHA-256 of the engine's rules
func (e *Engine) RulesHash() string {
	return e.rulesHash
}

// Configuration returns the configuration that applies to a snapshot:
// its own if present, otherwise the rules-file resolution
func (e *Engine) Configuration(snapshot *contracts.Snapshot) *contracts.Configuration {
	if snapshot.Configuration != nil {
		return snapshot.Configuration
	}
	return e.rules.Resolve(snapshot.StageID, snapshot.DivisionID)
}

// Compute runs the whole pipeline for one snapshot
func (e *Engine) Compute(snapshot *contracts.Snapshot) (*contracts.Standings, error) {
	if snapshot == nil {
		return nil, &contracts.InputError{Record: "snapshot", Index: -1, Field: "snapshot", Message: "is required"}
	}

	start := e.now()
	runID := uuid.New().String()
	cfg := e.Configuration(snapshot)

	log := e.logger.WithDivision(snapshot.StageID, snapshot.DivisionID).WithField("run_id", runID)

	fingerprint, err := Fingerprint(snapshot.Enrollments, snapshot.Matches, cfg)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}

	ranking, err := ComputeRankingWith(snapshot.Enrollments, snapshot.Matches, e.rules.Scoring)
	if err != nil {
		log.WithError(err).Warn("Ranking rejected")
		return nil, fmt.Errorf("ranking: %w", err)
	}

	quotas, err := ComputeQuotas(len(ranking), cfg)
	if err != nil {
		log.WithError(err).Warn("Quotas rejected")
		return nil, fmt.Errorf("quotas: %w", err)
	}

	zones := ClassifyZones(ranking, quotas)

	result := &contracts.Standings{
		RunID:       runID,
		StageID:     snapshot.StageID,
		DivisionID:  snapshot.DivisionID,
		Fingerprint: fingerprint,
		RulesHash:   e.rulesHash,
		Ranking:     ranking,
		Quotas:      quotas,
		Zones:       zones,
		ComputedAt:  start,
	}

	log.WithFields(map[string]interface{}{
		"players":    len(ranking),
		"matches":    len(snapshot.Matches),
		"promotion":  quotas.Promotion,
		"relegation": quotas.Relegation,
		"playoff":    quotas.Playoff,
		"classified": zones.Size(),
		"duration":   e.now().Sub(start).Seconds(),
	}).Debug("Standings computed")

	return result, nil
}
