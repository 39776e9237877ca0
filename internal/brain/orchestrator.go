package brain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/standings"
	"github.com/wonny/liga/backend/pkg/logger"
	"github.com/wonny/liga/backend/pkg/metrics"
	"github.com/wonny/liga/backend/pkg/redis"
)

// Recompute triggers
const (
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"
	TriggerCLI       = "cli"
)

// maxParallelDivisions bounds concurrent division recomputes of one stage
const maxParallelDivisions = 4

// Orchestrator decides when standings are recomputed and where they go:
// load snapshot → compute → save → cache → publish → metrics.
// The computation itself stays in standings.Engine.
// ⭐ SSOT: 재계산 조율은 여기서만
type Orchestrator struct {
	snapshots contracts.SnapshotRepository
	results   contracts.StandingsRepository
	engine    *standings.Engine
	cache     *redis.Cache
	publisher contracts.StandingsPublisher
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewOrchestrator creates a new orchestrator.
// cache, publisher and m may be nil.
func NewOrchestrator(
	snapshots contracts.SnapshotRepository,
	results contracts.StandingsRepository,
	engine *standings.Engine,
	cache *redis.Cache,
	publisher contracts.StandingsPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		snapshots: snapshots,
		results:   results,
		engine:    engine,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		logger:    log,
	}
}

// RecomputeDivision recomputes one division.
// An unchanged snapshot under unchanged rules returns the cached run without
// saving or publishing again.
func (o *Orchestrator) RecomputeDivision(ctx context.Context, trigger, stageID, divisionID string) (*contracts.Standings, error) {
	start := time.Now()
	result, err := o.recompute(ctx, stageID, divisionID)
	o.metrics.ObserveRecompute(trigger, err, time.Since(start))

	log := o.logger.WithDivision(stageID, divisionID).WithFields(map[string]interface{}{
		"trigger":  trigger,
		"duration": time.Since(start).Seconds(),
	})
	if err != nil {
		log.WithError(err).Error("Recompute failed")
		return nil, err
	}

	log.WithField("run_id", result.RunID).Info("Recompute completed")
	return result, nil
}

func (o *Orchestrator) recompute(ctx context.Context, stageID, divisionID string) (*contracts.Standings, error) {
	snapshot, err := o.snapshots.LoadSnapshot(ctx, stageID, divisionID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	fingerprint, err := standings.Fingerprint(snapshot.Enrollments, snapshot.Matches, o.engine.Configuration(snapshot))
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	cacheKey := redis.StandingsKey(stageID, divisionID, fingerprint, o.engine.RulesHash())

	if o.cache != nil {
		var cached contracts.Standings
		found, err := o.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			o.logger.WithError(err).Warn("Standings cache lookup failed")
		}
		// a hit must belong to the requested division
		if found && (cached.StageID != stageID || cached.DivisionID != divisionID) {
			found = false
		}
		o.metrics.CacheLookup(found)
		if found {
			return &cached, nil
		}
	}

	result, err := o.engine.Compute(snapshot)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}

	if o.results != nil {
		if err := o.results.SaveStandings(ctx, result); err != nil {
			return nil, fmt.Errorf("save standings: %w", err)
		}
	}

	if o.cache != nil {
		if err := o.cache.Set(ctx, cacheKey, result, redis.TTLStandings); err != nil {
			o.logger.WithError(err).Warn("Standings cache write failed")
		}
		// latest pointer is stale now
		_ = o.cache.Delete(ctx, redis.LatestKey(stageID, divisionID))
	}

	if o.publisher != nil {
		o.publisher.Publish(result)
	}

	eligible := 0
	for i := range result.Ranking {
		if result.Ranking[i].IsPositioned() {
			eligible++
		}
	}
	o.metrics.SetRankedPlayers(stageID, divisionID, eligible, len(result.Ranking)-eligible)

	return result, nil
}

// StageResult is the outcome of a stage-wide recompute
type StageResult struct {
	StageID   string
	Standings []*contracts.Standings // division order
	Failed    map[string]error       // division → error
}

// RecomputeStage recomputes every division of a stage, a few at a time.
// A failing division does not stop the others; the joined error lists all failures.
func (o *Orchestrator) RecomputeStage(ctx context.Context, trigger, stageID string) (*StageResult, error) {
	divisions, err := o.snapshots.ListDivisions(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}

	result := &StageResult{
		StageID:   stageID,
		Standings: make([]*contracts.Standings, len(divisions)),
		Failed:    make(map[string]error),
	}

	var mu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDivisions)
	for i, divisionID := range divisions {
		g.Go(func() error {
			s, err := o.RecomputeDivision(gctx, trigger, stageID, divisionID)
			if err != nil {
				mu.Lock()
				result.Failed[divisionID] = err
				errs = append(errs, fmt.Errorf("division %s: %w", divisionID, err))
				mu.Unlock()
				return nil
			}
			result.Standings[i] = s
			return nil
		})
	}
	_ = g.Wait()

	// keep only computed divisions, in order
	computed := result.Standings[:0]
	for _, s := range result.Standings {
		if s != nil {
			computed = append(computed, s)
		}
	}
	result.Standings = computed

	o.logger.WithFields(map[string]interface{}{
		"trigger":   trigger,
		"stage":     stageID,
		"divisions": len(divisions),
		"failed":    len(result.Failed),
	}).Info("Stage recompute completed")

	return result, errors.Join(errs...)
}

// Latest returns the most recent saved standings of a division
func (o *Orchestrator) Latest(ctx context.Context, stageID, divisionID string) (*contracts.Standings, error) {
	if o.results == nil {
		return nil, fmt.Errorf("standings %s/%s: %w", stageID, divisionID, contracts.ErrNotFound)
	}

	load := func() (interface{}, error) {
		return o.results.GetLatestStandings(ctx, stageID, divisionID)
	}

	if o.cache == nil {
		s, err := load()
		if err != nil {
			return nil, err
		}
		return s.(*contracts.Standings), nil
	}

	var s contracts.Standings
	if err := o.cache.GetOrSet(ctx, redis.LatestKey(stageID, divisionID), &s, redis.TTLShort, load); err != nil {
		return nil, err
	}
	return &s, nil
}

// Engine returns the standings engine
func (o *Orchestrator) Engine() *standings.Engine {
	return o.engine
}
