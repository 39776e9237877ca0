package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/liga/backend/internal/brain"
	"github.com/wonny/liga/backend/internal/scheduler"
	"github.com/wonny/liga/backend/pkg/logger"
)

// StageRecomputer is the part of brain.Orchestrator the recompute job needs
type StageRecomputer interface {
	RecomputeStage(ctx context.Context, trigger, stageID string) (*brain.StageResult, error)
}

// RecomputeJob recomputes every division of the configured stages.
// Unchanged divisions hit the standings cache and cost one snapshot read.
// ⭐ SSOT: 주기적 재계산 스케줄은 이 Job에서만
type RecomputeJob struct {
	recomputer StageRecomputer
	stageIDs   []string
	schedule   string
	logger     *logger.Logger
}

// NewRecomputeJob creates a new recompute job
func NewRecomputeJob(recomputer StageRecomputer, stageIDs []string, schedule string, log *logger.Logger) *RecomputeJob {
	return &RecomputeJob{
		recomputer: recomputer,
		stageIDs:   stageIDs,
		schedule:   schedule,
		logger:     log,
	}
}

// Name returns the job name
func (j *RecomputeJob) Name() string {
	return "standings_recompute"
}

// Schedule returns the cron schedule
func (j *RecomputeJob) Schedule() string {
	return j.schedule
}

// Run recomputes each stage; one failing stage does not stop the rest
func (j *RecomputeJob) Run(ctx context.Context) error {
	if len(j.stageIDs) == 0 {
		j.logger.Warn("No stages configured for recompute")
		return nil
	}

	var errs []error
	for _, stageID := range j.stageIDs {
		result, err := j.recomputer.RecomputeStage(ctx, brain.TriggerScheduler, stageID)
		if err != nil {
			errs = append(errs, fmt.Errorf("stage %s: %w", stageID, err))
		}
		if result == nil {
			scheduler.Count(ctx, "stages_failed", 1)
		} else {
			scheduler.Count(ctx, "divisions_computed", len(result.Standings))
			scheduler.Count(ctx, "divisions_failed", len(result.Failed))
			j.logger.WithFields(map[string]interface{}{
				"stage":    stageID,
				"computed": len(result.Standings),
				"failed":   len(result.Failed),
			}).Info("Scheduled recompute finished")
		}
	}

	return errors.Join(errs...)
}
