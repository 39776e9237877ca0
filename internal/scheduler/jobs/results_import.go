package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/liga/backend/internal/brain"
	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/importer"
	"github.com/wonny/liga/backend/internal/leagueconfig"
	"github.com/wonny/liga/backend/internal/scheduler"
	"github.com/wonny/liga/backend/pkg/logger"
)

// DivisionRecomputer is the part of brain.Orchestrator the import job needs
type DivisionRecomputer interface {
	RecomputeDivision(ctx context.Context, trigger, stageID, divisionID string) (*contracts.Standings, error)
}

// ResultsImportJob pulls published results pages into the snapshot store and
// recomputes the divisions it refreshed
type ResultsImportJob struct {
	fetcher    importer.PageFetcher
	store      contracts.SnapshotWriter
	recomputer DivisionRecomputer
	sources    []leagueconfig.ResultsSource
	schedule   string
	logger     *logger.Logger
}

// NewResultsImportJob creates a new results import job
func NewResultsImportJob(
	fetcher importer.PageFetcher,
	store contracts.SnapshotWriter,
	recomputer DivisionRecomputer,
	sources []leagueconfig.ResultsSource,
	schedule string,
	log *logger.Logger,
) *ResultsImportJob {
	return &ResultsImportJob{
		fetcher:    fetcher,
		store:      store,
		recomputer: recomputer,
		sources:    sources,
		schedule:   schedule,
		logger:     log,
	}
}

// Name returns the job name
func (j *ResultsImportJob) Name() string {
	return "results_import"
}

// Schedule returns the cron schedule
func (j *ResultsImportJob) Schedule() string {
	return j.schedule
}

// Run imports every source
func (j *ResultsImportJob) Run(ctx context.Context) error {
	var errs []error
	for _, src := range j.sources {
		if err := j.importSource(ctx, src); err != nil {
			scheduler.Count(ctx, "sources_failed", 1)
			errs = append(errs, fmt.Errorf("%s/%s: %w", src.StageID, src.DivisionID, err))
			continue
		}
		scheduler.Count(ctx, "sources_imported", 1)
	}
	return errors.Join(errs...)
}

func (j *ResultsImportJob) importSource(ctx context.Context, src leagueconfig.ResultsSource) error {
	snapshot, err := importer.FetchResults(ctx, j.fetcher, src.URL)
	if err != nil {
		return err
	}
	snapshot.StageID = src.StageID
	snapshot.DivisionID = src.DivisionID

	if err := j.store.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	scheduler.Count(ctx, "matches", len(snapshot.Matches))

	j.logger.WithDivision(src.StageID, src.DivisionID).WithFields(map[string]interface{}{
		"enrollments": len(snapshot.Enrollments),
		"matches":     len(snapshot.Matches),
	}).Info("Results imported")

	if _, err := j.recomputer.RecomputeDivision(ctx, brain.TriggerScheduler, src.StageID, src.DivisionID); err != nil {
		return fmt.Errorf("recompute: %w", err)
	}
	return nil
}
