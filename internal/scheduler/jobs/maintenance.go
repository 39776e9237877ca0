package jobs

import (
	"context"
	"time"

	"github.com/wonny/liga/backend/internal/realtime/cache"
	"github.com/wonny/liga/backend/internal/scheduler"
	"github.com/wonny/liga/backend/pkg/logger"
)

// LiveCacheCleanupJob drops divisions from the live standings cache that
// have not been recomputed for maxAge
type LiveCacheCleanupJob struct {
	cache  *cache.StandingsCache
	maxAge time.Duration
	logger *logger.Logger
}

// NewLiveCacheCleanupJob creates a new cache cleanup job
func NewLiveCacheCleanupJob(standingsCache *cache.StandingsCache, maxAge time.Duration, log *logger.Logger) *LiveCacheCleanupJob {
	return &LiveCacheCleanupJob{
		cache:  standingsCache,
		maxAge: maxAge,
		logger: log,
	}
}

// Name returns the job name
func (j *LiveCacheCleanupJob) Name() string {
	return "live_cache_cleanup"
}

// Schedule returns the cron schedule (hourly)
func (j *LiveCacheCleanupJob) Schedule() string {
	return "0 0 * * * *"
}

// Run executes the cache cleanup
func (j *LiveCacheCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled live cache cleanup")

	count := j.cache.Prune(time.Now().Add(-j.maxAge))
	scheduler.Count(ctx, "removed", count)

	if count > 0 {
		j.logger.WithField("removed", count).Info("Live cache cleanup completed")
	}

	return nil
}
