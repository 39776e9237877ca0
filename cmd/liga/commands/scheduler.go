package commands

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/liga/backend/internal/scheduler"
	"github.com/wonny/liga/backend/internal/scheduler/jobs"
	"github.com/wonny/liga/backend/pkg/httputil"
	"github.com/wonny/liga/backend/pkg/logger"
	"github.com/wonny/liga/backend/pkg/redis"
)

// liveCacheMaxAge is how long a division stays on the live feed cache without a recompute
const liveCacheMaxAge = 24 * time.Hour

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `Start the recompute scheduler or manage its jobs.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/liga scheduler start
  go run ./cmd/liga scheduler list
  go run ./cmd/liga scheduler run standings_recompute`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `Start the scheduler and schedule every registered job.

Registered jobs:
- standings_recompute: $RECOMPUTE_SCHEDULE (default every 10 minutes)
- results_import: --import-schedule, only when the rules list results_url
- live_cache_cleanup: hourly

Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}
)

var (
	schedulerSnapshots []string
	importSchedule     string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)

	schedulerCmd.PersistentFlags().StringSliceVar(&schedulerSnapshots, "snapshot", nil, "snapshot files to use without a database")
	schedulerCmd.PersistentFlags().StringVar(&importSchedule, "import-schedule", "0 */15 * * * *", "cron schedule of results_import")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	rt, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go rt.hub.Run(ctx)

	sched.Start()

	out := cmd.OutOrStdout()
	PrintSuccess(out, "Scheduler started")
	printJobs(out, sched)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	rt, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.Close()

	printJobs(cmd.OutOrStdout(), sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	rt, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running job: %s\n", jobName)

	result, err := sched.RunJob(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	PrintKeyValue(out, "Attempts", fmt.Sprintf("%d", result.Attempts), 18)
	PrintKeyValue(out, "Duration", result.Duration.Round(time.Millisecond).String(), 18)
	for _, name := range result.CountNames() {
		PrintKeyValue(out, name, fmt.Sprintf("%d", result.Counts[name]), 18)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}

	PrintSuccess(out, "Job completed")
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	rt, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	stats := sched.GetJobStats()

	fmt.Fprintln(out, "Job Statistics:")
	fmt.Fprintln(out)

	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Fprintf(out, "📊 %s\n", jobName)
		fmt.Fprintf(out, "   Schedule: %s\n", stat.Schedule)
		fmt.Fprintf(out, "   Total Runs: %d\n", stat.TotalRuns)
		fmt.Fprintf(out, "   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Fprintf(out, "   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Fprintf(out, "   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		for _, name := range (scheduler.JobResult{Counts: stat.LastCounts}).CountNames() {
			fmt.Fprintf(out, "   %s: %d\n", name, stat.LastCounts[name])
		}

		fmt.Fprintln(out)
	}

	return nil
}

func printJobs(w io.Writer, sched *scheduler.Scheduler) {
	fmt.Fprintln(w, "Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Fprintf(w, "  - %s\n", jobName)
	}
}

func initScheduler() (*runtime, *scheduler.Scheduler, error) {
	// 1. Runtime
	rt, err := newRuntime(schedulerSnapshots)
	if err != nil {
		return nil, nil, err
	}

	// 2. Scheduler
	sched := scheduler.New(rt.log, scheduler.DefaultOptions())

	// 3. Stages to recompute: LEAGUE_STAGE or every stage of the rules file
	stageIDs := rt.engine.Rules().StageIDs()
	if rt.cfg.League.StageID != "" {
		stageIDs = []string{rt.cfg.League.StageID}
	}

	registered := []scheduler.Job{
		jobs.NewRecomputeJob(rt.orchestrator, stageIDs, rt.cfg.League.RecomputeSchedule, rt.log),
		jobs.NewLiveCacheCleanupJob(rt.liveCache, liveCacheMaxAge, rt.log),
	}

	// 4. Results import, only with configured sources
	if sources := rt.engine.Rules().ResultsSources(); len(sources) > 0 {
		fetcher := newHostFetcher(redis.NewRateLimiter(rt.redis, redisPrefix), rt.log)
		registered = append(registered,
			jobs.NewResultsImportJob(fetcher, rt.writer, rt.orchestrator, sources, importSchedule, rt.log))
	}

	for _, job := range registered {
		if err := sched.AddJob(job); err != nil {
			rt.Close()
			return nil, nil, fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}

	return rt, sched, nil
}

// hostFetcher keeps one rate-limited client per results site
type hostFetcher struct {
	limiter *redis.RateLimiter
	log     *logger.Logger
	clients map[string]*httputil.Client
}

func newHostFetcher(limiter *redis.RateLimiter, log *logger.Logger) *hostFetcher {
	return &hostFetcher{
		limiter: limiter,
		log:     log,
		clients: make(map[string]*httputil.Client),
	}
}

// GetBody implements importer.PageFetcher
func (f *hostFetcher) GetBody(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	// jobs run one at a time per job, so no locking
	client, ok := f.clients[u.Host]
	if !ok {
		client = httputil.New(f.log).WithRateLimiter(f.limiter, redis.ResultsSiteRateLimit(u.Host))
		f.clients[u.Host] = client
	}
	return client.GetBody(ctx, rawURL)
}
