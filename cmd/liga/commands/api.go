package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/liga/backend/internal/api"
	"github.com/wonny/liga/backend/internal/api/handlers"
	"github.com/wonny/liga/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `Start the standings REST API and live feed.

Endpoints:
  GET  /health
  GET  /metrics
  POST /api/compute/{ranking,quotas,zones,standings}
  GET  /api/stages/{stage}/divisions/{division}/standings
  GET  /api/stages/{stage}/divisions/{division}/zones
  GET  /api/stages/{stage}/divisions/{division}/top?n=3
  POST /api/stages/{stage}/divisions/{division}/recompute
  GET  /api/stages/{stage}/divisions/{division}/standings.xlsx
  GET  /api/stages/{stage}/divisions/{division}/chart.png
  GET  /api/stages/{stage}/divisions/{division}/live   (websocket)
  POST /api/stages/{stage}/recompute
  GET  /ws/standings                                   (websocket)

Without DATABASE_URL the server runs on an in-memory store
seeded from --snapshot files.

Example:
  go run ./cmd/liga api
  go run ./cmd/liga api --port 8080 --snapshot primera.json --snapshot segunda.xlsx`,
	RunE: runAPIServer,
}

var (
	apiPort      string
	apiSnapshots []string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default $PORT)")
	apiCmd.Flags().StringSliceVar(&apiSnapshots, "snapshot", nil, "snapshot files to serve without a database")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Runtime (config, logger, rules, storage, redis, hub, orchestrator)
	rt, err := newRuntime(apiSnapshots)
	if err != nil {
		return err
	}
	defer rt.Close()

	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Live hub
	go rt.hub.Run(ctx)

	// 3. Rate limiters: per-client on public endpoints, shared per-division on recompute
	var ipLimiter *api.IPRateLimiter
	if rt.cfg.API.RateLimit > 0 {
		ipLimiter = api.NewIPRateLimiter(rt.cfg.API.RateLimit, rt.cfg.API.RateBurst)
	}
	recomputeLimiter := redis.NewRateLimiter(rt.redis, redisPrefix)

	// 4. Handlers + router
	m := rt.metrics
	if !rt.cfg.MetricsEnabled {
		m = nil
	}
	router := api.NewRouter(api.Handlers{
		Compute:   handlers.NewComputeHandler(rt.engine, rt.log),
		Standings: handlers.NewStandingsHandler(rt.orchestrator, recomputeLimiter, rt.log),
		Export:    handlers.NewExportHandler(rt.orchestrator, rt.log),
		Live:      handlers.NewLiveHandler(rt.hub),
	}, m, ipLimiter, rt.log)

	// 5. Server with graceful shutdown
	server := api.New(rt.cfg, rt.log, router)

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Server running on http://localhost:%s", rt.cfg.Port))
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	rt.log.Info("Server stopped")
	return nil
}
