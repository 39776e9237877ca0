package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/liga/backend/internal/brain"
	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/data/repos"
	"github.com/wonny/liga/backend/internal/importer"
	"github.com/wonny/liga/backend/internal/leagueconfig"
	"github.com/wonny/liga/backend/internal/realtime"
	"github.com/wonny/liga/backend/internal/realtime/cache"
	"github.com/wonny/liga/backend/internal/standings"
	"github.com/wonny/liga/backend/pkg/config"
	"github.com/wonny/liga/backend/pkg/database"
	"github.com/wonny/liga/backend/pkg/logger"
	"github.com/wonny/liga/backend/pkg/metrics"
	"github.com/wonny/liga/backend/pkg/redis"
)

const redisPrefix = "liga"

// runtime bundles the dependencies shared by the long-running commands.
// With DATABASE_URL set it reads and writes PostgreSQL, otherwise an in-memory
// store seeded from snapshot files.
type runtime struct {
	cfg     *config.Config
	log     *logger.Logger
	engine  *standings.Engine
	metrics *metrics.Metrics

	db    *database.DB // nil in memory mode
	redis *redis.Client

	snapshots contracts.SnapshotRepository
	writer    contracts.SnapshotWriter
	results   contracts.StandingsRepository

	liveCache    *cache.StandingsCache
	hub          *realtime.Hub
	orchestrator *brain.Orchestrator
}

// newRuntime wires config → logger → rules → storage → redis → hub → orchestrator
func newRuntime(snapshotFiles []string) (*runtime, error) {
	// 1. Config (database optional)
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Logger
	log := newLogger(cfg, os.Stderr)

	// 3. Rules + engine
	engine, err := loadEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:     cfg,
		log:     log,
		engine:  engine,
		metrics: metrics.New(),
	}

	// 4. Storage
	if cfg.Database.URL != "" {
		if len(snapshotFiles) > 0 {
			return nil, fmt.Errorf("--snapshot is only valid without DATABASE_URL")
		}
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		rt.db = db
		snapshotRepo := repos.NewSnapshotRepository(db.Pool)
		rt.snapshots = snapshotRepo
		rt.writer = snapshotRepo
		rt.results = repos.NewStandingsRepository(db.Pool)
		log.Info("Connected to database")
	} else {
		store := repos.NewMemoryStore()
		if err := seedStore(context.Background(), store, snapshotFiles, cfg.League.StageID); err != nil {
			return nil, err
		}
		rt.snapshots = store
		rt.writer = store
		rt.results = store
		log.WithField("snapshots", len(snapshotFiles)).Info("Using in-memory store")
	}

	// 5. Redis (optional, degrade to disabled)
	client, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		client = redis.NewFromClient(nil)
	}
	rt.redis = client
	log.WithField("cache", client.Mode()).Debug("Standings cache backend")

	// 6. Live hub + orchestrator
	rt.liveCache = cache.NewStandingsCache(log)
	rt.hub = realtime.NewHub(rt.liveCache, log, rt.metrics)
	rt.orchestrator = brain.NewOrchestrator(
		rt.snapshots,
		rt.results,
		engine,
		redis.NewCache(client, redisPrefix),
		rt.hub,
		rt.metrics,
		log,
	)

	return rt, nil
}

// Close releases database and redis connections
func (rt *runtime) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
}

// newLogger keeps stdout for command output unless --verbose
func newLogger(cfg *config.Config, w io.Writer) *logger.Logger {
	if verbose {
		cfg.LogLevel = "debug"
	} else if cfg.LogLevel == "debug" {
		cfg.LogLevel = "info"
	}
	return logger.NewWithWriter(cfg, w)
}

// loadEngine reads the rules file.
// A missing default rules file falls back to built-in defaults; an explicit --rules must exist.
func loadEngine(cfg *config.Config, log *logger.Logger) (*standings.Engine, error) {
	path := rulesPath
	explicit := path != ""
	if !explicit {
		path = cfg.League.RulesPath
	}

	rules, _, err := leagueconfig.Load(path)
	switch {
	case err == nil:
		log.WithField("path", path).Debug("Loaded league rules")
	case !explicit && errors.Is(err, fs.ErrNotExist):
		log.WithField("path", path).Warn("Rules file not found, using defaults")
		rules = leagueconfig.Default()
	default:
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}

	engine, err := standings.NewEngine(rules, log)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return engine, nil
}

// loadSnapshotFile reads a snapshot and fills missing ids:
// stage from the fallback, division from the file base name
func loadSnapshotFile(path, stageID, divisionID, fallbackStage string) (*contracts.Snapshot, error) {
	snapshot, err := importer.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	applyIDs(snapshot, stageID, divisionID, fallbackStage)
	if snapshot.DivisionID == "" {
		base := filepath.Base(path)
		snapshot.DivisionID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return snapshot, nil
}

func seedStore(ctx context.Context, store contracts.SnapshotWriter, files []string, fallbackStage string) error {
	for _, path := range files {
		snapshot, err := loadSnapshotFile(path, "", "", fallbackStage)
		if err != nil {
			return err
		}
		if err := store.SaveSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("seed %s: %w", snapshot.Key(), err)
		}
	}
	return nil
}
