package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/liga/backend/pkg/config"
)

const (
	applicationName = "liga"
	schemaName      = "liga"
)

// DB wraps the pgxpool.Pool and provides additional functionality
// ⭐ SSOT: DB 연결은 이 패키지에서만 생성
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool
// ⭐ SSOT: 유일하게 pgxpool.New()를 호출하는 함수
func New(cfg *config.Config) (*DB, error) {
	poolConfig, err := newPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// newPoolConfig maps the league database settings onto pgxpool.
// Unqualified names resolve to the liga schema first.
func newPoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	params := poolConfig.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	if _, set := params["search_path"]; !set {
		params["search_path"] = schemaName + ",public"
	}
	return poolConfig, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// HealthCheck returns detailed health information about the database
func (db *DB) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Healthy:   false,
		Timestamp: time.Now(),
	}

	// Check connection
	start := time.Now()
	if err := db.Pool.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status, err
	}
	status.ResponseTime = time.Since(start)

	status.Stats = db.Stats()

	ready, err := db.SchemaReady(ctx)
	if err != nil {
		status.Error = err.Error()
		return status, err
	}
	status.SchemaReady = ready

	if ready {
		inv, err := db.Inventory(ctx)
		if err != nil {
			status.Error = err.Error()
			return status, err
		}
		status.Inventory = inv
	}

	status.Healthy = true
	return status, nil
}

// HealthStatus represents the health status of the database
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	Timestamp    time.Time     `json:"timestamp"`
	ResponseTime time.Duration `json:"response_time"`
	SchemaReady  bool          `json:"schema_ready"` // false until `liga db migrate`
	Error        string        `json:"error,omitempty"`
	Stats        PoolStats     `json:"stats"`
	Inventory    *Inventory    `json:"inventory,omitempty"` // nil without schema
}

// Inventory counts the stored league data
type Inventory struct {
	Stages        int64 `json:"stages"`
	Divisions     int64 `json:"divisions"`
	Enrollments   int64 `json:"enrollments"`
	PlayedMatches int64 `json:"played_matches"`
	StandingsRuns int64 `json:"standings_runs"`
}

// Inventory counts rows of the league tables in one round trip
func (db *DB) Inventory(ctx context.Context) (*Inventory, error) {
	inv := &Inventory{}
	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM liga.stages),
			(SELECT count(*) FROM liga.divisions),
			(SELECT count(*) FROM liga.enrollments),
			(SELECT count(*) FROM liga.matches WHERE status = 'played'),
			(SELECT count(*) FROM liga.standings)
	`).Scan(&inv.Stages, &inv.Divisions, &inv.Enrollments, &inv.PlayedMatches, &inv.StandingsRuns)
	if err != nil {
		return nil, fmt.Errorf("failed to count league data: %w", err)
	}
	return inv, nil
}

// PoolStats represents connection pool statistics
type PoolStats struct {
	AcquireCount         int64         `json:"acquire_count"`
	AcquireDuration      time.Duration `json:"acquire_duration"`
	AcquiredConns        int32         `json:"acquired_conns"`
	CanceledAcquireCount int64         `json:"canceled_acquire_count"`
	ConstructingConns    int32         `json:"constructing_conns"`
	EmptyAcquireCount    int64         `json:"empty_acquire_count"`
	IdleConns            int32         `json:"idle_conns"`
	MaxConns             int32         `json:"max_conns"`
	TotalConns           int32         `json:"total_conns"`
}

// Stats returns the current pool statistics
func (db *DB) Stats() PoolStats {
	stats := db.Pool.Stat()
	return PoolStats{
		AcquireCount:         stats.AcquireCount(),
		AcquireDuration:      stats.AcquireDuration(),
		AcquiredConns:        stats.AcquiredConns(),
		CanceledAcquireCount: stats.CanceledAcquireCount(),
		ConstructingConns:    stats.ConstructingConns(),
		EmptyAcquireCount:    stats.EmptyAcquireCount(),
		IdleConns:            stats.IdleConns(),
		MaxConns:             stats.MaxConns(),
		TotalConns:           stats.TotalConns(),
	}
}
