package commands

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/liga/backend/pkg/config"
	"github.com/wonny/liga/backend/pkg/database"
	"github.com/wonny/liga/backend/pkg/redis"
)

// dbCmd groups database maintenance commands
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "데이터베이스 관리",
	Long: `Database maintenance.

Subcommands:
  migrate - 스키마 생성 (idempotent)
  health  - 연결, 풀, 캐시 상태 확인
  schema  - 적용될 DDL 출력

Example:
  go run ./cmd/liga db migrate
  go run ./cmd/liga db health`,
}

var (
	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "스키마 생성",
		RunE:  runMigrate,
	}

	dbHealthCmd = &cobra.Command{
		Use:   "health",
		Short: "연결 상태 확인",
		RunE:  runHealth,
	}

	dbSchemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "DDL 출력",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), database.Schema())
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbHealthCmd)
	dbCmd.AddCommand(dbSchemaCmd)
}

func connect() (*config.Config, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database %s: %w", maskPassword(cfg.Database.URL), err)
	}
	return cfg, db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	PrintSuccess(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()
	PrintKeyValue(out, "Database", maskPassword(cfg.Database.URL), 13)

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	PrintKeyValue(out, "Healthy", fmt.Sprintf("%v", status.Healthy), 13)
	PrintKeyValue(out, "Response Time", status.ResponseTime.String(), 13)
	PrintKeyValue(out, "Schema Ready", fmt.Sprintf("%v", status.SchemaReady), 13)
	if !status.SchemaReady {
		PrintWarning(out, "Run `liga db migrate` first")
	}
	PrintSeparator(out)

	// Pool statistics
	fmt.Fprintln(out, "📊 Connection Pool Statistics:")
	fmt.Fprintf(out, "   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Fprintf(out, "   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Fprintf(out, "   Acquired Connections: %d\n", status.Stats.AcquiredConns)
	fmt.Fprintf(out, "   Idle Connections: %d\n", status.Stats.IdleConns)
	fmt.Fprintf(out, "   Acquire Count: %d\n", status.Stats.AcquireCount)

	printRedisHealth(ctx, out, cfg)

	if inv := status.Inventory; inv != nil {
		PrintSeparator(out)
		fmt.Fprintln(out, "📦 League Data:")
		fmt.Fprintf(out, "   Stages: %d\n", inv.Stages)
		fmt.Fprintf(out, "   Divisions: %d\n", inv.Divisions)
		fmt.Fprintf(out, "   Enrollments: %d\n", inv.Enrollments)
		fmt.Fprintf(out, "   Played Matches: %d\n", inv.PlayedMatches)
		fmt.Fprintf(out, "   Standings Runs: %d\n", inv.StandingsRuns)
	}

	return nil
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

// printRedisHealth reports the standings cache backend; an unreachable server is a warning only
func printRedisHealth(ctx context.Context, out io.Writer, cfg *config.Config) {
	PrintSeparator(out)
	client, err := redis.New(cfg)
	if err != nil {
		PrintWarning(out, fmt.Sprintf("Redis unreachable, caching disabled: %v", err))
		return
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		PrintWarning(out, fmt.Sprintf("Redis ping failed: %v", err))
		return
	}
	PrintKeyValue(out, "Cache", client.Mode(), 13)
}
