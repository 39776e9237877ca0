package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/pkg/database"
)

// SnapshotRepository implements contracts.SnapshotRepository
// ⭐ SSOT: 등록/경기/설정 조회는 여기서만
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// LoadSnapshot reads enrollments, matches and the effective configuration of a
// division inside one read-only repeatable-read transaction, so the three reads
// see the same state.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, stageID, divisionID string) (*contracts.Snapshot, error) {
	snapshot := &contracts.Snapshot{StageID: stageID, DivisionID: divisionID}

	err := database.InTx(ctx, r.pool, database.ReadSnapshot, func(tx pgx.Tx) error {
		var err error
		if snapshot.Configuration, err = loadConfiguration(ctx, tx, stageID, divisionID); err != nil {
			return err
		}
		if snapshot.Enrollments, err = loadEnrollments(ctx, tx, stageID, divisionID); err != nil {
			return err
		}
		snapshot.Matches, err = loadMatches(ctx, tx, stageID, divisionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListDivisions returns the division ids of a stage
func (r *SnapshotRepository) ListDivisions(ctx context.Context, stageID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM liga.divisions
		WHERE stage_id = $1
		ORDER BY id
	`, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query divisions: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan divisions: %w", err)
	}
	return ids, nil
}

// loadConfiguration returns the division row if it configures anything,
// else the stage row, else nil
func loadConfiguration(ctx context.Context, tx pgx.Tx, stageID, divisionID string) (*contracts.Configuration, error) {
	query := `
		SELECT
			d.promotion_percentage, d.relegation_percentage,
			d.fixed_promotion_slots, d.fixed_relegation_slots, d.playoff_slots_per_zone,
			s.promotion_percentage, s.relegation_percentage,
			s.fixed_promotion_slots, s.fixed_relegation_slots, s.playoff_slots_per_zone
		FROM liga.divisions d
		JOIN liga.stages s ON s.id = d.stage_id
		WHERE d.stage_id = $1 AND d.id = $2
	`

	var division, stage contracts.Configuration
	err := tx.QueryRow(ctx, query, stageID, divisionID).Scan(
		&division.PromotionPercentage, &division.RelegationPercentage,
		&division.FixedPromotionSlots, &division.FixedRelegationSlots, &division.PlayoffSlotsPerZone,
		&stage.PromotionPercentage, &stage.RelegationPercentage,
		&stage.FixedPromotionSlots, &stage.FixedRelegationSlots, &stage.PlayoffSlotsPerZone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("division %s/%s: %w", stageID, divisionID, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	return pickConfiguration(&division, &stage), nil
}

// pickConfiguration applies division → stage fallback on whole records
func pickConfiguration(division, stage *contracts.Configuration) *contracts.Configuration {
	if isConfigured(division) {
		return division
	}
	if isConfigured(stage) {
		return stage
	}
	return nil
}

func isConfigured(c *contracts.Configuration) bool {
	return c.PromotionPercentage != nil || c.RelegationPercentage != nil ||
		c.FixedPromotionSlots != nil || c.FixedRelegationSlots != nil ||
		c.PlayoffSlotsPerZone != nil
}

func loadEnrollments(ctx context.Context, tx pgx.Tx, stageID, divisionID string) ([]contracts.Enrollment, error) {
	rows, err := tx.Query(ctx, `
		SELECT player_id, player_ref
		FROM liga.enrollments
		WHERE stage_id = $1 AND division_id = $2 AND active
		ORDER BY seq
	`, stageID, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}

	enrollments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (contracts.Enrollment, error) {
		var e contracts.Enrollment
		err := row.Scan(&e.PlayerID, &e.PlayerRef)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan enrollments: %w", err)
	}
	return enrollments, nil
}

func loadMatches(ctx context.Context, tx pgx.Tx, stageID, divisionID string) ([]contracts.MatchRecord, error) {
	rows, err := tx.Query(ctx, `
		SELECT player_a, player_b, sets_won_a, sets_won_b, games_won_a, games_won_b, status
		FROM liga.matches
		WHERE stage_id = $1 AND division_id = $2
		ORDER BY id
	`, stageID, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}

	matches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (contracts.MatchRecord, error) {
		var m contracts.MatchRecord
		var status string
		err := row.Scan(
			&m.Players[0], &m.Players[1],
			&m.SetsWonA, &m.SetsWonB, &m.GamesWonA, &m.GamesWonB,
			&status,
		)
		m.Status = contracts.MatchStatus(status)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan matches: %w", err)
	}
	return matches, nil
}

// SaveSnapshot upserts a stage, a division, its enrollments and matches.
// Matches of the division are replaced; enrollments missing from the snapshot
// are deactivated. Used by the import command to load results.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *contracts.Snapshot) error {
	return database.InTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return saveSnapshot(ctx, tx, snapshot)
	})
}

func saveSnapshot(ctx context.Context, tx pgx.Tx, snapshot *contracts.Snapshot) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO liga.stages (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, snapshot.StageID); err != nil {
		return fmt.Errorf("failed to upsert stage: %w", err)
	}

	cfg := snapshot.Configuration
	if cfg == nil {
		cfg = &contracts.Configuration{}
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO liga.divisions (
			stage_id, id, promotion_percentage, relegation_percentage,
			fixed_promotion_slots, fixed_relegation_slots, playoff_slots_per_zone
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stage_id, id) DO UPDATE SET
			promotion_percentage = EXCLUDED.promotion_percentage,
			relegation_percentage = EXCLUDED.relegation_percentage,
			fixed_promotion_slots = EXCLUDED.fixed_promotion_slots,
			fixed_relegation_slots = EXCLUDED.fixed_relegation_slots,
			playoff_slots_per_zone = EXCLUDED.playoff_slots_per_zone
	`, snapshot.StageID, snapshot.DivisionID,
		cfg.PromotionPercentage, cfg.RelegationPercentage,
		cfg.FixedPromotionSlots, cfg.FixedRelegationSlots, cfg.PlayoffSlotsPerZone,
	); err != nil {
		return fmt.Errorf("failed to upsert division: %w", err)
	}

	// Replace results of the division
	if _, err := tx.Exec(ctx, "DELETE FROM liga.matches WHERE stage_id = $1 AND division_id = $2",
		snapshot.StageID, snapshot.DivisionID); err != nil {
		return fmt.Errorf("failed to delete old matches: %w", err)
	}

	if _, err := tx.Exec(ctx, "UPDATE liga.enrollments SET active = FALSE WHERE stage_id = $1 AND division_id = $2",
		snapshot.StageID, snapshot.DivisionID); err != nil {
		return fmt.Errorf("failed to deactivate enrollments: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range snapshot.Enrollments {
		batch.Queue(`
			INSERT INTO liga.enrollments (stage_id, division_id, player_id, player_ref)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (stage_id, division_id, player_id) DO UPDATE SET
				player_ref = EXCLUDED.player_ref,
				active = TRUE
		`, snapshot.StageID, snapshot.DivisionID, e.PlayerID, e.PlayerRef)
	}
	for _, m := range snapshot.Matches {
		batch.Queue(`
			INSERT INTO liga.matches (
				stage_id, division_id, player_a, player_b,
				sets_won_a, sets_won_b, games_won_a, games_won_b, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, snapshot.StageID, snapshot.DivisionID, m.Players[0], m.Players[1],
			m.SetsWonA, m.SetsWonB, m.GamesWonA, m.GamesWonB, string(m.Status))
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert division rows: %w", err)
	}
	return nil
}
