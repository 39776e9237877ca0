package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/liga/backend/internal/contracts"
)

// StandingsRepository implements contracts.StandingsRepository
// ⭐ SSOT: 순위 결과 저장/조회는 여기서만
type StandingsRepository struct {
	pool *pgxpool.Pool
}

// NewStandingsRepository creates a new standings repository
func NewStandingsRepository(pool *pgxpool.Pool) *StandingsRepository {
	return &StandingsRepository{pool: pool}
}

// SaveStandings stores one recompute run
func (r *StandingsRepository) SaveStandings(ctx context.Context, s *contracts.Standings) error {
	ranking, err := json.Marshal(s.Ranking)
	if err != nil {
		return fmt.Errorf("failed to marshal ranking: %w", err)
	}
	quotas, err := json.Marshal(s.Quotas)
	if err != nil {
		return fmt.Errorf("failed to marshal quotas: %w", err)
	}
	zones, err := json.Marshal(s.Zones)
	if err != nil {
		return fmt.Errorf("failed to marshal zones: %w", err)
	}

	query := `
		INSERT INTO liga.standings (
			run_id, stage_id, division_id, fingerprint, rules_hash,
			ranking, quotas, zones, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (run_id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		s.RunID, s.StageID, s.DivisionID, s.Fingerprint, s.RulesHash,
		ranking, quotas, zones, s.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save standings: %w", err)
	}

	return nil
}

// GetLatestStandings returns the most recent run of a division
func (r *StandingsRepository) GetLatestStandings(ctx context.Context, stageID, divisionID string) (*contracts.Standings, error) {
	query := `
		SELECT run_id::text, fingerprint, rules_hash, ranking, quotas, zones, computed_at
		FROM liga.standings
		WHERE stage_id = $1 AND division_id = $2
		ORDER BY computed_at DESC
		LIMIT 1
	`

	s := contracts.Standings{StageID: stageID, DivisionID: divisionID}
	var ranking, quotas, zones []byte

	err := r.pool.QueryRow(ctx, query, stageID, divisionID).Scan(
		&s.RunID, &s.Fingerprint, &s.RulesHash, &ranking, &quotas, &zones, &s.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("standings %s/%s: %w", stageID, divisionID, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}

	if err := json.Unmarshal(ranking, &s.Ranking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ranking: %w", err)
	}
	if err := json.Unmarshal(quotas, &s.Quotas); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quotas: %w", err)
	}
	if err := json.Unmarshal(zones, &s.Zones); err != nil {
		return nil, fmt.Errorf("failed to unmarshal zones: %w", err)
	}

	return &s, nil
}
