package contracts

import "context"

// SnapshotRepository supplies division/stage snapshots from the external datastore
// ⭐ SSOT: 입력 조회 인터페이스는 여기서만 정의
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context, stageID, divisionID string) (*Snapshot, error)
	ListDivisions(ctx context.Context, stageID string) ([]string, error)
}

// StandingsRepository persists computed standings on behalf of the recompute orchestrator
type StandingsRepository interface {
	SaveStandings(ctx context.Context, standings *Standings) error
	GetLatestStandings(ctx context.Context, stageID, divisionID string) (*Standings, error)
}

// StandingsPublisher pushes freshly computed standings to live displays
type StandingsPublisher interface {
	Publish(standings *Standings)
}
