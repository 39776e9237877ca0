package repos

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wonny/liga/backend/internal/contracts"
)

// MemoryStore implements contracts.SnapshotRepository and
// contracts.StandingsRepository in memory, for offline serving and tests
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*contracts.Snapshot
	standings map[string][]*contracts.Standings
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]*contracts.Snapshot),
		standings: make(map[string][]*contracts.Standings),
	}
}

func memoryKey(stageID, divisionID string) string {
	return stageID + ":" + divisionID
}

// SaveSnapshot replaces the snapshot of a division
func (m *MemoryStore) SaveSnapshot(_ context.Context, snapshot *contracts.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[snapshot.Key()] = snapshot
	return nil
}

// LoadSnapshot implements contracts.SnapshotRepository
func (m *MemoryStore) LoadSnapshot(_ context.Context, stageID, divisionID string) (*contracts.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.snapshots[memoryKey(stageID, divisionID)]
	if !ok {
		return nil, fmt.Errorf("division %s/%s: %w", stageID, divisionID, contracts.ErrNotFound)
	}
	return s, nil
}

// ListDivisions implements contracts.SnapshotRepository
func (m *MemoryStore) ListDivisions(_ context.Context, stageID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	divisions := make([]string, 0)
	for _, s := range m.snapshots {
		if s.StageID == stageID {
			divisions = append(divisions, s.DivisionID)
		}
	}
	sort.Strings(divisions)
	return divisions, nil
}

// SaveStandings implements contracts.StandingsRepository
func (m *MemoryStore) SaveStandings(_ context.Context, s *contracts.Standings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memoryKey(s.StageID, s.DivisionID)
	m.standings[k] = append(m.standings[k], s)
	return nil
}

// GetLatestStandings implements contracts.StandingsRepository
func (m *MemoryStore) GetLatestStandings(_ context.Context, stageID, divisionID string) (*contracts.Standings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := m.standings[memoryKey(stageID, divisionID)]
	if len(runs) == 0 {
		return nil, fmt.Errorf("standings %s/%s: %w", stageID, divisionID, contracts.ErrNotFound)
	}

	latest := runs[0]
	for _, s := range runs[1:] {
		if !s.ComputedAt.Before(latest.ComputedAt) {
			latest = s
		}
	}
	return latest, nil
}

// RunCount returns how many runs were saved for a division
func (m *MemoryStore) RunCount(stageID, divisionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.standings[memoryKey(stageID, divisionID)])
}
