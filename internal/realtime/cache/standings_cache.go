package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/pkg/logger"
)

// StandingsCache keeps the latest computed standings of every division in memory
// ⭐ SSOT: 최신 순위 인메모리 캐싱은 이 구조체에서만
type StandingsCache struct {
	mu     sync.RWMutex
	latest map[string]*contracts.Standings
	logger *logger.Logger
}

// NewStandingsCache creates a new standings cache
func NewStandingsCache(log *logger.Logger) *StandingsCache {
	return &StandingsCache{
		latest: make(map[string]*contracts.Standings),
		logger: log,
	}
}

func key(stageID, divisionID string) string {
	return stageID + ":" + divisionID
}

// Update stores standings unless a newer run of the same division is cached
func (c *StandingsCache) Update(s *contracts.Standings) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(s.StageID, s.DivisionID)
	if existing, ok := c.latest[k]; ok && s.ComputedAt.Before(existing.ComputedAt) {
		c.logger.WithFields(map[string]interface{}{
			"division": k,
			"new_run":  s.RunID,
			"old_run":  existing.RunID,
		}).Debug("Rejected older standings")
		return false
	}

	c.latest[k] = s
	return true
}

// Get returns the cached standings of a division
func (c *StandingsCache) Get(stageID, divisionID string) (*contracts.Standings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.latest[key(stageID, divisionID)]
	return s, ok
}

// Keys returns the cached division keys, sorted
func (c *StandingsCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.latest))
	for k := range c.latest {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Delete removes a division
func (c *StandingsCache) Delete(stageID, divisionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.latest, key(stageID, divisionID))
}

// Len returns the number of cached divisions
func (c *StandingsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.latest)
}

// Prune drops divisions whose latest run was computed before cutoff, returning how many were removed
func (c *StandingsCache) Prune(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, s := range c.latest {
		if s.ComputedAt.Before(cutoff) {
			delete(c.latest, k)
			removed++
		}
	}
	return removed
}
