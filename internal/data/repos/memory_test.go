package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/liga/backend/internal/contracts"
)

var (
	_ contracts.SnapshotRepository  = (*MemoryStore)(nil)
	_ contracts.StandingsRepository = (*MemoryStore)(nil)
	_ contracts.SnapshotRepository  = (*SnapshotRepository)(nil)
	_ contracts.StandingsRepository = (*StandingsRepository)(nil)
)

func TestMemoryStore_Snapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SaveSnapshot(ctx, &contracts.Snapshot{StageID: "s", DivisionID: "segunda"}))
	require.NoError(t, store.SaveSnapshot(ctx, &contracts.Snapshot{StageID: "s", DivisionID: "primera"}))
	require.NoError(t, store.SaveSnapshot(ctx, &contracts.Snapshot{StageID: "other", DivisionID: "x"}))

	divisions, err := store.ListDivisions(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"primera", "segunda"}, divisions)

	_, err = store.LoadSnapshot(ctx, "s", "tercera")
	assert.True(t, errors.Is(err, contracts.ErrNotFound))
}

func TestMemoryStore_Standings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	_, err := store.GetLatestStandings(ctx, "s", "d")
	assert.True(t, errors.Is(err, contracts.ErrNotFound))

	require.NoError(t, store.SaveStandings(ctx, &contracts.Standings{RunID: "new", StageID: "s", DivisionID: "d", ComputedAt: now}))
	require.NoError(t, store.SaveStandings(ctx, &contracts.Standings{RunID: "old", StageID: "s", DivisionID: "d", ComputedAt: now.Add(-time.Minute)}))

	latest, err := store.GetLatestStandings(ctx, "s", "d")
	require.NoError(t, err)
	assert.Equal(t, "new", latest.RunID)
	assert.Equal(t, 2, store.RunCount("s", "d"))
}
