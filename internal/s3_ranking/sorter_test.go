package s3_ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/liga/backend/internal/contracts"
)

func entry(id string, idx int, final float64, setsDiff, gamesDiff int, meets bool) contracts.RankingEntry {
	return contracts.RankingEntry{
		PlayerID:        id,
		FinalAverage:    final,
		SetsDiff:        setsDiff,
		GamesDiff:       gamesDiff,
		MeetsMinimum:    meets,
		EnrollmentIndex: idx,
	}
}

func ids(entries []contracts.RankingEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.PlayerID)
	}
	return out
}

func TestSort_TieBreaks(t *testing.T) {
	tests := []struct {
		name    string
		entries []contracts.RankingEntry
		want    []string
	}{
		{
			name: "final average descending",
			entries: []contracts.RankingEntry{
				entry("low", 0, 0.5, 9, 9, true),
				entry("high", 1, 1.5, -9, -9, true),
			},
			want: []string{"high", "low"},
		},
		{
			name: "sets difference breaks final average tie",
			entries: []contracts.RankingEntry{
				entry("y", 0, 1.0, 1, 20, true),
				entry("x", 1, 1.0, 3, 0, true),
			},
			want: []string{"x", "y"},
		},
		{
			name: "games difference breaks sets tie",
			entries: []contracts.RankingEntry{
				entry("y", 0, 1.0, 2, 4, true),
				entry("x", 1, 1.0, 2, 7, true),
			},
			want: []string{"x", "y"},
		},
		{
			name: "enrollment order is the last resort",
			entries: []contracts.RankingEntry{
				entry("second", 1, 1.0, 2, 4, true),
				entry("first", 0, 1.0, 2, 4, true),
			},
			want: []string{"first", "second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(tt.entries)))
		})
	}
}

func TestSort_PositionsSkipIneligible(t *testing.T) {
	entries := []contracts.RankingEntry{
		entry("a", 0, 2.0, 0, 0, true),
		entry("b", 1, 1.5, 0, 0, false),
		entry("c", 2, 1.0, 0, 0, true),
		entry("d", 3, 0.0, 0, 0, false),
	}

	ranked := Sort(entries)
	require.Equal(t, []string{"a", "b", "c", "d"}, ids(ranked))

	require.NotNil(t, ranked[0].Position)
	assert.Equal(t, 1, *ranked[0].Position)
	assert.Nil(t, ranked[1].Position)
	require.NotNil(t, ranked[2].Position)
	assert.Equal(t, 2, *ranked[2].Position)
	assert.Nil(t, ranked[3].Position)

	assert.Equal(t, 2, PositionedCount(ranked))
}

func TestSort_MonotonicAndPure(t *testing.T) {
	entries := []contracts.RankingEntry{
		entry("a", 0, 0.3, 0, 0, true),
		entry("b", 1, 1.1, 0, 0, true),
		entry("c", 2, 0.7, 0, 0, true),
		entry("d", 3, 1.1, 1, 0, true),
	}
	original := make([]contracts.RankingEntry, len(entries))
	copy(original, entries)

	ranked := Sort(entries)
	for i := 0; i+1 < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i].FinalAverage, ranked[i+1].FinalAverage)
	}

	// input untouched
	assert.Equal(t, original, entries)
	assert.Equal(t, ranked, Sort(entries))
}

func TestSort_Empty(t *testing.T) {
	assert.Empty(t, Sort(nil))
}
