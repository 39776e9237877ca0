package standings

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/liga/backend/internal/contracts"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func enroll(n int) []contracts.Enrollment {
	out := make([]contracts.Enrollment, n)
	for i := range out {
		id := fmt.Sprintf("p%d", i+1)
		out[i] = contracts.Enrollment{PlayerID: id, PlayerRef: "Player " + id}
	}
	return out
}

// roundRobin has p1 beat everyone, p2 beat everyone but p1, and so on
func roundRobin(enrollments []contracts.Enrollment) []contracts.MatchRecord {
	var matches []contracts.MatchRecord
	for i := range enrollments {
		for j := i + 1; j < len(enrollments); j++ {
			matches = append(matches, contracts.MatchRecord{
				Players:   [2]string{enrollments[i].PlayerID, enrollments[j].PlayerID},
				SetsWonA:  2,
				SetsWonB:  0,
				GamesWonA: 12,
				GamesWonB: 5,
				Status:    contracts.MatchPlayed,
			})
		}
	}
	return matches
}

func ids(entries []contracts.RankingEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.PlayerID)
	}
	return out
}

func TestScenario_NoMatchesPlayed(t *testing.T) {
	enrollments := enroll(8)

	ranking, err := ComputeRanking(enrollments, nil)
	require.NoError(t, err)
	require.Len(t, ranking, 8)

	for _, e := range ranking {
		assert.Nil(t, e.Position, e.PlayerID)
		assert.False(t, e.MeetsMinimum, e.PlayerID)
		assert.Zero(t, e.FinalAverage, e.PlayerID)
	}

	quotas, err := ComputeQuotas(len(ranking), &contracts.Configuration{
		PromotionPercentage:  floatPtr(25),
		RelegationPercentage: floatPtr(25),
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.Quotas{Promotion: 2, Relegation: 2, Playoff: 2}, quotas)

	zones := ClassifyZones(ranking, quotas)
	assert.Empty(t, zones.Ascenso)
	assert.Empty(t, zones.PlayoffAscenso)
	assert.Equal(t, []string{"p5", "p6"}, ids(zones.PlayoffDescenso))
	assert.Equal(t, []string{"p7", "p8"}, ids(zones.Descenso))
}

func TestScenario_FullDivision(t *testing.T) {
	enrollments := enroll(10)

	ranking, err := ComputeRanking(enrollments, roundRobin(enrollments))
	require.NoError(t, err)
	require.Len(t, ranking, 10)

	for i, e := range ranking {
		require.True(t, e.MeetsMinimum, e.PlayerID)
		require.NotNil(t, e.Position)
		assert.Equal(t, i+1, *e.Position)
		assert.Equal(t, fmt.Sprintf("p%d", i+1), e.PlayerID)
	}

	quotas, err := ComputeQuotas(len(ranking), &contracts.Configuration{
		PromotionPercentage:  floatPtr(20),
		RelegationPercentage: floatPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, quotas.Promotion)
	assert.Equal(t, 2, quotas.Relegation)

	zones := ClassifyZones(ranking, quotas)
	assert.Equal(t, []string{"p1", "p2"}, ids(zones.Ascenso))
	assert.Equal(t, []string{"p3", "p4"}, ids(zones.PlayoffAscenso))
	assert.Equal(t, []string{"p7", "p8"}, ids(zones.PlayoffDescenso))
	assert.Equal(t, []string{"p9", "p10"}, ids(zones.Descenso))
	assert.Equal(t, []string{"p5", "p6"}, ids(zones.Inactive(ranking)))
}

func TestScenario_SetsDiffBreaksTie(t *testing.T) {
	// y is enrolled before x: without the sets tie-break y would rank first
	enrollments := []contracts.Enrollment{
		{PlayerID: "y"}, {PlayerID: "x"}, {PlayerID: "a"}, {PlayerID: "b"},
	}
	matches := []contracts.MatchRecord{
		{Players: [2]string{"x", "a"}, SetsWonA: 2, SetsWonB: 0, GamesWonA: 12, GamesWonB: 8, Status: contracts.MatchPlayed},
		{Players: [2]string{"y", "b"}, SetsWonA: 2, SetsWonB: 1, GamesWonA: 15, GamesWonB: 11, Status: contracts.MatchPlayed},
	}

	ranking, err := ComputeRanking(enrollments, matches)
	require.NoError(t, err)

	require.Equal(t, "x", ranking[0].PlayerID)
	require.Equal(t, "y", ranking[1].PlayerID)
	assert.Equal(t, ranking[0].FinalAverage, ranking[1].FinalAverage)
	assert.Equal(t, 1, *ranking[0].Position)
	assert.Equal(t, 2, *ranking[1].Position)
}

func TestScenario_FixedSlotsWin(t *testing.T) {
	quotas, err := ComputeQuotas(10, &contracts.Configuration{
		FixedPromotionSlots: intPtr(1),
		PromotionPercentage: floatPtr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, quotas.Promotion)
}

func TestComputeRanking_Deterministic(t *testing.T) {
	enrollments := enroll(6)
	matches := roundRobin(enrollments)
	// a few draws and a cancelled match to exercise every branch
	matches[0].SetsWonB, matches[0].GamesWonB = 2, 12
	matches[3].Status = contracts.MatchCancelled

	first, err := ComputeRanking(enrollments, matches)
	require.NoError(t, err)
	second, err := ComputeRanking(enrollments, matches)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeRanking_Complete(t *testing.T) {
	enrollments := enroll(7)
	matches := roundRobin(enrollments[:3])

	ranking, err := ComputeRanking(enrollments, matches)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, e := range ranking {
		seen[e.PlayerID]++
	}
	assert.Len(t, seen, len(enrollments))
	for _, e := range enrollments {
		assert.Equal(t, 1, seen[e.PlayerID], e.PlayerID)
	}
}

func TestComputeRanking_InvalidInput(t *testing.T) {
	enrollments := enroll(2)
	matches := []contracts.MatchRecord{
		{Players: [2]string{"p1", "p1"}, Status: contracts.MatchPlayed},
	}

	ranking, err := ComputeRanking(enrollments, matches)
	require.Error(t, err)
	assert.Nil(t, ranking)
	assert.True(t, contracts.IsInvalidInput(err))
}

func TestComputeRanking_Empty(t *testing.T) {
	ranking, err := ComputeRanking(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, ranking)

	quotas, err := ComputeQuotas(0, nil)
	require.NoError(t, err)
	assert.Equal(t, contracts.Quotas{Playoff: contracts.DefaultPlayoffSlots}, quotas)

	zones := ClassifyZones(ranking, quotas)
	assert.Zero(t, zones.Size())
}

func TestFingerprint(t *testing.T) {
	enrollments := enroll(4)
	matches := roundRobin(enrollments)
	cfg := &contracts.Configuration{PromotionPercentage: floatPtr(25)}

	a, err := Fingerprint(enrollments, matches, cfg)
	require.NoError(t, err)
	b, err := Fingerprint(enroll(4), roundRobin(enroll(4)), &contracts.Configuration{PromotionPercentage: floatPtr(25)})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	matches[0].GamesWonB++
	c, err := Fingerprint(enrollments, matches, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	// nil and empty slices are the same snapshot
	empty1, err := Fingerprint(nil, nil, nil)
	require.NoError(t, err)
	empty2, err := Fingerprint([]contracts.Enrollment{}, []contracts.MatchRecord{}, nil)
	require.NoError(t, err)
	assert.Equal(t, empty1, empty2)
}
