package standings

import (
	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/s1_stats"
	"github.com/wonny/liga/backend/internal/s2_scores"
	"github.com/wonny/liga/backend/internal/s3_ranking"
	"github.com/wonny/liga/backend/internal/s4_quotas"
	"github.com/wonny/liga/backend/internal/s5_zones"
)

// ComputeRanking runs S1 → S2 → S3 with the default scoring constants.
// Returns one entry per enrollment, sorted, with positions assigned.
// On invalid input no partial ranking is returned.
func ComputeRanking(enrollments []contracts.Enrollment, matches []contracts.MatchRecord) ([]contracts.RankingEntry, error) {
	return ComputeRankingWith(enrollments, matches, s2_scores.DefaultScoring())
}

// ComputeRankingWith is ComputeRanking with explicit scoring constants
func ComputeRankingWith(enrollments []contracts.Enrollment, matches []contracts.MatchRecord, scoring s2_scores.Scoring) ([]contracts.RankingEntry, error) {
	agg, err := s1_stats.Aggregate(enrollments, matches)
	if err != nil {
		return nil, err
	}
	return s3_ranking.Sort(s2_scores.Score(agg, scoring)), nil
}

// ComputeQuotas derives the movement quotas for n ranking entries
func ComputeQuotas(n int, cfg *contracts.Configuration) (contracts.Quotas, error) {
	return s4_quotas.Compute(n, cfg)
}

// ClassifyZones partitions a sorted ranking into movement zones
func ClassifyZones(ranking []contracts.RankingEntry, quotas contracts.Quotas) contracts.ZoneAssignment {
	return s5_zones.Classify(ranking, quotas)
}
