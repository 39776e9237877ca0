package s2_scores

import (
	"math"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/s1_stats"
)

// Scoring holds the constants of the score formula
type Scoring struct {
	// ParticipationBonus is added to the final average of anyone with at least one played match
	ParticipationBonus float64 `yaml:"participation_bonus" json:"participation_bonus"`

	// MinimumRatio scales the division's average matches per player into the minimum requirement
	MinimumRatio float64 `yaml:"minimum_ratio" json:"minimum_ratio"`

	// MinimumFloor is the lowest minimum requirement for a non-empty division
	MinimumFloor float64 `yaml:"minimum_floor" json:"minimum_floor"`
}

// DefaultScoring returns the default scoring constants
func DefaultScoring() Scoring {
	return Scoring{
		ParticipationBonus: 0.1,
		MinimumRatio:       0.5,
		MinimumFloor:       1,
	}
}

// Score computes the published metrics for every aggregated player.
// Runs over the whole population at once: the general average and the
// minimum requirement depend on division totals.
// ⭐ SSOT: S2 점수 계산은 여기서만
func Score(agg *s1_stats.Aggregation, scoring Scoring) []contracts.RankingEntry {
	entries := make([]contracts.RankingEntry, 0, len(agg.Players))
	minimum := MinimumRequired(agg, scoring)
	threshold := int(math.Ceil(minimum))

	for i := range agg.Players {
		p := &agg.Players[i]

		individual := ratio(p.MatchesWon, p.MatchesPlayed)
		general := ratio(p.MatchesWon, agg.TotalMatches)

		bonus := 0.0
		if p.MatchesPlayed > 0 {
			bonus = scoring.ParticipationBonus
		}

		entries = append(entries, contracts.RankingEntry{
			PlayerID:           p.Enrollment.PlayerID,
			PlayerRef:          p.Enrollment.PlayerRef,
			MatchesPlayed:      p.MatchesPlayed,
			MatchesWon:         p.MatchesWon,
			SetsDiff:           p.SetsDiff(),
			GamesDiff:          p.GamesDiff(),
			IndividualAverage:  individual,
			GeneralAverage:     general,
			ParticipationBonus: bonus,
			FinalAverage:       individual + general + bonus,
			MinimumRequired:    minimum,
			MeetsMinimum:       p.MatchesPlayed >= threshold,
			EnrollmentIndex:    p.EnrollmentIndex,
		})
	}

	return entries
}

// MinimumRequired returns the division-wide threshold on matches played:
// the average matches per enrolled player scaled by MinimumRatio, never below MinimumFloor.
// Identical for every player of the same snapshot; 0 for an empty division.
func MinimumRequired(agg *s1_stats.Aggregation, scoring Scoring) float64 {
	n := len(agg.Players)
	if n == 0 {
		return 0
	}

	expected := float64(agg.TotalMatchesPlayed()) / float64(n)
	return math.Max(expected*scoring.MinimumRatio, scoring.MinimumFloor)
}

// ratio divides, returning 0 when the denominator is 0
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
