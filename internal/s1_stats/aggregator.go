package s1_stats

import (
	"github.com/wonny/liga/backend/internal/contracts"
)

// PlayerStats holds the raw counters of one enrolled player
type PlayerStats struct {
	Enrollment      contracts.Enrollment
	EnrollmentIndex int

	MatchesPlayed int
	MatchesWon    int
	SetsWon       int
	SetsLost      int
	GamesWon      int
	GamesLost     int
}

// SetsDiff returns sets won minus sets lost
func (p *PlayerStats) SetsDiff() int {
	return p.SetsWon - p.SetsLost
}

// GamesDiff returns games won minus games lost
func (p *PlayerStats) GamesDiff() int {
	return p.GamesWon - p.GamesLost
}

// Aggregation is the S1 output for one division/stage snapshot
// ⭐ SSOT: S1 → S2 집계 결과 전달
type Aggregation struct {
	Players []PlayerStats // enrollment order

	// TotalMatches counts played matches with at least one enrolled participant
	TotalMatches int
}

// TotalMatchesPlayed sums MatchesPlayed over the population (each match counts once per side)
func (a *Aggregation) TotalMatchesPlayed() int {
	total := 0
	for i := range a.Players {
		total += a.Players[i].MatchesPlayed
	}
	return total
}

// Aggregate folds played matches into per-enrollment counters.
// Every enrollment appears in the output, with zeros when it has no played matches.
// Matches with a status other than played are ignored; participants that are not
// enrolled are ignored as well.
// ⭐ SSOT: S1 집계 로직은 여기서만
func Aggregate(enrollments []contracts.Enrollment, matches []contracts.MatchRecord) (*Aggregation, error) {
	if err := ValidateEnrollments(enrollments); err != nil {
		return nil, err
	}
	if err := ValidateMatches(matches); err != nil {
		return nil, err
	}

	agg := &Aggregation{
		Players: make([]PlayerStats, len(enrollments)),
	}

	index := make(map[string]int, len(enrollments))
	for i, e := range enrollments {
		agg.Players[i] = PlayerStats{Enrollment: e, EnrollmentIndex: i}
		index[e.PlayerID] = i
	}

	for i := range matches {
		m := &matches[i]
		if !m.IsPlayed() {
			continue
		}

		idxA, okA := index[m.Players[0]]
		idxB, okB := index[m.Players[1]]
		if !okA && !okB {
			continue
		}
		agg.TotalMatches++

		winner := m.Winner()
		if okA {
			applyMatch(&agg.Players[idxA], m.SetsWonA, m.SetsWonB, m.GamesWonA, m.GamesWonB, winner == 0)
		}
		if okB {
			applyMatch(&agg.Players[idxB], m.SetsWonB, m.SetsWonA, m.GamesWonB, m.GamesWonA, winner == 1)
		}
	}

	return agg, nil
}

func applyMatch(p *PlayerStats, setsFor, setsAgainst, gamesFor, gamesAgainst int, won bool) {
	p.MatchesPlayed++
	if won {
		p.MatchesWon++
	}
	p.SetsWon += setsFor
	p.SetsLost += setsAgainst
	p.GamesWon += gamesFor
	p.GamesLost += gamesAgainst
}
