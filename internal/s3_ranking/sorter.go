package s3_ranking

import (
	"sort"

	"github.com/wonny/liga/backend/internal/contracts"
)

// Sort orders entries by final average (descending) and assigns positions.
// Ties on final average fall back to sets difference, then games difference,
// then enrollment order. Only entries meeting the minimum receive a position,
// numbered 1..k without gaps; the others stay in the list with a nil position.
// The input slice is not modified.
// ⭐ SSOT: S3 정렬/순위 로직은 여기서만
func Sort(entries []contracts.RankingEntry) []contracts.RankingEntry {
	ranked := make([]contracts.RankingEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return Less(&ranked[i], &ranked[j])
	})

	position := 0
	for i := range ranked {
		ranked[i].Position = nil
		if !ranked[i].MeetsMinimum {
			continue
		}
		position++
		p := position
		ranked[i].Position = &p
	}

	return ranked
}

// Less reports whether a ranks strictly above b
func Less(a, b *contracts.RankingEntry) bool {
	if a.FinalAverage != b.FinalAverage {
		return a.FinalAverage > b.FinalAverage
	}
	if a.SetsDiff != b.SetsDiff {
		return a.SetsDiff > b.SetsDiff
	}
	if a.GamesDiff != b.GamesDiff {
		return a.GamesDiff > b.GamesDiff
	}
	return a.EnrollmentIndex < b.EnrollmentIndex
}

// PositionedCount returns how many entries received a position
func PositionedCount(ranked []contracts.RankingEntry) int {
	n := 0
	for i := range ranked {
		if ranked[i].IsPositioned() {
			n++
		}
	}
	return n
}
