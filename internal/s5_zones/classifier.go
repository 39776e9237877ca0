package s5_zones

import (
	"github.com/wonny/liga/backend/internal/contracts"
)

// Classify partitions a sorted ranking into movement zones.
//
// Order of assignment, each step drawing only from entries not yet assigned:
//   - Ascenso: positioned entries 1..Promotion. Entries below the minimum never
//     consume a slot and are never promoted; missing eligible players leave slots empty.
//   - Descenso: the bottom Relegation entries, whether or not they meet the minimum.
//   - PlayoffAscenso: the next Playoff positioned entries below the ascenso cut.
//   - PlayoffDescenso: the Playoff entries right above the descenso cut, minimum ignored.
//
// A playoff buffer only exists for a direction with at least one slot.
// Everything else is Inactive.
// ⭐ SSOT: S5 구역 분류는 여기서만
func Classify(ranking []contracts.RankingEntry, quotas contracts.Quotas) contracts.ZoneAssignment {
	zones := contracts.NewZoneAssignment()
	if len(ranking) == 0 {
		return zones
	}

	assigned := make([]bool, len(ranking))

	// Ascenso (top-down)
	ascensoCut := -1
	for i := range ranking {
		if len(zones.Ascenso) >= quotas.Promotion {
			break
		}
		if !ranking[i].IsPositioned() {
			continue
		}
		zones.Ascenso = append(zones.Ascenso, ranking[i])
		assigned[i] = true
		ascensoCut = i
	}

	// Descenso (bottom-up, remaining pool)
	descensoCut := len(ranking)
	descenso := make([]contracts.RankingEntry, 0, max(quotas.Relegation, 0))
	for i := len(ranking) - 1; i >= 0 && len(descenso) < quotas.Relegation; i-- {
		if assigned[i] {
			continue
		}
		descenso = append(descenso, ranking[i])
		assigned[i] = true
		descensoCut = i
	}
	zones.Descenso = reversed(descenso)

	// Playoff buffers
	if quotas.Promotion > 0 {
		for i := ascensoCut + 1; i < len(ranking) && len(zones.PlayoffAscenso) < quotas.Playoff; i++ {
			if assigned[i] || !ranking[i].IsPositioned() {
				continue
			}
			zones.PlayoffAscenso = append(zones.PlayoffAscenso, ranking[i])
			assigned[i] = true
		}
	}

	if quotas.Relegation > 0 {
		playoff := make([]contracts.RankingEntry, 0, max(quotas.Playoff, 0))
		for i := descensoCut - 1; i >= 0 && len(playoff) < quotas.Playoff; i-- {
			if assigned[i] {
				continue
			}
			playoff = append(playoff, ranking[i])
			assigned[i] = true
		}
		zones.PlayoffDescenso = reversed(playoff)
	}

	return zones
}

// reversed returns the entries in ranking order (they are collected bottom-up)
func reversed(entries []contracts.RankingEntry) []contracts.RankingEntry {
	out := make([]contracts.RankingEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
