package s1_stats

import (
	"github.com/wonny/liga/backend/internal/contracts"
)

// ValidateEnrollments rejects empty and duplicate player ids
func ValidateEnrollments(enrollments []contracts.Enrollment) error {
	seen := make(map[string]struct{}, len(enrollments))
	for i, e := range enrollments {
		if e.PlayerID == "" {
			return &contracts.InputError{Record: "enrollment", Index: i, Field: "player_id", Message: "required"}
		}
		if _, dup := seen[e.PlayerID]; dup {
			return &contracts.InputError{Record: "enrollment", Index: i, Field: "player_id", Message: "duplicate player " + e.PlayerID}
		}
		seen[e.PlayerID] = struct{}{}
	}
	return nil
}

// ValidateMatches checks the shape of played records.
// Pending, cancelled and unrecognised statuses are skipped, blank opponents included.
func ValidateMatches(matches []contracts.MatchRecord) error {
	for i := range matches {
		if !matches[i].IsPlayed() {
			continue
		}
		if err := validateMatch(i, &matches[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateMatch(i int, m *contracts.MatchRecord) error {
	if m.Players[0] == "" {
		return &contracts.InputError{Record: "match", Index: i, Field: "players[0]", Message: "required"}
	}
	if m.Players[1] == "" {
		return &contracts.InputError{Record: "match", Index: i, Field: "players[1]", Message: "required"}
	}
	if m.Players[0] == m.Players[1] {
		return &contracts.InputError{Record: "match", Index: i, Field: "players", Message: "a player cannot face itself"}
	}
	counters := []struct {
		field string
		value int
	}{
		{"sets_won_a", m.SetsWonA},
		{"sets_won_b", m.SetsWonB},
		{"games_won_a", m.GamesWonA},
		{"games_won_b", m.GamesWonB},
	}
	for _, c := range counters {
		if c.value < 0 {
			return &contracts.InputError{Record: "match", Index: i, Field: c.field, Message: "must be >= 0"}
		}
	}
	return nil
}
