package contracts

import "time"

// RankingEntry is the derived standing of one enrolled player.
// Recomputed from scratch on every call, never updated incrementally.
// ⭐ SSOT: S1 → S2 → S3 → S5 랭킹 결과 전달
type RankingEntry struct {
	PlayerID  string `json:"player_id"`
	PlayerRef string `json:"player_ref"`

	// S1 counters
	MatchesPlayed int `json:"matches_played"`
	MatchesWon    int `json:"matches_won"`
	SetsDiff      int `json:"sets_diff"`
	GamesDiff     int `json:"games_diff"`

	// S2 metrics
	IndividualAverage  float64 `json:"individual_average"`
	GeneralAverage     float64 `json:"general_average"`
	ParticipationBonus float64 `json:"participation_bonus"`
	FinalAverage       float64 `json:"final_average"`
	MinimumRequired    float64 `json:"minimum_required"`
	MeetsMinimum       bool    `json:"meets_minimum"`

	// S3: 1-based, nil when the minimum is not met
	Position *int `json:"position"`

	// EnrollmentIndex is the position of the enrollment in the input, the final tie-break
	EnrollmentIndex int `json:"-"`
}

// IsPositioned reports whether the entry received a position
func (e *RankingEntry) IsPositioned() bool {
	return e.Position != nil
}

// IsTopRanked checks if the entry is positioned within the top n
func (e *RankingEntry) IsTopRanked(n int) bool {
	return e.Position != nil && *e.Position <= n && *e.Position > 0
}

// Zone is the movement classification of an entry
type Zone string

const (
	ZoneAscenso         Zone = "ascenso"
	ZonePlayoffAscenso  Zone = "playoff_ascenso"
	ZonePlayoffDescenso Zone = "playoff_descenso"
	ZoneDescenso        Zone = "descenso"
	ZoneInactive        Zone = "inactive"
)

// ZoneAssignment partitions a ranking into movement buckets.
// Entries absent from all four buckets are Inactive.
type ZoneAssignment struct {
	Ascenso         []RankingEntry `json:"ascenso"`
	PlayoffAscenso  []RankingEntry `json:"playoff_ascenso"`
	PlayoffDescenso []RankingEntry `json:"playoff_descenso"`
	Descenso        []RankingEntry `json:"descenso"`
}

// NewZoneAssignment returns an assignment with empty (non-nil) buckets
func NewZoneAssignment() ZoneAssignment {
	return ZoneAssignment{
		Ascenso:         []RankingEntry{},
		PlayoffAscenso:  []RankingEntry{},
		PlayoffDescenso: []RankingEntry{},
		Descenso:        []RankingEntry{},
	}
}

// ZoneOf returns the bucket holding playerID, or ZoneInactive
func (z *ZoneAssignment) ZoneOf(playerID string) Zone {
	buckets := []struct {
		zone    Zone
		entries []RankingEntry
	}{
		{ZoneAscenso, z.Ascenso},
		{ZonePlayoffAscenso, z.PlayoffAscenso},
		{ZonePlayoffDescenso, z.PlayoffDescenso},
		{ZoneDescenso, z.Descenso},
	}
	for _, b := range buckets {
		for i := range b.entries {
			if b.entries[i].PlayerID == playerID {
				return b.zone
			}
		}
	}
	return ZoneInactive
}

// Inactive returns the entries of ranking that are in no bucket, in ranking order
func (z *ZoneAssignment) Inactive(ranking []RankingEntry) []RankingEntry {
	inactive := make([]RankingEntry, 0)
	for _, e := range ranking {
		if z.ZoneOf(e.PlayerID) == ZoneInactive {
			inactive = append(inactive, e)
		}
	}
	return inactive
}

// Size returns the number of classified (non-inactive) entries
func (z *ZoneAssignment) Size() int {
	return len(z.Ascenso) + len(z.PlayoffAscenso) + len(z.PlayoffDescenso) + len(z.Descenso)
}

// Standings is the full result of one recompute for a division/stage snapshot
type Standings struct {
	RunID       string         `json:"run_id"`
	StageID     string         `json:"stage_id"`
	DivisionID  string         `json:"division_id"`
	Fingerprint string         `json:"fingerprint"`
	RulesHash   string         `json:"rules_hash"`
	Ranking     []RankingEntry `json:"ranking"`
	Quotas      Quotas         `json:"quotas"`
	Zones       ZoneAssignment `json:"zones"`
	ComputedAt  time.Time      `json:"computed_at"`
}

// TopN returns the first n positioned entries, for "Top N" displays
func (s *Standings) TopN(n int) []RankingEntry {
	top := make([]RankingEntry, 0, n)
	for _, e := range s.Ranking {
		if e.IsTopRanked(n) {
			top = append(top, e)
		}
	}
	return top
}
