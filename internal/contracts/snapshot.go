package contracts

import "fmt"

// Snapshot is a consistent view of one division/stage: everything a recompute needs.
// Mixing partial state from different reads inside one Snapshot is the caller's bug.
type Snapshot struct {
	StageID     string        `json:"stage_id"`
	DivisionID  string        `json:"division_id"`
	Enrollments []Enrollment  `json:"enrollments"`
	Matches     []MatchRecord `json:"matches"`

	// Division-specific configuration, falling back to stage-wide; nil = system defaults
	Configuration *Configuration `json:"configuration,omitempty"`
}

// Key identifies the division/stage pair
func (s *Snapshot) Key() string {
	return fmt.Sprintf("%s:%s", s.StageID, s.DivisionID)
}

// PlayedMatches returns only the matches with status played
func (s *Snapshot) PlayedMatches() []MatchRecord {
	played := make([]MatchRecord, 0, len(s.Matches))
	for _, m := range s.Matches {
		if m.IsPlayed() {
			played = append(played, m)
		}
	}
	return played
}
