package contracts

// Enrollment is one active registration of a player in a division for a stage
// ⭐ SSOT: 등록 정보는 외부 저장소에서 이미 조인된 상태로 전달됨
type Enrollment struct {
	PlayerID  string `json:"player_id" yaml:"player_id"`
	PlayerRef string `json:"player_ref" yaml:"player_ref"` // display name / external reference
}

// MatchStatus is the lifecycle state of a match
type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchPlayed    MatchStatus = "played"
	MatchCancelled MatchStatus = "cancelled"
)

// MatchRecord is a single match between two participants.
// Doubles and teams arrive upstream as a single participant id.
type MatchRecord struct {
	Players   [2]string   `json:"players" yaml:"players"`
	SetsWonA  int         `json:"sets_won_a" yaml:"sets_won_a"`
	SetsWonB  int         `json:"sets_won_b" yaml:"sets_won_b"`
	GamesWonA int         `json:"games_won_a" yaml:"games_won_a"`
	GamesWonB int         `json:"games_won_b" yaml:"games_won_b"`
	Status    MatchStatus `json:"status" yaml:"status"`
}

// IsPlayed reports whether the match counts toward standings
func (m *MatchRecord) IsPlayed() bool {
	return m.Status == MatchPlayed
}

// Winner returns the index (0 or 1) of the winning side, or -1 when the
// match is level on both sets and games.
// 세트 우선, 세트 동률이면 게임으로 판정
func (m *MatchRecord) Winner() int {
	switch {
	case m.SetsWonA > m.SetsWonB:
		return 0
	case m.SetsWonB > m.SetsWonA:
		return 1
	case m.GamesWonA > m.GamesWonB:
		return 0
	case m.GamesWonB > m.GamesWonA:
		return 1
	}
	return -1
}

// Side returns 0 or 1 for the given player, or -1 if the player did not take part
func (m *MatchRecord) Side(playerID string) int {
	switch playerID {
	case m.Players[0]:
		return 0
	case m.Players[1]:
		return 1
	}
	return -1
}
