package realtime

import (
	"fmt"

	"github.com/wonny/liga/backend/internal/contracts"
)

// Message types pushed to live displays
const (
	TypeStandings = "standings"
	TypeHello     = "hello"
)

// Message is one frame sent to a websocket client
// ⭐ SSOT: 실시간 메시지 구조
type Message struct {
	Key     string      `json:"-"` // stage:division, empty = every client
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// StandingsUpdate is the payload of a standings message
type StandingsUpdate struct {
	StageID    string                   `json:"stage_id"`
	DivisionID string                   `json:"division_id"`
	RunID      string                   `json:"run_id"`
	Ranking    []contracts.RankingEntry `json:"ranking"`
	Zones      contracts.ZoneAssignment `json:"zones"`
	Quotas     contracts.Quotas         `json:"quotas"`
}

// NewStandingsMessage wraps computed standings for broadcast to the division's viewers
func NewStandingsMessage(s *contracts.Standings) *Message {
	return &Message{
		Key:  DivisionKey(s.StageID, s.DivisionID),
		Type: TypeStandings,
		Payload: StandingsUpdate{
			StageID:    s.StageID,
			DivisionID: s.DivisionID,
			RunID:      s.RunID,
			Ranking:    s.Ranking,
			Zones:      s.Zones,
			Quotas:     s.Quotas,
		},
	}
}

// DivisionKey identifies a division subscription
func DivisionKey(stageID, divisionID string) string {
	return fmt.Sprintf("%s:%s", stageID, divisionID)
}
