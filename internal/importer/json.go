package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wonny/liga/backend/internal/contracts"
)

// snapshotDocument is the wire shape of a snapshot file or request body.
// Match counters are pointers so that an absent field can be told apart from 0.
type snapshotDocument struct {
	StageID       string                   `json:"stage_id"`
	DivisionID    string                   `json:"division_id"`
	Enrollments   []contracts.Enrollment   `json:"enrollments"`
	Matches       []MatchDocument          `json:"matches"`
	Configuration *contracts.Configuration `json:"configuration,omitempty"`
}

// MatchDocument is a match record as it arrives on the wire
type MatchDocument struct {
	Players   [2]string `json:"players"`
	SetsWonA  *int      `json:"sets_won_a"`
	SetsWonB  *int      `json:"sets_won_b"`
	GamesWonA *int      `json:"games_won_a"`
	GamesWonB *int      `json:"games_won_b"`
	Status    string    `json:"status"`
}

// ToRecord converts the wire record at position index.
// Counters are required on played matches; pending and cancelled ones default them to 0.
func (d *MatchDocument) ToRecord(index int) (contracts.MatchRecord, error) {
	if d.Status == "" {
		return contracts.MatchRecord{}, &contracts.InputError{Record: "match", Index: index, Field: "status", Message: "is required"}
	}

	status := contracts.MatchStatus(d.Status)
	counters := []struct {
		field string
		value *int
	}{
		{"sets_won_a", d.SetsWonA},
		{"sets_won_b", d.SetsWonB},
		{"games_won_a", d.GamesWonA},
		{"games_won_b", d.GamesWonB},
	}

	values := make([]int, len(counters))
	for i, c := range counters {
		if c.value == nil {
			if status == contracts.MatchPlayed {
				return contracts.MatchRecord{}, &contracts.InputError{Record: "match", Index: index, Field: c.field, Message: "is required"}
			}
			continue
		}
		values[i] = *c.value
	}

	return contracts.MatchRecord{
		Players:   d.Players,
		SetsWonA:  values[0],
		SetsWonB:  values[1],
		GamesWonA: values[2],
		GamesWonB: values[3],
		Status:    status,
	}, nil
}

// ToRecords converts a list of wire records
func ToRecords(docs []MatchDocument) ([]contracts.MatchRecord, error) {
	records := make([]contracts.MatchRecord, 0, len(docs))
	for i := range docs {
		record, err := docs[i].ToRecord(i)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// DecodeSnapshot reads one snapshot JSON document.
// Shape problems come back as *contracts.InputError; record semantics are left to the pipeline.
func DecodeSnapshot(r io.Reader) (*contracts.Snapshot, error) {
	var doc snapshotDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &contracts.Snapshot{Enrollments: []contracts.Enrollment{}, Matches: []contracts.MatchRecord{}}, nil
		}
		return nil, &contracts.InputError{Record: "snapshot", Index: -1, Field: "body", Message: err.Error()}
	}

	matches, err := ToRecords(doc.Matches)
	if err != nil {
		return nil, err
	}

	enrollments := doc.Enrollments
	if enrollments == nil {
		enrollments = []contracts.Enrollment{}
	}

	return &contracts.Snapshot{
		StageID:       doc.StageID,
		DivisionID:    doc.DivisionID,
		Enrollments:   enrollments,
		Matches:       matches,
		Configuration: doc.Configuration,
	}, nil
}

// EncodeSnapshot writes a snapshot in the same format DecodeSnapshot reads
func EncodeSnapshot(w io.Writer, snapshot *contracts.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
