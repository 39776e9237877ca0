package importer

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/liga/backend/internal/contracts"
)

var (
	setScoreRegex  = regexp.MustCompile(`^(\d+)-(\d+)(?:\(\d+\))?$`)
	cancelledWords = []string{"cancel", "anulado", "suspendido"}
)

// ParseResultsHTML reads a published results page.
// Every table row with at least three cells is a match: player A, player B, score.
// A cell's data-player attribute (on the cell or its link) is the player id, its text the display name.
// Enrollments are taken in order of first appearance.
func ParseResultsHTML(r io.Reader) (*contracts.Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse results HTML: %w", err)
	}

	snapshot := &contracts.Snapshot{
		Enrollments: []contracts.Enrollment{},
		Matches:     []contracts.MatchRecord{},
	}
	seen := make(map[string]struct{})
	enroll := func(id, ref string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		snapshot.Enrollments = append(snapshot.Enrollments, contracts.Enrollment{PlayerID: id, PlayerRef: ref})
	}

	var parseErr error
	doc.Find("table tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 3 {
			return true // header or layout row
		}

		idA, refA := playerCell(cells.Eq(0))
		idB, refB := playerCell(cells.Eq(1))
		index := len(snapshot.Matches)

		match, err := parseScore(index, strings.TrimSpace(cells.Eq(2).Text()))
		if err != nil {
			parseErr = err
			return false
		}
		if status, ok := tr.Attr("data-status"); ok && status != "" {
			match.Status = contracts.MatchStatus(strings.ToLower(strings.TrimSpace(status)))
		}
		match.Players = [2]string{idA, idB}

		enroll(idA, refA)
		enroll(idB, refB)
		snapshot.Matches = append(snapshot.Matches, match)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return snapshot, nil
}

func playerCell(s *goquery.Selection) (id, ref string) {
	ref = strings.TrimSpace(s.Text())
	if v, ok := s.Attr("data-player"); ok && v != "" {
		return strings.TrimSpace(v), ref
	}
	if v, ok := s.Find("[data-player]").First().Attr("data-player"); ok && v != "" {
		return strings.TrimSpace(v), ref
	}
	return ref, ref
}

// parseScore turns "6-4 3-6 7-6(5)" into set and game counts.
// Empty means pending; a cancellation word means cancelled.
func parseScore(index int, score string) (contracts.MatchRecord, error) {
	if score == "" {
		return contracts.MatchRecord{Status: contracts.MatchPending}, nil
	}

	lower := strings.ToLower(score)
	for _, w := range cancelledWords {
		if strings.Contains(lower, w) {
			return contracts.MatchRecord{Status: contracts.MatchCancelled}, nil
		}
	}

	m := contracts.MatchRecord{Status: contracts.MatchPlayed}
	sets := strings.Fields(strings.ReplaceAll(score, ",", " "))
	for _, set := range sets {
		parts := setScoreRegex.FindStringSubmatch(set)
		if parts == nil {
			return contracts.MatchRecord{}, &contracts.InputError{
				Record: "match", Index: index, Field: "score",
				Message: fmt.Sprintf("cannot read set %q", set),
			}
		}
		a, _ := strconv.Atoi(parts[1])
		b, _ := strconv.Atoi(parts[2])

		m.GamesWonA += a
		m.GamesWonB += b
		switch {
		case a > b:
			m.SetsWonA++
		case b > a:
			m.SetsWonB++
		}
	}
	return m, nil
}
