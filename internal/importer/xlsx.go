package importer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/liga/backend/internal/contracts"
)

// Workbook sheet names
const (
	SheetEnrollments = "Enrollments"
	SheetMatches     = "Matches"
)

var (
	enrollmentColumns = []string{"player_id", "player_ref"}
	matchColumns      = []string{"player_a", "player_b", "sets_won_a", "sets_won_b", "games_won_a", "games_won_b", "status"}
)

// ReadWorkbook parses a results workbook with an Enrollments and a Matches sheet.
// Both sheets start with a header row; columns are located by header name.
// Enrollment order follows row order.
func ReadWorkbook(data []byte) (*contracts.Snapshot, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	enrollRows, err := sheetRows(f, SheetEnrollments)
	if err != nil {
		return nil, err
	}
	matchRows, err := sheetRows(f, SheetMatches)
	if err != nil {
		return nil, err
	}

	enrollments, err := parseEnrollmentRows(enrollRows)
	if err != nil {
		return nil, err
	}
	docs, err := parseMatchRows(matchRows)
	if err != nil {
		return nil, err
	}
	matches, err := ToRecords(docs)
	if err != nil {
		return nil, err
	}

	return &contracts.Snapshot{
		Enrollments: enrollments,
		Matches:     matches,
	}, nil
}

// sheetRows finds a sheet by case-insensitive name and returns its rows
func sheetRows(f *excelize.File, name string) ([][]string, error) {
	for _, sheet := range f.GetSheetList() {
		if !strings.EqualFold(sheet, name) {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		return rows, nil
	}
	return nil, &contracts.InputError{Record: "workbook", Index: -1, Field: name, Message: "sheet not found"}
}

// headerIndex maps lower-cased header names to column positions
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseEnrollmentRows(rows [][]string) ([]contracts.Enrollment, error) {
	enrollments := make([]contracts.Enrollment, 0)
	if len(rows) == 0 {
		return enrollments, nil
	}

	cols := headerIndex(rows[0])
	idCol, ok := cols["player_id"]
	if !ok {
		return nil, &contracts.InputError{Record: "enrollment", Index: -1, Field: "player_id", Message: "column missing"}
	}
	refCol, hasRef := cols["player_ref"]
	if !hasRef {
		refCol = -1
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		id := cell(row, idCol)
		ref := cell(row, refCol)
		if ref == "" {
			ref = id
		}
		enrollments = append(enrollments, contracts.Enrollment{PlayerID: id, PlayerRef: ref})
	}
	return enrollments, nil
}

func parseMatchRows(rows [][]string) ([]MatchDocument, error) {
	docs := make([]MatchDocument, 0)
	if len(rows) == 0 {
		return docs, nil
	}

	cols := headerIndex(rows[0])
	for _, required := range matchColumns[:2] {
		if _, ok := cols[required]; !ok {
			return nil, &contracts.InputError{Record: "match", Index: -1, Field: required, Message: "column missing"}
		}
	}
	col := func(name string) int {
		if i, ok := cols[name]; ok {
			return i
		}
		return -1
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		index := len(docs)
		doc := MatchDocument{
			Players: [2]string{cell(row, col("player_a")), cell(row, col("player_b"))},
			Status:  strings.ToLower(cell(row, col("status"))),
		}

		targets := []struct {
			field string
			dst   **int
		}{
			{"sets_won_a", &doc.SetsWonA},
			{"sets_won_b", &doc.SetsWonB},
			{"games_won_a", &doc.GamesWonA},
			{"games_won_b", &doc.GamesWonB},
		}
		scored := false
		for _, t := range targets {
			raw := cell(row, col(t.field))
			if raw == "" {
				continue
			}
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, &contracts.InputError{Record: "match", Index: index, Field: t.field, Message: "must be an integer"}
			}
			*t.dst = &v
			scored = true
		}

		// 상태 칸이 비어 있으면 점수 유무로 판단
		if doc.Status == "" {
			doc.Status = string(contracts.MatchPending)
			if scored {
				doc.Status = string(contracts.MatchPlayed)
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// WriteWorkbook writes a snapshot in the layout ReadWorkbook accepts
func WriteWorkbook(w io.Writer, snapshot *contracts.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetEnrollments); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetMatches); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRow(f, SheetEnrollments, 1, toCells(enrollmentColumns)); err != nil {
		return err
	}
	for i, e := range snapshot.Enrollments {
		if err := writeRow(f, SheetEnrollments, i+2, []interface{}{e.PlayerID, e.PlayerRef}); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetMatches, 1, toCells(matchColumns)); err != nil {
		return err
	}
	for i, m := range snapshot.Matches {
		row := []interface{}{m.Players[0], m.Players[1], m.SetsWonA, m.SetsWonB, m.GamesWonA, m.GamesWonB, string(m.Status)}
		if err := writeRow(f, SheetMatches, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
