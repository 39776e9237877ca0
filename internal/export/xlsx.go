package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/liga/backend/internal/contracts"
)

// Sheet names of the standings workbook
const (
	SheetStandings = "Standings"
	SheetQuotas    = "Quotas"
)

var standingsHeader = []interface{}{
	"position", "player_id", "player_ref", "zone",
	"matches_played", "matches_won", "sets_diff", "games_diff",
	"individual_average", "general_average", "participation_bonus", "final_average",
	"minimum_required", "meets_minimum",
}

// WriteXLSX writes standings as a workbook: one row per ranking entry in ranking order,
// plus a Quotas sheet with the run metadata
func WriteXLSX(w io.Writer, s *contracts.Standings) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetStandings); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetQuotas); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := setRow(f, SheetStandings, 1, standingsHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetStandings, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, e := range s.Ranking {
		var position interface{} = ""
		if e.Position != nil {
			position = *e.Position
		}
		row := []interface{}{
			position, e.PlayerID, e.PlayerRef, string(s.Zones.ZoneOf(e.PlayerID)),
			e.MatchesPlayed, e.MatchesWon, e.SetsDiff, e.GamesDiff,
			e.IndividualAverage, e.GeneralAverage, e.ParticipationBonus, e.FinalAverage,
			e.MinimumRequired, e.MeetsMinimum,
		}
		if err := setRow(f, SheetStandings, i+2, row); err != nil {
			return err
		}
	}

	meta := [][]interface{}{
		{"stage_id", s.StageID},
		{"division_id", s.DivisionID},
		{"run_id", s.RunID},
		{"computed_at", s.ComputedAt.UTC().Format("2006-01-02T15:04:05Z")},
		{"promotion", s.Quotas.Promotion},
		{"relegation", s.Quotas.Relegation},
		{"playoff", s.Quotas.Playoff},
		{"rules_hash", s.RulesHash},
	}
	for i, row := range meta {
		if err := setRow(f, SheetQuotas, i+1, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
