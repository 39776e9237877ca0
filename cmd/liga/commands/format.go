package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/liga/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const lineWidth = 59

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("═", lineWidth))
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", lineWidth))
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	cells := make([]string, len(values))
	for i, val := range values {
		cells[i] = fmt.Sprintf("%-*s", widths[i], val)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
}

var standingsColumns = []string{"#", "Player", "PJ", "PG", "Sets", "Games", "Final", "Min", "Zone"}
var standingsWidths = []int{3, 20, 3, 3, 5, 6, 7, 4, 16}

// PrintStandings prints one division's standings as a table
func PrintStandings(w io.Writer, s *contracts.Standings) {
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s / %s\n", orDash(s.StageID), orDash(s.DivisionID))
	PrintSeparator(w)
	PrintKeyValue(w, "Run", s.RunID, 10)
	PrintKeyValue(w, "Quotas", fmt.Sprintf("promotion %d, relegation %d, playoff %d",
		s.Quotas.Promotion, s.Quotas.Relegation, s.Quotas.Playoff), 10)
	PrintSeparator(w)

	PrintTableHeader(w, standingsColumns, standingsWidths)
	for _, e := range s.Ranking {
		position := "-"
		if e.Position != nil {
			position = fmt.Sprintf("%d", *e.Position)
		}
		minimum := "no"
		if e.MeetsMinimum {
			minimum = "yes"
		}
		PrintTableRow(w, []string{
			position,
			truncate(displayName(e), standingsWidths[1]),
			fmt.Sprintf("%d", e.MatchesPlayed),
			fmt.Sprintf("%d", e.MatchesWon),
			fmt.Sprintf("%+d", e.SetsDiff),
			fmt.Sprintf("%+d", e.GamesDiff),
			fmt.Sprintf("%.4f", e.FinalAverage),
			minimum,
			string(s.Zones.ZoneOf(e.PlayerID)),
		}, standingsWidths)
	}
	PrintDoubleSeparator(w)
}

func displayName(e contracts.RankingEntry) string {
	if e.PlayerRef != "" {
		return e.PlayerRef
	}
	return e.PlayerID
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
