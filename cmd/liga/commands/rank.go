package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/importer"
	"github.com/wonny/liga/backend/pkg/config"
	"github.com/wonny/liga/backend/pkg/httputil"
)

// rankCmd computes one division's standings offline
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "순위/쿼터/존 계산 (오프라인)",
	Long: `Compute ranking, quotas and zones for one division snapshot.

The snapshot can be a JSON document, an XLSX workbook with
Enrollments and Matches sheets, a saved HTML results page, or a
results page fetched over HTTP. Nothing is persisted.

Examples:
  go run ./cmd/liga rank --input primera.json
  go run ./cmd/liga rank --matches results.xlsx --stage clausura --division primera
  go run ./cmd/liga rank --html results.html --output table
  go run ./cmd/liga rank --url https://club.example.org/primera.html`,
	RunE: runRank,
}

var (
	rankInput    string
	rankMatches  string
	rankHTML     string
	rankURL      string
	rankStage    string
	rankDivision string
	rankOutput   string
)

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVarP(&rankInput, "input", "i", "", "snapshot file (.json, .xlsx, .html)")
	rankCmd.Flags().StringVar(&rankMatches, "matches", "", "XLSX workbook with Enrollments and Matches sheets")
	rankCmd.Flags().StringVar(&rankHTML, "html", "", "saved HTML results page")
	rankCmd.Flags().StringVar(&rankURL, "url", "", "results page URL")
	rankCmd.Flags().StringVar(&rankStage, "stage", "", "stage id (overrides the snapshot)")
	rankCmd.Flags().StringVar(&rankDivision, "division", "", "division id (overrides the snapshot)")
	rankCmd.Flags().StringVarP(&rankOutput, "output", "o", "json", "output format: json, table")
}

func runRank(cmd *cobra.Command, args []string) error {
	if rankOutput != "json" && rankOutput != "table" {
		return fmt.Errorf("unknown output format %q (json, table)", rankOutput)
	}

	cfg, err := config.LoadLocal()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	engine, err := loadEngine(cfg, log)
	if err != nil {
		return err
	}

	var snapshot *contracts.Snapshot
	switch sources := countSet(rankInput, rankMatches, rankHTML, rankURL); {
	case sources == 0:
		return fmt.Errorf("one of --input, --matches, --html or --url is required")
	case sources > 1:
		return fmt.Errorf("--input, --matches, --html and --url are mutually exclusive")
	case rankURL != "":
		snapshot, err = importer.FetchResults(cmd.Context(), httputil.New(log), rankURL)
		if err == nil {
			applyIDs(snapshot, rankStage, rankDivision, cfg.League.StageID)
		}
	default:
		path := rankInput + rankMatches + rankHTML
		snapshot, err = loadSnapshotFile(path, rankStage, rankDivision, cfg.League.StageID)
	}
	if err != nil {
		return err
	}

	result, err := engine.Compute(snapshot)
	if err != nil {
		return fmt.Errorf("compute %s: %w", snapshot.Key(), err)
	}

	return writeStandings(cmd.OutOrStdout(), result, rankOutput)
}

func writeStandings(w io.Writer, s *contracts.Standings, format string) error {
	if format == "table" {
		PrintStandings(w, s)
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func applyIDs(snapshot *contracts.Snapshot, stageID, divisionID, fallbackStage string) {
	if stageID != "" {
		snapshot.StageID = stageID
	}
	if divisionID != "" {
		snapshot.DivisionID = divisionID
	}
	if snapshot.StageID == "" {
		snapshot.StageID = fallbackStage
	}
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
