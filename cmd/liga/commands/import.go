package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/liga/backend/internal/brain"
	"github.com/wonny/liga/backend/internal/importer"
)

// importCmd loads snapshot files into the database
var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "스냅샷 가져오기 (DB 저장)",
	Long: `Load division snapshots from JSON, XLSX or HTML files into the database.

Missing ids fall back to --stage (or $LEAGUE_STAGE) and the file name.
With --recompute every imported division is recomputed right away.

Examples:
  go run ./cmd/liga import primera.json segunda.xlsx --stage clausura
  go run ./cmd/liga import results.html --stage clausura --division tercera --recompute`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

// convertCmd rewrites a snapshot in another format
var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "스냅샷 형식 변환 (JSON ↔ XLSX)",
	Long: `Convert a snapshot between formats. The output format follows the
output file extension: .json or .xlsx. HTML pages can only be read.

Example:
  go run ./cmd/liga convert results.html primera.xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

var (
	importStage     string
	importDivision  string
	importRecompute bool
)

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(convertCmd)

	importCmd.Flags().StringVar(&importStage, "stage", "", "stage id (overrides the files)")
	importCmd.Flags().StringVar(&importDivision, "division", "", "division id (single file only)")
	importCmd.Flags().BoolVar(&importRecompute, "recompute", false, "recompute imported divisions")
}

func runImport(cmd *cobra.Command, args []string) error {
	if importDivision != "" && len(args) > 1 {
		return fmt.Errorf("--division needs exactly one file")
	}

	rt, err := newRuntime(nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.db == nil {
		return fmt.Errorf("DATABASE_URL is required to import snapshots")
	}

	out := cmd.OutOrStdout()
	for _, path := range args {
		snapshot, err := loadSnapshotFile(path, importStage, importDivision, rt.cfg.League.StageID)
		if err != nil {
			return err
		}
		if snapshot.StageID == "" {
			return fmt.Errorf("%s: stage id missing (use --stage or LEAGUE_STAGE)", path)
		}

		if err := rt.writer.SaveSnapshot(cmd.Context(), snapshot); err != nil {
			return fmt.Errorf("save %s: %w", snapshot.Key(), err)
		}
		PrintSuccess(out, fmt.Sprintf("%s: %d enrollments, %d matches → %s",
			path, len(snapshot.Enrollments), len(snapshot.Matches), snapshot.Key()))

		if !importRecompute {
			continue
		}
		result, err := rt.orchestrator.RecomputeDivision(cmd.Context(), brain.TriggerCLI, snapshot.StageID, snapshot.DivisionID)
		if err != nil {
			return fmt.Errorf("recompute %s: %w", snapshot.Key(), err)
		}
		PrintKeyValue(out, "Run", result.RunID, 4)
	}

	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, outPath := args[0], args[1]

	ext := strings.ToLower(filepath.Ext(outPath))
	if ext != ".json" && ext != ".xlsx" {
		return fmt.Errorf("unsupported output format %q (.json, .xlsx)", ext)
	}

	snapshot, err := importer.LoadFile(in)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	if ext == ".json" {
		err = importer.EncodeSnapshot(f, snapshot)
	} else {
		err = importer.WriteWorkbook(f, snapshot)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s → %s (%d enrollments, %d matches)",
		in, outPath, len(snapshot.Enrollments), len(snapshot.Matches)))
	return nil
}
