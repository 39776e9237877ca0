package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/export"
	"github.com/wonny/liga/backend/pkg/config"
)

// exportCmd writes standings as a workbook or a chart
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "순위표 내보내기 (XLSX / PNG)",
	Long: `Export division standings as an XLSX workbook or a PNG bar chart.

With --input the standings are computed from a snapshot file.
Without it the latest saved standings of --stage/--division are
read from the database (DATABASE_URL required).

Examples:
  go run ./cmd/liga export --input primera.json --out primera.xlsx
  go run ./cmd/liga export --input primera.json --format png --out primera.png
  go run ./cmd/liga export --stage clausura --division primera --out primera.xlsx`,
	RunE: runExport,
}

var (
	exportInput    string
	exportStage    string
	exportDivision string
	exportFormat   string
	exportOut      string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "snapshot file (.json, .xlsx, .html)")
	exportCmd.Flags().StringVar(&exportStage, "stage", "", "stage id")
	exportCmd.Flags().StringVar(&exportDivision, "division", "", "division id")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "xlsx or png (default from --out extension, else xlsx)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file")
	_ = exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := exportFormat
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(exportOut)), ".")
		if format != "png" {
			format = "xlsx"
		}
	}
	if format != "xlsx" && format != "png" {
		return fmt.Errorf("unknown export format %q (xlsx, png)", format)
	}

	result, err := exportStandings(cmd)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		png, err := export.RenderChart(result)
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		buf.Write(png)
	default:
		if err := export.WriteXLSX(&buf, result); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
	}

	if err := os.WriteFile(exportOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s/%s → %s", orDash(result.StageID), orDash(result.DivisionID), exportOut))
	return nil
}

// exportStandings computes from --input, or reads the latest saved run
func exportStandings(cmd *cobra.Command) (*contracts.Standings, error) {
	if exportInput != "" {
		cfg, err := config.LoadLocal()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		log := newLogger(cfg, cmd.ErrOrStderr())

		engine, err := loadEngine(cfg, log)
		if err != nil {
			return nil, err
		}
		snapshot, err := loadSnapshotFile(exportInput, exportStage, exportDivision, cfg.League.StageID)
		if err != nil {
			return nil, err
		}
		return engine.Compute(snapshot)
	}

	if exportStage == "" || exportDivision == "" {
		return nil, fmt.Errorf("--input or both --stage and --division are required")
	}

	rt, err := newRuntime(nil)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	if rt.db == nil {
		return nil, fmt.Errorf("DATABASE_URL is required to export saved standings")
	}
	return rt.orchestrator.Latest(cmd.Context(), exportStage, exportDivision)
}
