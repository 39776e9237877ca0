package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/liga/backend/internal/brain"
	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/export"
	"github.com/wonny/liga/backend/pkg/logger"
)

// ExportHandler renders the latest standings as files
type ExportHandler struct {
	orchestrator *brain.Orchestrator
	logger       *logger.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(orchestrator *brain.Orchestrator, log *logger.Logger) *ExportHandler {
	return &ExportHandler{
		orchestrator: orchestrator,
		logger:       log,
	}
}

// XLSX downloads the latest standings as a workbook
// GET /api/stages/{stage}/divisions/{division}/standings.xlsx
func (h *ExportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	s, err := latestFromRequest(h.orchestrator, r)
	if err != nil {
		respondErr(w, h.logger, err, "Failed to get standings")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, s); err != nil {
		respondErr(w, h.logger, err, "Failed to export standings")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.xlsx"`, s.StageID, s.DivisionID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Chart renders the latest standings as a PNG bar chart
// GET /api/stages/{stage}/divisions/{division}/chart.png
func (h *ExportHandler) Chart(w http.ResponseWriter, r *http.Request) {
	s, err := latestFromRequest(h.orchestrator, r)
	if err != nil {
		respondErr(w, h.logger, err, "Failed to get standings")
		return
	}

	img, err := export.RenderChart(s)
	if err != nil {
		respondErr(w, h.logger, err, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func latestFromRequest(o *brain.Orchestrator, r *http.Request) (*contracts.Standings, error) {
	vars := mux.Vars(r)
	return o.Latest(r.Context(), vars["stage"], vars["division"])
}
