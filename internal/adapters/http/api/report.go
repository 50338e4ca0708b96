package api

import (
	"net/http"
)

// ReportHandler serves the latest backtest report.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleGetReport handles GET /report requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.Report(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
