package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// ReportHandler serves the campaign report.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleGetReport handles GET /api/v1/report requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	if !allowMethod(w, r, op, http.MethodGet) {
		return
	}
	rep, err := h.deps.Report(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// PreviewHandler serves the first rows of the dataset.
type PreviewHandler struct {
	deps PreviewDependencies
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(deps PreviewDependencies) *PreviewHandler {
	return &PreviewHandler{deps: deps}
}

// HandleGetPreview handles GET /api/v1/preview?rows=N requests. A missing
// rows parameter selects the default; large values are clamped.
func (h *PreviewHandler) HandleGetPreview(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_preview"
	if !allowMethod(w, r, op, http.MethodGet) {
		return
	}
	n := 0
	if raw := r.URL.Query().Get("rows"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeFailure(w, WrapKind(op, ErrBadRequest, fmt.Errorf("rows must be a positive integer, got %q", raw)))
			return
		}
		n = v
	}
	preview, err := h.deps.Preview(r.Context(), n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
