// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/propensity/internal/app"
	"github.com/okian/propensity/internal/domain/campaign"
	"github.com/okian/propensity/internal/domain/features"
	"github.com/okian/propensity/internal/domain/report"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ReportDependencies
	PreviewDependencies
	PredictDependencies
	SchemaDependencies
}

// ReportDependencies builds the campaign report.
type ReportDependencies interface {
	Report(ctx context.Context) (report.Report, error)
}

// PreviewDependencies exposes the raw dataset head.
type PreviewDependencies interface {
	Preview(ctx context.Context, n int) (campaign.Preview, error)
}

// PredictDependencies scores one prospect.
type PredictDependencies interface {
	Predict(ctx context.Context, values map[string]any) (Prediction, error)
	FormOptions() features.Form
}

// SchemaDependencies exposes the bound model schema.
type SchemaDependencies interface {
	Schema() features.ModelSchema
	FormOptions() features.Form
}

// Prediction mirrors the response of POST /api/v1/predict.
type Prediction = service.Prediction

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	reportHandler  *ReportHandler
	previewHandler *PreviewHandler
	schemaHandler  *SchemaHandler
	predictHandler *PredictHandler
	pagesHandler   *pagesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) (*Server, error) {
	predict, err := NewPredictHandler(deps)
	if err != nil {
		return nil, err
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		reportHandler:  NewReportHandler(deps),
		previewHandler: NewPreviewHandler(deps),
		schemaHandler:  NewSchemaHandler(deps),
		predictHandler: predict,
		pagesHandler:   newPagesHandler(),
	}, nil
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/dashboard", s.pagesHandler.HandleDashboard)
	mux.HandleFunc("/simulator", s.pagesHandler.HandleSimulator)
	mux.HandleFunc("/api/v1/report", MetricsMiddleware(s.reportHandler.HandleGetReport, "report"))
	mux.HandleFunc("/api/v1/preview", MetricsMiddleware(s.previewHandler.HandleGetPreview, "preview"))
	mux.HandleFunc("/api/v1/schema", MetricsMiddleware(s.schemaHandler.HandleGetSchema, "schema"))
	mux.HandleFunc("/api/v1/simulator/options", MetricsMiddleware(s.schemaHandler.HandleGetOptions, "simulator_options"))
	mux.HandleFunc("/api/v1/predict", MetricsMiddleware(s.predictHandler.HandlePostPredict, "predict"))
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Attribute string `json:"attribute,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	resp := errorResponse{Code: code, Message: http.StatusText(status)}
	if err != nil {
		resp.Message = err.Error()
	}
	var alignErr *features.AlignError
	if errors.As(err, &alignErr) {
		resp.Attribute = alignErr.Attribute
	}
	writeJSON(w, status, resp)
}

// writeFailure maps err onto a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, features.ErrUnknownCategoricalAttribute):
		return http.StatusUnprocessableEntity, "unknown_categorical_attribute"
	case errors.Is(err, features.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity, "schema_mismatch"
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// allowMethod rejects requests not using method.
func allowMethod(w http.ResponseWriter, r *http.Request, op, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeFailure(w, NewKind(op, ErrMethodNotAllowed))
	return false
}
