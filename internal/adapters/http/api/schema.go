package api

import "net/http"

// SchemaHandler exposes the model schema and the simulator form.
type SchemaHandler struct {
	deps SchemaDependencies
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(deps SchemaDependencies) *SchemaHandler {
	return &SchemaHandler{deps: deps}
}

// HandleGetSchema handles GET /api/v1/schema requests.
func (h *SchemaHandler) HandleGetSchema(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, "api.get_schema", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Schema())
}

// HandleGetOptions handles GET /api/v1/simulator/options requests.
func (h *SchemaHandler) HandleGetOptions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, "api.get_simulator_options", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.FormOptions())
}
