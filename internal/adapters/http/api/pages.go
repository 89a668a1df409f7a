package api

import "net/http"

// pagesHandler serves the embedded dashboard and simulator pages.
type pagesHandler struct{}

func newPagesHandler() *pagesHandler {
	return &pagesHandler{}
}

// HandleDashboard handles GET /dashboard requests. The page renders
// /api/v1/report and /api/v1/preview client-side.
func (h *pagesHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, pagesFS, "dashboard.html")
}

// HandleSimulator handles GET /simulator requests. The form is built from
// /api/v1/simulator/options and submitted to /api/v1/predict.
func (h *pagesHandler) HandleSimulator(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, pagesFS, "simulator.html")
}
