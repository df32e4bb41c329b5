package http

import "net/http"

type exportResponse struct {
	Exported int `json:"exported"`
}

// handleExport pushes a budget's full transaction history to the
// configured spreadsheet. Returns 503 when no exporter is configured.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "export is not configured"})
		return
	}

	budgetID := r.PathValue("id")
	budget, err := s.budgets.Get(r.Context(), budgetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.transactions.List(r.Context(), budgetID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := s.exporter.Export(r.Context(), budget, txs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Exported: n})
}
