package http

import (
	"net/http"

	"budgetbook/internal/core"
)

type budgetRequest struct {
	Name        string `json:"name"`
	TotalAmount string `json:"totalAmount"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := []budgetDTO{}
	for _, b := range budgets {
		dtos = append(dtos, toBudgetDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	total, err := parseAmount(req.TotalAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.budgets.Create(r.Context(), sanitizeInput(req.Name), total)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetDTO(b))
}

// handleGetBudget serves the budget overview: totals, balance, and
// per-category summaries, recomputed from transactions on each read.
func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if cached, ok := s.overviewCache.Get(overviewKey(id)); ok {
		writeJSON(w, http.StatusOK, toBudgetOverviewDTO(cached))
		return
	}

	overview, err := s.budgets.Overview(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.overviewCache.Set(overviewKey(id), overview)
	writeJSON(w, http.StatusOK, toBudgetOverviewDTO(overview))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req budgetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	total, err := parseAmount(req.TotalAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.budgets.Update(r.Context(), core.Budget{
		ID:          id,
		Name:        sanitizeInput(req.Name),
		TotalAmount: total,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBudget(id)
	writeJSON(w, http.StatusOK, toBudgetDTO(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.budgets.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBudget(id)
	w.WriteHeader(http.StatusNoContent)
}
