package http

import (
	"net/http"

	"budgetbook/internal/core"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Limit string `json:"limit"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	budgetID := r.PathValue("id")
	overviews, err := s.categories.List(r.Context(), budgetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := []categoryDTO{}
	for _, o := range overviews {
		dtos = append(dtos, toCategoryDTO(o))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	budgetID := r.PathValue("id")

	var req categoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := parseAmount(req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.categories.Create(r.Context(), budgetID, sanitizeInput(req.Name), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBudget(budgetID)
	writeJSON(w, http.StatusCreated, toCategoryDTO(categoryOnly(c)))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req categoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := parseAmount(req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.categories.Update(r.Context(), core.Category{
		ID:    id,
		Name:  sanitizeInput(req.Name),
		Limit: limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBudget(c.BudgetID)
	writeJSON(w, http.StatusOK, toCategoryDTO(categoryOnly(c)))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c, err := s.categories.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBudget(c.BudgetID)
	w.WriteHeader(http.StatusNoContent)
}
