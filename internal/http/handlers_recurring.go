package http

import (
	"net/http"

	"budgetbook/internal/core"
)

type recurringRequest struct {
	CategoryID string `json:"categoryId"`
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	Name       string `json:"name"`
	Every      string `json:"every"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	rules, err := s.recurring.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := []recurringRuleDTO{}
	for _, rule := range rules {
		dtos = append(dtos, toRecurringRuleDTO(rule))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	budgetID := r.PathValue("id")

	var req recurringRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseTimestamp(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseTimestamp(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rule, err := s.recurring.Create(r.Context(), core.RecurringRule{
		BudgetID:   budgetID,
		CategoryID: req.CategoryID,
		Type:       core.TxType(req.Type),
		Amount:     amount,
		Name:       sanitizeInput(req.Name),
		Every:      core.Frequency(req.Every),
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringRuleDTO(rule))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.recurring.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
