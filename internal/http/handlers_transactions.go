package http

import (
	"net/http"

	"budgetbook/internal/core"
	"budgetbook/internal/services"
)

type transactionRequest struct {
	CategoryID string        `json:"categoryId"`
	Type       string        `json:"type"`
	Amount     string        `json:"amount"`
	Name       string        `json:"name"`
	OccurredAt string        `json:"occurredAt"`
	Author     authorRequest `json:"author"`
}

type authorRequest struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
}

func (s *Server) transactionInput(budgetID string, req transactionRequest) (services.TransactionInput, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return services.TransactionInput{}, err
	}
	occurredAt, err := parseTimestamp(req.OccurredAt)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		BudgetID:   budgetID,
		CategoryID: req.CategoryID,
		Type:       core.TxType(req.Type),
		Amount:     amount,
		Name:       sanitizeInput(req.Name),
		OccurredAt: occurredAt,
		Author: core.Author{
			ID:        req.Author.ID,
			FirstName: sanitizeInput(req.Author.FirstName),
			LastName:  sanitizeInput(req.Author.LastName),
			Username:  sanitizeInput(req.Author.Username),
		},
	}, nil
}

// handleQueryTransactions serves the filtered, paginated transaction
// feed with day groupings.
func (s *Server) handleQueryTransactions(w http.ResponseWriter, r *http.Request) {
	budgetID := r.PathValue("id")

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, pageSize, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.transactions.Query(r.Context(), budgetID, filter, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionPageDTO(res))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	budgetID := r.PathValue("id")

	var req transactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := s.transactionInput(budgetID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.transactions.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBudget(budgetID)
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req transactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := s.transactionInput("", req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.transactions.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBudget(tx.BudgetID)
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tx, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBudget(tx.BudgetID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.transactions.Authors(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := []authorDTO{}
	for _, a := range authors {
		dtos = append(dtos, toAuthorDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}
