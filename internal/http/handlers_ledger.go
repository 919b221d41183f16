package http

import (
	"net/http"

	"moneylog/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if !readJSON(w, r, &tx) {
		return
	}

	created, err := s.ledger.AddTransaction(tx)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateTransaction replaces the stored transaction wholesale; there
// is no field-level patching.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var tx core.Transaction
	if !readJSON(w, r, &tx) {
		return
	}

	updated, err := s.ledger.UpdateTransaction(id, tx)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteTransaction(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type fixedView struct {
	core.FixedExpense
	PersonName  string `json:"personName"`
	AmountLabel string `json:"amountLabel"`
}

func (s *Server) handleListFixed(w http.ResponseWriter, r *http.Request) {
	doc := s.ledger.Snapshot()

	views := make([]fixedView, len(doc.Fixed))
	for i, f := range doc.Fixed {
		views[i] = fixedView{
			FixedExpense: f,
			PersonName:   doc.Names.DisplayName(f.Person),
			AmountLabel:  core.FormatWon(f.Amount),
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateFixed(w http.ResponseWriter, r *http.Request) {
	var f core.FixedExpense
	if !readJSON(w, r, &f) {
		return
	}

	created, err := s.ledger.AddFixed(f)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteFixed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteFixed(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleDeposited(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	toggled, err := s.ledger.ToggleDeposited(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggled)
}
