package http

import (
	"net/http"

	"moneylog/internal/aggregate"
	"moneylog/internal/core"
)

type loanView struct {
	core.Loan
	PersonName string                 `json:"personName"`
	Progress   aggregate.LoanProgress `json:"progress"`
}

type loansResponse struct {
	Loans    []loanView             `json:"loans"`
	Overview aggregate.LoanOverview `json:"overview"`
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	doc := s.ledger.Snapshot()

	views := make([]loanView, len(doc.Loans))
	for i, l := range doc.Loans {
		l.Payments = aggregate.SortPaymentsByDateDesc(l.Payments)
		views[i] = loanView{
			Loan:       l,
			PersonName: doc.Names.DisplayName(l.Person),
			Progress:   aggregate.ForLoan(l),
		}
	}

	writeJSON(w, http.StatusOK, loansResponse{
		Loans:    views,
		Overview: aggregate.Loans(doc.Loans),
	})
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var l core.Loan
	if !readJSON(w, r, &l) {
		return
	}

	created, err := s.ledger.AddLoan(l)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteLoan(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p core.Payment
	if !readJSON(w, r, &p) {
		return
	}

	created, err := s.ledger.AddPayment(loanID, p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	paymentID, err := pathID(r, "pid")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeletePayment(loanID, paymentID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type investmentView struct {
	core.Investment
	PersonName string `json:"personName"`
	Total      int64  `json:"total"`
}

type investmentsResponse struct {
	Investments []investmentView `json:"investments"`
	Total       int64            `json:"total"`
	ByPerson    map[string]int64 `json:"byPerson"`
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	doc := s.ledger.Snapshot()

	var total int64
	views := make([]investmentView, len(doc.Investments))
	for i, inv := range doc.Investments {
		sum := aggregate.InvestmentTotal(inv)
		total += sum
		views[i] = investmentView{
			Investment: inv,
			PersonName: doc.Names.DisplayName(inv.Person),
			Total:      sum,
		}
	}

	byPerson := make(map[string]int64)
	for p, sum := range aggregate.InvestmentsByPerson(doc.Investments) {
		byPerson[string(p)] = sum
	}

	writeJSON(w, http.StatusOK, investmentsResponse{
		Investments: views,
		Total:       total,
		ByPerson:    byPerson,
	})
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var inv core.Investment
	if !readJSON(w, r, &inv) {
		return
	}

	created, err := s.ledger.AddInvestment(inv)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteInvestment(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	investmentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var rec core.Record
	if !readJSON(w, r, &rec) {
		return
	}

	created, err := s.ledger.AddRecord(investmentID, rec)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	investmentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recordID, err := pathID(r, "rid")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteRecord(investmentID, recordID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type walletResponse struct {
	Loans       aggregate.LoanOverview `json:"loans"`
	Investments map[string]int64       `json:"investments"`
	NetPosition int64                  `json:"netPosition"`
}

// handleWallet is the combined debt and savings overview: everything owed,
// everything saved, and the difference.
func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	doc := s.ledger.Snapshot()

	overview := aggregate.Loans(doc.Loans)

	var invTotal int64
	byPerson := make(map[string]int64)
	for p, sum := range aggregate.InvestmentsByPerson(doc.Investments) {
		byPerson[string(p)] = sum
		invTotal += sum
	}

	writeJSON(w, http.StatusOK, walletResponse{
		Loans:       overview,
		Investments: byPerson,
		NetPosition: invTotal - overview.TotalRemaining,
	})
}
