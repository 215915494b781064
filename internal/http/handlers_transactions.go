package http

import (
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/services"

	"github.com/gorilla/mux"
)

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	in, err := parseCreateRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.ledger.Create(r.Context(), session, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", APIPrefix+"/transactions/"+tx.ID).
		Body(tx).
		Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.ledger.List(r.Context(), session, services.ListQuery{
		Text:  params.Text,
		Type:  params.Type,
		Limit: params.Limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(transactionList{Transactions: txs, Count: len(txs)}).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.ledger.Delete(r.Context(), session, id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
