// Package server exposes the state store over HTTP.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vigia-dev/vigia/internal/advisor"
	"github.com/vigia-dev/vigia/internal/store"
)

// Server routes API requests to the store and, for the assistant endpoint,
// to the intent classifier.
type Server struct {
	store      *store.Store
	classifier *advisor.Classifier
	log        zerolog.Logger
}

// New creates a Server. classifier may be nil; the assistant endpoint then
// reports itself unavailable.
func New(st *store.Store, classifier *advisor.Classifier, log zerolog.Logger) *Server {
	return &Server{store: st, classifier: classifier, log: log}
}

// Handler builds the full HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/audit", s.handleAuditLog).Methods(http.MethodGet)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleAddTransaction).Methods(http.MethodPost)

	api.HandleFunc("/impulse-blocks", s.handleListImpulseBlocks).Methods(http.MethodGet)
	api.HandleFunc("/impulse-blocks/{id}/confirm", s.handleImpulseAction(store.ImpulseConfirm)).Methods(http.MethodPost)
	api.HandleFunc("/impulse-blocks/{id}/delete", s.handleImpulseAction(store.ImpulseDelete)).Methods(http.MethodPost)

	api.HandleFunc("/suspicious", s.handleListSuspicious).Methods(http.MethodGet)
	api.HandleFunc("/suspicious/{id}", s.handleUpdateSuspicious).Methods(http.MethodPatch)

	api.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleAddCategory).Methods(http.MethodPost)

	api.HandleFunc("/goals", s.handleListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.handleAddGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/{id}/contribute", s.handleContributeToGoal).Methods(http.MethodPost)

	api.HandleFunc("/bills", s.handleListBills).Methods(http.MethodGet)
	api.HandleFunc("/bills", s.handleAddBill).Methods(http.MethodPost)
	api.HandleFunc("/bills/generate", s.handleGenerateBills).Methods(http.MethodPost)
	api.HandleFunc("/bills/{id}/pay", s.handlePayBill).Methods(http.MethodPost)
	api.HandleFunc("/bills/{id}/calendar.ics", s.handleBillCalendar).Methods(http.MethodGet)

	api.HandleFunc("/scheduled-payments", s.handleListScheduledPayments).Methods(http.MethodGet)
	api.HandleFunc("/scheduled-payments", s.handleAddScheduledPayment).Methods(http.MethodPost)
	api.HandleFunc("/scheduled-payments/{id}", s.handleUpdateScheduledPayment).Methods(http.MethodPut)
	api.HandleFunc("/scheduled-payments/{id}", s.handleDeleteScheduledPayment).Methods(http.MethodDelete)

	api.HandleFunc("/members", s.handleListMembers).Methods(http.MethodGet)
	api.HandleFunc("/members", s.handleInviteMember).Methods(http.MethodPost)
	api.HandleFunc("/members/{id}", s.handleUpdateMemberPermission).Methods(http.MethodPatch)
	api.HandleFunc("/members/{id}", s.handleRemoveMember).Methods(http.MethodDelete)

	api.HandleFunc("/settings/anti-impulse", s.handleToggleAntiImpulse).Methods(http.MethodPost)
	api.HandleFunc("/settings/plan", s.handleSetPlan).Methods(http.MethodPost)
	api.HandleFunc("/settings/budget", s.handleSetBudget).Methods(http.MethodPost)

	api.HandleFunc("/export/transactions.csv", s.handleExportTransactions).Methods(http.MethodGet)

	api.HandleFunc("/assistant", s.handleAssistant).Methods(http.MethodPost)

	var h http.Handler = r
	h = CORS(h)
	h = Logger(s.log)(h)
	h = Recovery(s.log)(h)
	return h
}
