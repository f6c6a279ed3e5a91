package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/vigia-dev/vigia/internal/export"
	"github.com/vigia-dev/vigia/internal/model"
	"github.com/vigia-dev/vigia/internal/schedule"
	"github.com/vigia-dev/vigia/internal/store"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.store.Summarize())
}

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": s.store.AuditLog()})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns := s.store.Transactions()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txns,
		"count":        len(txns),
	})
}

type transactionRequest struct {
	Type        model.TransactionType `json:"type"`
	Amount      decimal.Decimal       `json:"amount"`
	Description string                `json:"description"`
	CategoryID  string                `json:"categoryId"`
	Date        string                `json:"date"`
	Tags        []string              `json:"tags"`
}

func (req transactionRequest) draft(now time.Time) (model.TransactionDraft, error) {
	date := now
	if req.Date != "" {
		var err error
		date, err = parseDate(req.Date)
		if err != nil {
			return model.TransactionDraft{}, err
		}
	}
	return model.TransactionDraft{
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Date:        date,
		Tags:        req.Tags,
	}, nil
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// handleAddTransaction runs the candidate through the store. A parked
// candidate answers 202 with the impulse block; a committed one answers 201
// with the transaction and, when the post-commit analysis matched, its
// suspicious flag.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	draft, err := req.draft(time.Now())
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := draft.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.store.Dispatch(store.AddTransaction{Draft: draft})
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	if out.Block != nil {
		WriteJSON(w, http.StatusAccepted, map[string]interface{}{"blocked": true, "block": out.Block})
		return
	}
	resp := map[string]interface{}{"blocked": false, "transaction": out.Transaction}
	if out.Flag != nil {
		resp["suspicious"] = out.Flag
	}
	WriteJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListImpulseBlocks(w http.ResponseWriter, r *http.Request) {
	status := model.ImpulseBlockStatus(r.URL.Query().Get("status"))
	blocks := s.store.ImpulseBlocks(status)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": blocks,
		"count":  len(blocks),
	})
}

func (s *Server) handleImpulseAction(action store.ImpulseAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := s.store.Dispatch(store.ProcessImpulseBlock{
			BlockID: mux.Vars(r)["id"],
			Action:  action,
		})
		if err != nil {
			s.writeDispatchError(w, err)
			return
		}
		resp := map[string]interface{}{"block": out.Block}
		if out.Transaction != nil {
			resp["transaction"] = out.Transaction
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleListSuspicious(w http.ResponseWriter, r *http.Request) {
	status := model.SuspiciousStatus(r.URL.Query().Get("status"))
	flags := s.store.SuspiciousFlags(status)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"flags": flags,
		"count": len(flags),
	})
}

func (s *Server) handleUpdateSuspicious(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.SuspiciousStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch req.Status {
	case model.SuspiciousPending, model.SuspiciousConfirmed, model.SuspiciousIgnored:
	default:
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", req.Status))
		return
	}
	out, err := s.store.Dispatch(store.UpdateSuspiciousStatus{ID: mux.Vars(r)["id"], Status: req.Status})
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"flag": out.Flag})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": s.store.Categories()})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if _, err := s.store.Dispatch(store.AddCategory{Name: req.Name, Icon: req.Icon}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{"categories": s.store.Categories()})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"goals": s.store.Goals()})
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string          `json:"name"`
		TargetAmount decimal.Decimal `json:"targetAmount"`
		Deadline     string          `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || !req.TargetAmount.IsPositive() {
		WriteError(w, http.StatusBadRequest, "Name and a positive targetAmount are required")
		return
	}
	deadline := time.Now().AddDate(1, 0, 0)
	if req.Deadline != "" {
		var err error
		deadline, err = parseDate(req.Deadline)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if _, err := s.store.Dispatch(store.AddGoal{Name: req.Name, TargetAmount: req.TargetAmount, Deadline: deadline}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{"goals": s.store.Goals()})
}

func (s *Server) handleContributeToGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Amount.IsPositive() {
		WriteError(w, http.StatusBadRequest, "A positive amount is required")
		return
	}
	if _, err := s.store.Dispatch(store.ContributeToGoal{GoalID: mux.Vars(r)["id"], Amount: req.Amount}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"goals": s.store.Goals()})
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"bills": s.store.Bills()})
}

func (s *Server) handleAddBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string          `json:"name"`
		Amount     decimal.Decimal `json:"amount"`
		DueDate    string          `json:"dueDate"`
		CategoryID string          `json:"categoryId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || !req.Amount.IsPositive() || req.DueDate == "" {
		WriteError(w, http.StatusBadRequest, "Name, a positive amount and dueDate are required")
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.Dispatch(store.AddBill{Name: req.Name, Amount: req.Amount, DueDate: due, CategoryID: req.CategoryID}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{"bills": s.store.Bills()})
}

// handleGenerateBills expands active recurring-payment templates into bills
// due inside the horizon. Safe to call repeatedly.
func (s *Server) handleGenerateBills(w http.ResponseWriter, r *http.Request) {
	horizon := 30 * 24 * time.Hour
	if v := r.URL.Query().Get("horizon_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			WriteError(w, http.StatusBadRequest, "horizon_days must be a positive integer")
			return
		}
		horizon = time.Duration(days) * 24 * time.Hour
	}

	proposed, err := schedule.UpcomingBills(s.store.ScheduledPayments(), s.store.Bills(), time.Now(), horizon)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, b := range proposed {
		if _, err := s.store.Dispatch(store.AddBill{Name: b.Name, Amount: b.Amount, DueDate: b.DueDate, CategoryID: b.CategoryID}); err != nil {
			s.writeDispatchError(w, err)
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"created": len(proposed),
		"bills":   s.store.Bills(),
	})
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	out, err := s.store.Dispatch(store.PayBill{BillID: mux.Vars(r)["id"]})
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"transaction": out.Transaction})
}

func (s *Server) handleBillCalendar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	for _, b := range s.store.Bills() {
		if b.ID == id {
			w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "vigia-"+b.ID+".ics"))
			fmt.Fprint(w, export.BillReminderICS(b, time.Now()))
			return
		}
	}
	WriteError(w, http.StatusNotFound, "Bill not found")
}

func (s *Server) handleListScheduledPayments(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"scheduledPayments": s.store.ScheduledPayments()})
}

func (s *Server) handleAddScheduledPayment(w http.ResponseWriter, r *http.Request) {
	var p model.ScheduledPayment
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := s.store.Dispatch(store.AddScheduledPayment{Payment: p}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{"scheduledPayments": s.store.ScheduledPayments()})
}

func (s *Server) handleUpdateScheduledPayment(w http.ResponseWriter, r *http.Request) {
	var p model.ScheduledPayment
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p.ID = mux.Vars(r)["id"]
	if _, err := s.store.Dispatch(store.UpdateScheduledPayment{Payment: p}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"scheduledPayments": s.store.ScheduledPayments()})
}

func (s *Server) handleDeleteScheduledPayment(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Dispatch(store.DeleteScheduledPayment{ID: mux.Vars(r)["id"]}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"scheduledPayments": s.store.ScheduledPayments()})
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"members": s.store.Members()})
}

func (s *Server) handleInviteMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string           `json:"email"`
		Permission model.Permission `json:"permission"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if req.Permission == "" {
		req.Permission = model.PermissionEditor
	}
	if _, err := s.store.Dispatch(store.InviteMember{Email: req.Email, Permission: req.Permission}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{"members": s.store.Members()})
}

func (s *Server) handleUpdateMemberPermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Permission model.Permission `json:"permission"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := s.store.Dispatch(store.UpdateMemberPermission{MemberID: mux.Vars(r)["id"], Permission: req.Permission}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"members": s.store.Members()})
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Dispatch(store.RemoveMember{MemberID: mux.Vars(r)["id"]}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"members": s.store.Members()})
}

func (s *Server) handleToggleAntiImpulse(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Dispatch(store.ToggleAntiImpulse{}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"antiImpulseEnabled": s.store.AntiImpulseEnabled()})
}

func (s *Server) handleSetPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan model.Plan `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Plan != model.PlanFree && req.Plan != model.PlanPremium {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid plan %q", req.Plan))
		return
	}
	if _, err := s.store.Dispatch(store.SetPlan{Plan: req.Plan}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"plan": s.store.Plan()})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount.IsNegative() {
		WriteError(w, http.StatusBadRequest, "Amount must not be negative")
		return
	}
	if _, err := s.store.Dispatch(store.SetMonthlyBudget{Amount: req.Amount}); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.store.Summarize())
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := export.WriteTransactionsCSV(w, s.store.Transactions(), s.store.Categories()); err != nil {
		s.log.Error().Err(err).Msg("Failed to export transactions")
	}
}

func (s *Server) writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrAlreadyResolved):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		WriteError(w, http.StatusBadRequest, err.Error())
	}
}
