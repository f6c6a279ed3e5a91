package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vigia-dev/vigia/internal/advisor"
	"github.com/vigia-dev/vigia/internal/model"
	"github.com/vigia-dev/vigia/internal/store"
)

// handleAssistant classifies a natural-language utterance and, when the
// intent maps to a mutation, applies it. The classified intent is always
// returned so the client can render the spoken reply.
func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	if s.classifier == nil {
		WriteError(w, http.StatusServiceUnavailable, "Assistant is not configured")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteError(w, http.StatusBadRequest, "Text is required")
		return
	}

	intent := s.classifier.Classify(r.Context(), req.Text, s.snapshot())
	result := s.applyIntent(intent)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"intent": intent,
		"result": result,
	})
}

func (s *Server) snapshot() advisor.Snapshot {
	sum := s.store.Summarize()

	var categories []string
	for _, c := range s.store.Categories() {
		categories = append(categories, c.Name)
	}
	var goals []advisor.GoalSummary
	for _, g := range s.store.Goals() {
		goals = append(goals, advisor.GoalSummary{Name: g.Name, TargetAmount: g.TargetAmount, CurrentAmount: g.CurrentAmount})
	}
	var bills []advisor.BillSummary
	for _, b := range s.store.Bills() {
		if b.Status == model.BillPending {
			bills = append(bills, advisor.BillSummary{Name: b.Name, Amount: b.Amount, DueDate: b.DueDate})
		}
	}
	var scheduled []string
	for _, p := range s.store.ScheduledPayments() {
		scheduled = append(scheduled, p.Name)
	}

	userName := "Usuário"
	if members := s.store.Members(); len(members) > 0 {
		userName = members[0].Name
	}

	return advisor.Snapshot{
		UserName:             userName,
		Today:                time.Now(),
		Balance:              sum.Balance,
		IncomeThisMonth:      sum.IncomeThisMonth,
		ExpenseThisMonth:     sum.ExpenseThisMonth,
		MonthlyBudget:        sum.MonthlyBudget,
		Categories:           categories,
		Goals:                goals,
		PendingBills:         bills,
		ScheduledPayments:    scheduled,
		PendingSuspicious:    sum.PendingSuspicious,
		PendingImpulseBlocks: sum.PendingImpulseBlocks,
		AntiImpulseEnabled:   sum.AntiImpulseEnabled,
	}
}

// applyIntent maps actionable intents onto store commands. Read-only and
// screen-navigation intents produce no mutation.
func (s *Server) applyIntent(intent advisor.Intent) map[string]interface{} {
	switch intent.Acao {
	case "criarTransacao":
		return s.intentCreateTransaction(intent)
	case "pagarConta":
		return s.intentPayBill(intent)
	case "alternarModoAntiImpulso":
		return s.intentToggleAntiImpulse(intent)
	case "criarMeta":
		return s.intentCreateGoal(intent)
	default:
		return map[string]interface{}{"applied": false}
	}
}

func (s *Server) intentCreateTransaction(intent advisor.Intent) map[string]interface{} {
	amount, ok := paramDecimal(intent.Parametros, "valor")
	if !ok {
		return intentFailure("valor não informado")
	}
	description, _ := intent.Parametros["descricao"].(string)
	if description == "" {
		description = "Lançamento por voz"
	}

	txType := model.TypeExpense
	if tipo, _ := intent.Parametros["tipo"].(string); tipo == "receita" || intent.Intencao == "registrar_receita" {
		txType = model.TypeIncome
	}

	draft := model.TransactionDraft{
		Type:        txType,
		Amount:      amount,
		Description: description,
		CategoryID:  s.resolveCategory(intent.Parametros),
		Date:        time.Now(),
	}
	if err := draft.Validate(); err != nil {
		return intentFailure(err.Error())
	}

	out, err := s.store.Dispatch(store.AddTransaction{Draft: draft})
	if err != nil {
		return intentFailure(err.Error())
	}
	if out.Block != nil {
		return map[string]interface{}{"applied": true, "blocked": true, "block": out.Block}
	}
	return map[string]interface{}{"applied": true, "blocked": false, "transaction": out.Transaction}
}

func (s *Server) intentPayBill(intent advisor.Intent) map[string]interface{} {
	name, _ := intent.Parametros["nome_conta"].(string)
	if name == "" {
		name, _ = intent.Parametros["nome"].(string)
	}
	if name == "" {
		return intentFailure("nome da conta não informado")
	}

	for _, b := range s.store.Bills() {
		if b.Status != model.BillPending {
			continue
		}
		if strings.Contains(strings.ToLower(b.Name), strings.ToLower(name)) {
			out, err := s.store.Dispatch(store.PayBill{BillID: b.ID})
			if err != nil {
				return intentFailure(err.Error())
			}
			return map[string]interface{}{"applied": true, "transaction": out.Transaction}
		}
	}
	return intentFailure("conta pendente não encontrada: " + name)
}

func (s *Server) intentToggleAntiImpulse(intent advisor.Intent) map[string]interface{} {
	// "ativar" makes the toggle idempotent: no dispatch when the mode is
	// already in the requested state.
	if want, ok := intent.Parametros["ativar"].(bool); ok && want == s.store.AntiImpulseEnabled() {
		return map[string]interface{}{"applied": false, "antiImpulseEnabled": want}
	}
	if _, err := s.store.Dispatch(store.ToggleAntiImpulse{}); err != nil {
		return intentFailure(err.Error())
	}
	return map[string]interface{}{"applied": true, "antiImpulseEnabled": s.store.AntiImpulseEnabled()}
}

func (s *Server) intentCreateGoal(intent advisor.Intent) map[string]interface{} {
	name, _ := intent.Parametros["nome"].(string)
	if name == "" {
		return intentFailure("nome da meta não informado")
	}
	target, ok := paramDecimal(intent.Parametros, "valor")
	if !ok {
		target, ok = paramDecimal(intent.Parametros, "orcamento")
	}
	if !ok {
		return intentFailure("valor da meta não informado")
	}

	deadline := time.Now().AddDate(1, 0, 0)
	if prazo, _ := intent.Parametros["prazo"].(string); prazo != "" {
		if d, err := parseDate(prazo); err == nil {
			deadline = d
		}
	}

	if _, err := s.store.Dispatch(store.AddGoal{Name: name, TargetAmount: target, Deadline: deadline}); err != nil {
		return intentFailure(err.Error())
	}
	return map[string]interface{}{"applied": true, "goals": s.store.Goals()}
}

func intentFailure(reason string) map[string]interface{} {
	return map[string]interface{}{"applied": false, "reason": reason}
}

func paramDecimal(params map[string]any, key string) (decimal.Decimal, bool) {
	switch v := params[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

func (s *Server) resolveCategory(params map[string]any) string {
	name, _ := params["categoria"].(string)
	categories := s.store.Categories()
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c.ID
		}
	}
	// "Outros" is the catch-all default category.
	for _, c := range categories {
		if c.Name == "Outros" {
			return c.ID
		}
	}
	if len(categories) > 0 {
		return categories[len(categories)-1].ID
	}
	return ""
}
