package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vigia-dev/vigia/internal/model"
)

// Transactions returns the ledger, date-descending.
func (s *Store) Transactions() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Transaction(nil), s.transactions...)
}

// Categories returns all categories.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

// Goals returns all goals.
func (s *Store) Goals() []model.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Goal(nil), s.goals...)
}

// Bills returns all bills.
func (s *Store) Bills() []model.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Bill(nil), s.bills...)
}

// ScheduledPayments returns all templates, sorted by month then day.
func (s *Store) ScheduledPayments() []model.ScheduledPayment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ScheduledPayment(nil), s.scheduled...)
}

// Members returns the shared-account members.
func (s *Store) Members() []model.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Member(nil), s.members...)
}

// ImpulseBlocks returns blocks newest-first, filtered by status when status
// is non-empty.
func (s *Store) ImpulseBlocks(status model.ImpulseBlockStatus) []model.ImpulseBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ImpulseBlock, 0, len(s.blocks))
	for _, b := range s.blocks {
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	return out
}

// SuspiciousFlags returns flags newest-first, filtered by status when
// status is non-empty.
func (s *Store) SuspiciousFlags(status model.SuspiciousStatus) []model.SuspiciousFlag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SuspiciousFlag, 0, len(s.flags))
	for _, f := range s.flags {
		if status == "" || f.Status == status {
			out = append(out, f)
		}
	}
	return out
}

// ActiveReview returns the block currently awaiting a user decision, if
// any. At most one block is active at a time.
func (s *Store) ActiveReview() (model.ImpulseBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeReview == "" {
		return model.ImpulseBlock{}, false
	}
	for _, b := range s.blocks {
		if b.ID == s.activeReview {
			return b, true
		}
	}
	return model.ImpulseBlock{}, false
}

// AuditLog returns the bounded audit trail, newest-first.
func (s *Store) AuditLog() []model.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audit.entries()
}

// Plan returns the current subscription plan.
func (s *Store) Plan() model.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// AntiImpulseEnabled reports whether the anti-impulse mode is on.
func (s *Store) AntiImpulseEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.antiImpulse
}

// Summary is a read-only aggregate snapshot for dashboards and the
// advisor collaborator.
type Summary struct {
	Balance              decimal.Decimal `json:"balance"`
	IncomeThisMonth      decimal.Decimal `json:"incomeThisMonth"`
	ExpenseThisMonth     decimal.Decimal `json:"expenseThisMonth"`
	MonthlyBudget        decimal.Decimal `json:"monthlyBudget"`
	PendingBills         int             `json:"pendingBills"`
	PendingSuspicious    int             `json:"pendingSuspicious"`
	PendingImpulseBlocks int             `json:"pendingImpulseBlocks"`
	AntiImpulseEnabled   bool            `json:"antiImpulseEnabled"`
	Plan                 model.Plan      `json:"plan"`
}

// Summarize computes the aggregate snapshot.
func (s *Store) Summarize() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	sum := Summary{
		Balance:            decimal.Zero,
		IncomeThisMonth:    decimal.Zero,
		ExpenseThisMonth:   decimal.Zero,
		MonthlyBudget:      s.monthlyBudget,
		AntiImpulseEnabled: s.antiImpulse,
		Plan:               s.plan,
	}

	for _, t := range s.transactions {
		if t.Type == model.TypeIncome {
			sum.Balance = sum.Balance.Add(t.Amount)
			if !t.Date.Before(monthStart) {
				sum.IncomeThisMonth = sum.IncomeThisMonth.Add(t.Amount)
			}
		} else {
			sum.Balance = sum.Balance.Sub(t.Amount)
			if !t.Date.Before(monthStart) {
				sum.ExpenseThisMonth = sum.ExpenseThisMonth.Add(t.Amount)
			}
		}
	}
	for _, b := range s.bills {
		if b.Status == model.BillPending {
			sum.PendingBills++
		}
	}
	for _, f := range s.flags {
		if f.Status == model.SuspiciousPending {
			sum.PendingSuspicious++
		}
	}
	for _, b := range s.blocks {
		if b.Status == model.BlockPending {
			sum.PendingImpulseBlocks++
		}
	}
	return sum
}
