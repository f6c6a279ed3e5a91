package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vigia-dev/vigia/internal/id"
	"github.com/vigia-dev/vigia/internal/model"
)

// applyAddTransaction runs the interception pipeline:
//
//	candidate -> impulse detector -> parked (block pending), ledger untouched
//	                              -> committed -> suspicious detector -> maybe annotated
//
// Gating happens first: only premium-plan expense candidates are inspected
// at all. A parked candidate lives solely inside its block until the user
// decides.
func (s *Store) applyAddTransaction(c AddTransaction) (Outcome, error) {
	draft := c.Draft
	now := s.now()

	if draft.Type == model.TypeExpense && s.plan == model.PlanPremium {
		if s.antiImpulse {
			if blk := s.impulse.Detect(draft, s.transactions, now); blk != nil {
				blk.ID = id.New()
				s.blocks = append([]model.ImpulseBlock{*blk}, s.blocks...)
				s.activeReview = blk.ID
				s.log.Info().
					Str("block_id", blk.ID).
					Str("reason", string(blk.Reason)).
					Str("risk", string(blk.RiskLevel)).
					Msg("candidate parked by impulse detector")
				return Outcome{Block: blk}, nil
			}
		}

		txn := draft.Materialize(id.New())
		s.insertLedger(txn)
		s.appendAudit(fmt.Sprintf("Adicionou a transação %q de %s.", txn.Description, formatBRL(txn.Amount)))

		var flag *model.SuspiciousFlag
		if f := s.suspicious.Detect(txn, s.transactions, now); f != nil {
			f.ID = id.New()
			s.flags = append([]model.SuspiciousFlag{*f}, s.flags...)
			flag = f
			s.log.Info().
				Str("transaction_id", txn.ID).
				Str("reason", string(f.Reason)).
				Msg("committed transaction flagged as suspicious")
		}
		return Outcome{Transaction: &txn, Flag: flag}, nil
	}

	txn := draft.Materialize(id.New())
	s.insertLedger(txn)
	s.appendAudit(fmt.Sprintf("Adicionou a transação %q de %s.", txn.Description, formatBRL(txn.Amount)))
	return Outcome{Transaction: &txn}, nil
}

// applyProcessImpulseBlock resolves a pending block. Confirmation mints a
// fresh transaction id and re-enters the ledger directly; the suspicious
// detector does not run on this path. Deletion discards the candidate for
// good.
func (s *Store) applyProcessImpulseBlock(c ProcessImpulseBlock) (Outcome, error) {
	idx := -1
	for i, b := range s.blocks {
		if b.ID == c.BlockID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Outcome{}, fmt.Errorf("impulse block %s: %w", c.BlockID, ErrNotFound)
	}
	if s.blocks[idx].Status != model.BlockPending {
		return Outcome{}, fmt.Errorf("impulse block %s: %w", c.BlockID, ErrAlreadyResolved)
	}

	if s.activeReview == c.BlockID {
		s.activeReview = ""
	}

	switch c.Action {
	case ImpulseConfirm:
		s.blocks[idx].Status = model.BlockConfirmed
		txn := s.blocks[idx].Blocked.Materialize(id.New())
		s.insertLedger(txn)
		s.appendAudit(fmt.Sprintf("Confirmou o gasto bloqueado %q de %s.", txn.Description, formatBRL(txn.Amount)))
		blk := s.blocks[idx]
		return Outcome{Transaction: &txn, Block: &blk}, nil
	case ImpulseDelete:
		s.blocks[idx].Status = model.BlockDeleted
		s.appendAudit(fmt.Sprintf("Descartou o gasto bloqueado %q.", s.blocks[idx].Blocked.Description))
		blk := s.blocks[idx]
		return Outcome{Block: &blk}, nil
	default:
		return Outcome{}, fmt.Errorf("unknown impulse action %q", c.Action)
	}
}

func (s *Store) applyUpdateSuspiciousStatus(c UpdateSuspiciousStatus) (Outcome, error) {
	for i := range s.flags {
		if s.flags[i].ID == c.ID {
			s.flags[i].Status = c.Status
			flag := s.flags[i]
			return Outcome{Flag: &flag}, nil
		}
	}
	return Outcome{}, fmt.Errorf("suspicious flag %s: %w", c.ID, ErrNotFound)
}

func (s *Store) applySetSuspiciousFlags(c SetSuspiciousFlags) (Outcome, error) {
	s.flags = append([]model.SuspiciousFlag(nil), c.Flags...)
	return Outcome{}, nil
}

func (s *Store) applyAddCategory(c AddCategory) (Outcome, error) {
	s.categories = append(s.categories, model.Category{ID: id.New(), Name: c.Name, Icon: c.Icon})
	return Outcome{}, nil
}

func (s *Store) applyAddGoal(c AddGoal) (Outcome, error) {
	s.goals = append(s.goals, model.Goal{
		ID:            id.New(),
		Name:          c.Name,
		TargetAmount:  c.TargetAmount,
		CurrentAmount: decimal.Zero,
		Deadline:      c.Deadline,
	})
	s.appendAudit(fmt.Sprintf("Criou a meta %q.", c.Name))
	return Outcome{}, nil
}

func (s *Store) applyContributeToGoal(c ContributeToGoal) (Outcome, error) {
	for i := range s.goals {
		if s.goals[i].ID == c.GoalID {
			s.goals[i].CurrentAmount = s.goals[i].CurrentAmount.Add(c.Amount)
			s.appendAudit(fmt.Sprintf("Contribuiu %s para a meta %q.", formatBRL(c.Amount), s.goals[i].Name))
			return Outcome{}, nil
		}
	}
	return Outcome{}, fmt.Errorf("goal %s: %w", c.GoalID, ErrNotFound)
}

func (s *Store) applyAddBill(c AddBill) (Outcome, error) {
	s.bills = append(s.bills, model.Bill{
		ID:         id.New(),
		Name:       c.Name,
		Amount:     c.Amount,
		DueDate:    c.DueDate,
		CategoryID: c.CategoryID,
		Status:     model.BillPending,
	})
	s.appendAudit(fmt.Sprintf("Cadastrou a conta %q.", c.Name))
	return Outcome{}, nil
}

// applyPayBill settles a bill and commits the matching expense. This spend
// is pre-approved; neither detector is consulted.
func (s *Store) applyPayBill(c PayBill) (Outcome, error) {
	for i := range s.bills {
		if s.bills[i].ID != c.BillID {
			continue
		}
		if s.bills[i].Status == model.BillPaid {
			return Outcome{}, fmt.Errorf("bill %s: %w", c.BillID, ErrAlreadyResolved)
		}
		s.bills[i].Status = model.BillPaid

		txn := model.Transaction{
			ID:          id.New(),
			Type:        model.TypeExpense,
			Amount:      s.bills[i].Amount,
			Description: "Pagamento: " + s.bills[i].Name,
			CategoryID:  s.bills[i].CategoryID,
			Date:        s.now(),
		}
		s.insertLedger(txn)
		s.appendAudit(fmt.Sprintf("Pagou a conta %q de %s.", s.bills[i].Name, formatBRL(s.bills[i].Amount)))
		return Outcome{Transaction: &txn}, nil
	}
	return Outcome{}, fmt.Errorf("bill %s: %w", c.BillID, ErrNotFound)
}

func (s *Store) applyAddScheduledPayment(c AddScheduledPayment) (Outcome, error) {
	p := c.Payment
	if err := validateScheduledPayment(p); err != nil {
		return Outcome{}, err
	}
	if p.ID == "" {
		p.ID = id.New()
	}
	s.scheduled = append(s.scheduled, p)
	s.sortScheduled()
	s.appendAudit(fmt.Sprintf("Agendou o pagamento %q.", p.Name))
	return Outcome{}, nil
}

func (s *Store) applyUpdateScheduledPayment(c UpdateScheduledPayment) (Outcome, error) {
	if err := validateScheduledPayment(c.Payment); err != nil {
		return Outcome{}, err
	}
	for i := range s.scheduled {
		if s.scheduled[i].ID == c.Payment.ID {
			s.scheduled[i] = c.Payment
			s.sortScheduled()
			s.appendAudit(fmt.Sprintf("Atualizou o pagamento agendado %q.", c.Payment.Name))
			return Outcome{}, nil
		}
	}
	return Outcome{}, fmt.Errorf("scheduled payment %s: %w", c.Payment.ID, ErrNotFound)
}

func (s *Store) applyDeleteScheduledPayment(c DeleteScheduledPayment) (Outcome, error) {
	for i := range s.scheduled {
		if s.scheduled[i].ID == c.ID {
			s.appendAudit(fmt.Sprintf("Removeu o pagamento agendado %q.", s.scheduled[i].Name))
			s.scheduled = append(s.scheduled[:i], s.scheduled[i+1:]...)
			return Outcome{}, nil
		}
	}
	return Outcome{}, fmt.Errorf("scheduled payment %s: %w", c.ID, ErrNotFound)
}

func (s *Store) applyInviteMember(c InviteMember) (Outcome, error) {
	name := c.Email
	if at := strings.Index(c.Email, "@"); at > 0 {
		name = c.Email[:at]
	}
	s.members = append(s.members, model.Member{
		ID:         id.New(),
		Name:       name,
		Email:      c.Email,
		Permission: c.Permission,
	})
	s.appendAudit(fmt.Sprintf("Convidou %s para a conta.", c.Email))
	return Outcome{}, nil
}

func (s *Store) applyRemoveMember(c RemoveMember) (Outcome, error) {
	for i := range s.members {
		if s.members[i].ID == c.MemberID {
			s.appendAudit(fmt.Sprintf("Removeu %s da conta.", s.members[i].Name))
			s.members = append(s.members[:i], s.members[i+1:]...)
			return Outcome{}, nil
		}
	}
	return Outcome{}, fmt.Errorf("member %s: %w", c.MemberID, ErrNotFound)
}

func (s *Store) applyUpdateMemberPermission(c UpdateMemberPermission) (Outcome, error) {
	for i := range s.members {
		if s.members[i].ID == c.MemberID {
			s.members[i].Permission = c.Permission
			s.appendAudit(fmt.Sprintf("Alterou a permissão de %s para %s.", s.members[i].Name, c.Permission))
			return Outcome{}, nil
		}
	}
	return Outcome{}, fmt.Errorf("member %s: %w", c.MemberID, ErrNotFound)
}

// insertLedger rebuilds the ledger with the new transaction and restores
// the date-descending order. Every commit path goes through here, which is
// what lets the impulse detector trust history[0] as the most recent entry.
func (s *Store) insertLedger(txn model.Transaction) {
	next := make([]model.Transaction, 0, len(s.transactions)+1)
	next = append(next, txn)
	next = append(next, s.transactions...)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Date.After(next[j].Date)
	})
	s.transactions = next
}

func (s *Store) sortScheduled() {
	sort.SliceStable(s.scheduled, func(i, j int) bool {
		if s.scheduled[i].PaymentMonth != s.scheduled[j].PaymentMonth {
			return s.scheduled[i].PaymentMonth < s.scheduled[j].PaymentMonth
		}
		return s.scheduled[i].PaymentDay < s.scheduled[j].PaymentDay
	})
}

func validateScheduledPayment(p model.ScheduledPayment) error {
	if p.Name == "" {
		return fmt.Errorf("scheduled payment name is required")
	}
	if p.PaymentDay < 1 || p.PaymentDay > 31 {
		return fmt.Errorf("payment day %d out of range 1-31", p.PaymentDay)
	}
	if p.PaymentMonth < 0 || p.PaymentMonth > 12 {
		return fmt.Errorf("payment month %d out of range 1-12", p.PaymentMonth)
	}
	return nil
}

func formatBRL(amount decimal.Decimal) string {
	return "R$ " + amount.StringFixed(2)
}
