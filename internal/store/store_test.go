package store

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigia-dev/vigia/internal/config"
	"github.com/vigia-dev/vigia/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// clock is a controllable time source for window-sensitive tests.
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *clock) set(hour int)            { c.t = time.Date(2025, 6, 15, hour, 0, 0, 0, time.UTC) }

func newPremiumStore(t *testing.T) (*Store, *clock) {
	t.Helper()
	ck := &clock{t: time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)}
	members := []model.Member{
		{ID: "user1", Name: "Você", Email: "voce@email.com", Permission: model.PermissionAdmin, Nickname: "Admin"},
	}
	s := New(config.Default(), zerolog.Nop(),
		WithClock(ck.now),
		WithCategories(model.DefaultCategories()),
		WithMembers(members, "user1"),
		WithPlan(model.PlanPremium),
	)
	return s, ck
}

func draft(amount, categoryID string, date time.Time) model.TransactionDraft {
	return model.TransactionDraft{
		Type:        model.TypeExpense,
		Amount:      dec(amount),
		Description: "Compra",
		CategoryID:  categoryID,
		Date:        date,
	}
}

func TestAddTransaction_CommitsCleanCandidate(t *testing.T) {
	s, ck := newPremiumStore(t)

	out, err := s.Dispatch(AddTransaction{Draft: draft("50", "3", ck.now())})
	require.NoError(t, err)
	require.NotNil(t, out.Transaction)
	assert.Nil(t, out.Block)
	assert.Nil(t, out.Flag)

	txns := s.Transactions()
	require.Len(t, txns, 1)
	assert.NotEmpty(t, txns[0].ID)
	assert.Empty(t, s.ImpulseBlocks(""))
	assert.Empty(t, s.SuspiciousFlags(""))
}

func TestAddTransaction_ParkedByImpulseDetector(t *testing.T) {
	s, ck := newPremiumStore(t)
	ck.set(23)

	out, err := s.Dispatch(AddTransaction{Draft: draft("120", "4", ck.now())})
	require.NoError(t, err)
	require.NotNil(t, out.Block)
	assert.Nil(t, out.Transaction)
	assert.Equal(t, model.ImpulseRiskyTime, out.Block.Reason)
	assert.Equal(t, model.BlockPending, out.Block.Status)

	// The ledger was never touched; the block holds the only candidate copy.
	assert.Empty(t, s.Transactions())
	require.Len(t, s.ImpulseBlocks(model.BlockPending), 1)
	assert.True(t, out.Block.Blocked.Amount.Equal(dec("120")))

	active, ok := s.ActiveReview()
	require.True(t, ok)
	assert.Equal(t, out.Block.ID, active.ID)
}

func TestAddTransaction_CommittedThenFlagged(t *testing.T) {
	s, ck := newPremiumStore(t)

	_, err := s.Dispatch(AddTransaction{Draft: draft("80", "3", ck.now())})
	require.NoError(t, err)

	// Three minutes later: outside the 2-minute repeated-purchase window,
	// inside the 5-minute duplicate window. The commit goes through and the
	// suspicious detector annotates it.
	ck.advance(3 * time.Minute)
	out, err := s.Dispatch(AddTransaction{Draft: draft("80", "3", ck.now())})
	require.NoError(t, err)
	require.NotNil(t, out.Transaction)
	require.NotNil(t, out.Flag)
	assert.Equal(t, model.SuspiciousDuplicate, out.Flag.Reason)
	assert.Equal(t, out.Transaction.ID, out.Flag.TransactionID)

	assert.Len(t, s.Transactions(), 2, "annotation never blocks the commit")
	require.Len(t, s.SuspiciousFlags(model.SuspiciousPending), 1)
}

func TestAddTransaction_AntiImpulseDisabled(t *testing.T) {
	s, ck := newPremiumStore(t)

	_, err := s.Dispatch(ToggleAntiImpulse{})
	require.NoError(t, err)
	assert.False(t, s.AntiImpulseEnabled())

	ck.set(23)
	out, err := s.Dispatch(AddTransaction{Draft: draft("50", "3", ck.now())})
	require.NoError(t, err)
	require.NotNil(t, out.Transaction)
	assert.Empty(t, s.ImpulseBlocks(""))
}

func TestAddTransaction_FreePlanBypassesDetectors(t *testing.T) {
	ck := &clock{t: time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)}
	s := New(config.Default(), zerolog.Nop(), WithClock(ck.now))

	out, err := s.Dispatch(AddTransaction{Draft: draft("50", "3", ck.now())})
	require.NoError(t, err)
	require.NotNil(t, out.Transaction)
	assert.Empty(t, s.ImpulseBlocks(""))
	assert.Empty(t, s.SuspiciousFlags(""))
}

func TestAddTransaction_IncomeBypassesDetectors(t *testing.T) {
	s, ck := newPremiumStore(t)
	ck.set(23)

	income := model.TransactionDraft{
		Type:        model.TypeIncome,
		Amount:      dec("5000"),
		Description: "Salário",
		CategoryID:  "7",
		Date:        ck.now(),
	}
	out, err := s.Dispatch(AddTransaction{Draft: income})
	require.NoError(t, err)
	require.NotNil(t, out.Transaction)
	assert.Empty(t, s.ImpulseBlocks(""))
	assert.Empty(t, s.SuspiciousFlags(""))
}

func TestAddTransaction_QuietHistoryCommitsUnflagged(t *testing.T) {
	s, ck := newPremiumStore(t)

	_, err := s.Dispatch(AddTransaction{Draft: draft("50", "3", ck.now())})
	require.NoError(t, err)

	// 90 minutes later, an identical purchase: no impulse window matches
	// and the single same-category entry is below the suspicious minimum.
	ck.advance(90 * time.Minute)
	out, err := s.Dispatch(AddTransaction{Draft: draft("50", "3", ck.now())})
	require.NoError(t, err)
	require.NotNil(t, out.Transaction)
	assert.Nil(t, out.Block)
	assert.Nil(t, out.Flag)
	assert.Len(t, s.Transactions(), 2)
}

func TestProcessImpulseBlock_Confirm(t *testing.T) {
	s, ck := newPremiumStore(t)
	ck.set(23)

	out, err := s.Dispatch(AddTransaction{Draft: draft("120", "4", ck.now())})
	require.NoError(t, err)
	blockID := out.Block.ID

	confirmed, err := s.Dispatch(ProcessImpulseBlock{BlockID: blockID, Action: ImpulseConfirm})
	require.NoError(t, err)
	require.NotNil(t, confirmed.Transaction)

	txns := s.Transactions()
	require.Len(t, txns, 1, "exactly one transaction materialized")
	assert.NotEqual(t, blockID, txns[0].ID, "transaction gets a freshly minted id")
	assert.True(t, txns[0].Amount.Equal(dec("120")))

	blocks := s.ImpulseBlocks(model.BlockConfirmed)
	require.Len(t, blocks, 1)
	assert.Equal(t, blockID, blocks[0].ID)

	_, ok := s.ActiveReview()
	assert.False(t, ok, "confirmation clears the active review pointer")
}

func TestProcessImpulseBlock_ConfirmSkipsSuspiciousAnalysis(t *testing.T) {
	s, ck := newPremiumStore(t)

	_, err := s.Dispatch(AddTransaction{Draft: draft("50", "3", ck.now())})
	require.NoError(t, err)

	// One minute later, an identical purchase is parked as repeated.
	ck.advance(time.Minute)
	out, err := s.Dispatch(AddTransaction{Draft: draft("50", "3", ck.now())})
	require.NoError(t, err)
	require.NotNil(t, out.Block)
	assert.Equal(t, model.ImpulseRepeatedPurchase, out.Block.Reason)

	// Confirming commits a transaction the suspicious detector would flag
	// as a duplicate, yet no flag appears: confirmed blocks bypass the
	// post-commit analysis. Known quirk, asserted as current behavior.
	_, err = s.Dispatch(ProcessImpulseBlock{BlockID: out.Block.ID, Action: ImpulseConfirm})
	require.NoError(t, err)
	assert.Len(t, s.Transactions(), 2)
	assert.Empty(t, s.SuspiciousFlags(""))
}

func TestProcessImpulseBlock_Delete(t *testing.T) {
	s, ck := newPremiumStore(t)
	ck.set(23)

	out, err := s.Dispatch(AddTransaction{Draft: draft("120", "4", ck.now())})
	require.NoError(t, err)

	_, err = s.Dispatch(ProcessImpulseBlock{BlockID: out.Block.ID, Action: ImpulseDelete})
	require.NoError(t, err)

	assert.Empty(t, s.Transactions(), "deletion leaves the ledger untouched")
	require.Len(t, s.ImpulseBlocks(model.BlockDeleted), 1)
	_, ok := s.ActiveReview()
	assert.False(t, ok)
}

func TestProcessImpulseBlock_Errors(t *testing.T) {
	s, ck := newPremiumStore(t)

	_, err := s.Dispatch(ProcessImpulseBlock{BlockID: "missing", Action: ImpulseConfirm})
	require.ErrorIs(t, err, ErrNotFound)

	ck.set(23)
	out, err := s.Dispatch(AddTransaction{Draft: draft("120", "4", ck.now())})
	require.NoError(t, err)
	_, err = s.Dispatch(ProcessImpulseBlock{BlockID: out.Block.ID, Action: ImpulseDelete})
	require.NoError(t, err)

	_, err = s.Dispatch(ProcessImpulseBlock{BlockID: out.Block.ID, Action: ImpulseConfirm})
	require.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestLedger_SortedDateDescending(t *testing.T) {
	s, ck := newPremiumStore(t)
	base := ck.now()

	for _, offset := range []time.Duration{-48 * time.Hour, 0, -24 * time.Hour} {
		_, err := s.Dispatch(AddTransaction{Draft: draft("10", "10", base.Add(offset))})
		require.NoError(t, err)
		ck.advance(10 * time.Minute)
	}

	txns := s.Transactions()
	require.Len(t, txns, 3)
	for i := 1; i < len(txns); i++ {
		assert.False(t, txns[i].Date.After(txns[i-1].Date), "ledger must stay date-descending")
	}
}

func TestUpdateSuspiciousStatus(t *testing.T) {
	s, ck := newPremiumStore(t)

	_, err := s.Dispatch(AddTransaction{Draft: draft("80", "3", ck.now())})
	require.NoError(t, err)
	ck.advance(3 * time.Minute)
	out, err := s.Dispatch(AddTransaction{Draft: draft("80", "3", ck.now())})
	require.NoError(t, err)
	require.NotNil(t, out.Flag)

	_, err = s.Dispatch(UpdateSuspiciousStatus{ID: out.Flag.ID, Status: model.SuspiciousIgnored})
	require.NoError(t, err)
	require.Len(t, s.SuspiciousFlags(model.SuspiciousIgnored), 1)
	assert.Empty(t, s.SuspiciousFlags(model.SuspiciousPending))

	_, err = s.Dispatch(UpdateSuspiciousStatus{ID: "missing", Status: model.SuspiciousIgnored})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetSuspiciousFlags_BulkReplace(t *testing.T) {
	s, _ := newPremiumStore(t)

	flags := []model.SuspiciousFlag{
		{ID: "f1", TransactionID: "t1", Reason: model.SuspiciousDuplicate, Status: model.SuspiciousPending},
		{ID: "f2", TransactionID: "dangling", Reason: model.SuspiciousUnusualTime, Status: model.SuspiciousConfirmed},
	}
	_, err := s.Dispatch(SetSuspiciousFlags{Flags: flags})
	require.NoError(t, err)

	// Dangling transaction references are tolerated on reads.
	got := s.SuspiciousFlags("")
	require.Len(t, got, 2)
	assert.Equal(t, "dangling", got[1].TransactionID)
}

func TestPayBill_CommitsPreApprovedExpense(t *testing.T) {
	s, ck := newPremiumStore(t)

	_, err := s.Dispatch(AddBill{Name: "Conta de Luz", Amount: dec("150"), DueDate: ck.now().Add(72 * time.Hour), CategoryID: "8"})
	require.NoError(t, err)
	bills := s.Bills()
	require.Len(t, bills, 1)

	// Even at a risky hour the bill payment commits directly: bills are
	// pre-approved spend and never enter the interception pipeline.
	ck.set(23)
	out, err := s.Dispatch(PayBill{BillID: bills[0].ID})
	require.NoError(t, err)
	require.NotNil(t, out.Transaction)
	assert.Equal(t, model.TypeExpense, out.Transaction.Type)
	assert.Empty(t, s.ImpulseBlocks(""))
	assert.Empty(t, s.SuspiciousFlags(""))
	assert.Equal(t, model.BillPaid, s.Bills()[0].Status)

	_, err = s.Dispatch(PayBill{BillID: bills[0].ID})
	require.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestScheduledPayments_SortAndLifecycle(t *testing.T) {
	s, _ := newPremiumStore(t)

	add := func(name string, day, month int) {
		t.Helper()
		_, err := s.Dispatch(AddScheduledPayment{Payment: model.ScheduledPayment{
			Name: name, Amount: dec("39.90"), PaymentDay: day, PaymentMonth: month,
			PaymentMethod: model.MethodDebit, CategoryID: "4", IsActive: true,
		}})
		require.NoError(t, err)
	}
	add("Seguro", 15, 3)
	add("Netflix", 10, 0)
	add("Energia", 5, 0)

	got := s.ScheduledPayments()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Energia", "Netflix", "Seguro"},
		[]string{got[0].Name, got[1].Name, got[2].Name})

	got[1].Amount = dec("55.90")
	_, err := s.Dispatch(UpdateScheduledPayment{Payment: got[1]})
	require.NoError(t, err)
	assert.True(t, s.ScheduledPayments()[1].Amount.Equal(dec("55.90")))

	_, err = s.Dispatch(DeleteScheduledPayment{ID: got[0].ID})
	require.NoError(t, err)
	assert.Len(t, s.ScheduledPayments(), 2)

	_, err = s.Dispatch(AddScheduledPayment{Payment: model.ScheduledPayment{Name: "Inválido", PaymentDay: 32}})
	require.Error(t, err)
}

func TestMembers_Lifecycle(t *testing.T) {
	s, _ := newPremiumStore(t)

	_, err := s.Dispatch(InviteMember{Email: "conjuge@email.com", Permission: model.PermissionEditor})
	require.NoError(t, err)
	members := s.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "conjuge", members[1].Name)

	_, err = s.Dispatch(UpdateMemberPermission{MemberID: members[1].ID, Permission: model.PermissionReadonly})
	require.NoError(t, err)
	assert.Equal(t, model.PermissionReadonly, s.Members()[1].Permission)

	_, err = s.Dispatch(RemoveMember{MemberID: members[1].ID})
	require.NoError(t, err)
	assert.Len(t, s.Members(), 1)
}

func TestGoals_Lifecycle(t *testing.T) {
	s, ck := newPremiumStore(t)

	_, err := s.Dispatch(AddGoal{Name: "Viagem", TargetAmount: dec("2000"), Deadline: ck.now().AddDate(0, 6, 0)})
	require.NoError(t, err)
	goals := s.Goals()
	require.Len(t, goals, 1)
	assert.True(t, goals[0].CurrentAmount.IsZero())

	_, err = s.Dispatch(ContributeToGoal{GoalID: goals[0].ID, Amount: dec("150")})
	require.NoError(t, err)
	assert.True(t, s.Goals()[0].CurrentAmount.Equal(dec("150")))
}

func TestSummarize(t *testing.T) {
	s, ck := newPremiumStore(t)

	income := model.TransactionDraft{Type: model.TypeIncome, Amount: dec("5000"), Description: "Salário", CategoryID: "7", Date: ck.now()}
	_, err := s.Dispatch(AddTransaction{Draft: income})
	require.NoError(t, err)
	_, err = s.Dispatch(AddTransaction{Draft: draft("1500", "1", ck.now())})
	require.NoError(t, err)
	_, err = s.Dispatch(SetMonthlyBudget{Amount: dec("3000")})
	require.NoError(t, err)
	_, err = s.Dispatch(AddBill{Name: "Internet", Amount: dec("99"), DueDate: ck.now(), CategoryID: "8"})
	require.NoError(t, err)

	sum := s.Summarize()
	assert.True(t, sum.Balance.Equal(dec("3500")))
	assert.True(t, sum.IncomeThisMonth.Equal(dec("5000")))
	assert.True(t, sum.ExpenseThisMonth.Equal(dec("1500")))
	assert.True(t, sum.MonthlyBudget.Equal(dec("3000")))
	assert.Equal(t, 1, sum.PendingBills)
	assert.Equal(t, model.PlanPremium, sum.Plan)
	assert.True(t, sum.AntiImpulseEnabled)
}
