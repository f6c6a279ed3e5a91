package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vigia-dev/vigia/internal/model"
)

// Command is a discrete, named mutation. Commands are validated at the
// dispatch boundary and applied one at a time; no two ever interleave.
type Command interface {
	isCommand()
}

// AddTransaction proposes a candidate for the ledger. Expense candidates on
// the premium plan run through the interception pipeline and may be parked
// instead of committed.
type AddTransaction struct {
	Draft model.TransactionDraft
}

// ImpulseAction resolves a parked candidate.
type ImpulseAction string

const (
	ImpulseConfirm ImpulseAction = "confirm"
	ImpulseDelete  ImpulseAction = "delete"
)

// ProcessImpulseBlock confirms or discards a pending impulse block.
type ProcessImpulseBlock struct {
	BlockID string
	Action  ImpulseAction
}

// UpdateSuspiciousStatus moves a suspicious flag through its review states.
type UpdateSuspiciousStatus struct {
	ID     string
	Status model.SuspiciousStatus
}

// SetSuspiciousFlags replaces the whole flag list.
type SetSuspiciousFlags struct {
	Flags []model.SuspiciousFlag
}

// ToggleAntiImpulse flips the anti-impulse mode.
type ToggleAntiImpulse struct{}

// SetPlan switches the subscription plan.
type SetPlan struct {
	Plan model.Plan
}

// SetMonthlyBudget sets the monthly spending budget.
type SetMonthlyBudget struct {
	Amount decimal.Decimal
}

// AddCategory creates a category.
type AddCategory struct {
	Name string
	Icon string
}

// AddGoal creates a savings goal.
type AddGoal struct {
	Name         string
	TargetAmount decimal.Decimal
	Deadline     time.Time
}

// ContributeToGoal adds to a goal's saved amount.
type ContributeToGoal struct {
	GoalID string
	Amount decimal.Decimal
}

// AddBill registers an upcoming obligation.
type AddBill struct {
	Name       string
	Amount     decimal.Decimal
	DueDate    time.Time
	CategoryID string
}

// PayBill settles a pending bill and commits the matching expense. Bills
// are pre-approved spend: the expense bypasses both heuristic engines.
type PayBill struct {
	BillID string
}

// AddScheduledPayment registers a recurring-payment template.
type AddScheduledPayment struct {
	Payment model.ScheduledPayment
}

// UpdateScheduledPayment replaces a template by id.
type UpdateScheduledPayment struct {
	Payment model.ScheduledPayment
}

// DeleteScheduledPayment removes a template.
type DeleteScheduledPayment struct {
	ID string
}

// InviteMember adds a member to the shared account.
type InviteMember struct {
	Email      string
	Permission model.Permission
}

// RemoveMember removes a member from the shared account.
type RemoveMember struct {
	MemberID string
}

// UpdateMemberPermission changes a member's access level.
type UpdateMemberPermission struct {
	MemberID   string
	Permission model.Permission
}

func (AddTransaction) isCommand()         {}
func (ProcessImpulseBlock) isCommand()    {}
func (UpdateSuspiciousStatus) isCommand() {}
func (SetSuspiciousFlags) isCommand()     {}
func (ToggleAntiImpulse) isCommand()      {}
func (SetPlan) isCommand()                {}
func (SetMonthlyBudget) isCommand()       {}
func (AddCategory) isCommand()            {}
func (AddGoal) isCommand()                {}
func (ContributeToGoal) isCommand()       {}
func (AddBill) isCommand()                {}
func (PayBill) isCommand()                {}
func (AddScheduledPayment) isCommand()    {}
func (UpdateScheduledPayment) isCommand() {}
func (DeleteScheduledPayment) isCommand() {}
func (InviteMember) isCommand()           {}
func (RemoveMember) isCommand()           {}
func (UpdateMemberPermission) isCommand() {}
