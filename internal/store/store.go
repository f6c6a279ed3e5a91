// Package store is the single authoritative state container. Every mutation
// to the domain model goes through Dispatch, which serializes commands under
// one lock and runs the transaction-interception pipeline inline.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vigia-dev/vigia/internal/config"
	"github.com/vigia-dev/vigia/internal/impulse"
	"github.com/vigia-dev/vigia/internal/model"
	"github.com/vigia-dev/vigia/internal/suspicious"
)

// ErrNotFound is returned when a command references an unknown entity.
var ErrNotFound = errors.New("not found")

// ErrAlreadyResolved is returned when a command targets an impulse block or
// bill that has already left its pending state.
var ErrAlreadyResolved = errors.New("already resolved")

// Store owns all entity collections. Nothing outside the store mutates
// them; reads hand out copies.
type Store struct {
	mu  sync.RWMutex
	log zerolog.Logger
	now func() time.Time

	impulse    *impulse.Detector
	suspicious *suspicious.Detector

	actingMemberID string
	plan           model.Plan
	antiImpulse    bool
	monthlyBudget  decimal.Decimal

	transactions []model.Transaction // sorted date-descending at all times
	categories   []model.Category
	goals        []model.Goal
	bills        []model.Bill
	scheduled    []model.ScheduledPayment
	members      []model.Member
	blocks       []model.ImpulseBlock // newest first
	flags        []model.SuspiciousFlag
	activeReview string // id of the block currently awaiting a decision
	audit        auditLog
}

// Option customizes a Store at construction time.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCategories seeds the category list.
func WithCategories(categories []model.Category) Option {
	return func(s *Store) { s.categories = categories }
}

// WithMembers seeds the shared account and names the acting member for
// audit attribution.
func WithMembers(members []model.Member, actingMemberID string) Option {
	return func(s *Store) {
		s.members = members
		s.actingMemberID = actingMemberID
	}
}

// WithPlan sets the initial subscription plan.
func WithPlan(plan model.Plan) Option {
	return func(s *Store) { s.plan = plan }
}

// New creates an empty Store wired to the configured heuristic engines.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		log:         log,
		now:         time.Now,
		impulse:     impulse.NewDetector(cfg.Impulse),
		suspicious:  suspicious.NewDetector(cfg.Suspicious),
		plan:        model.PlanFree,
		antiImpulse: cfg.Impulse.Enabled,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Outcome reports what a dispatched command did.
type Outcome struct {
	// Transaction is set when a transaction was committed to the ledger.
	Transaction *model.Transaction
	// Block is set when a candidate was parked or a block resolved.
	Block *model.ImpulseBlock
	// Flag is set when the suspicious detector annotated the commit.
	Flag *model.SuspiciousFlag
}

// Dispatch applies one command. Commands run to completion one at a time;
// the lock gives the store single-writer semantics.
func (s *Store) Dispatch(cmd Command) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c := cmd.(type) {
	case AddTransaction:
		return s.applyAddTransaction(c)
	case ProcessImpulseBlock:
		return s.applyProcessImpulseBlock(c)
	case UpdateSuspiciousStatus:
		return s.applyUpdateSuspiciousStatus(c)
	case SetSuspiciousFlags:
		return s.applySetSuspiciousFlags(c)
	case ToggleAntiImpulse:
		s.antiImpulse = !s.antiImpulse
		s.log.Info().Bool("enabled", s.antiImpulse).Msg("anti-impulse mode toggled")
		return Outcome{}, nil
	case SetPlan:
		s.plan = c.Plan
		return Outcome{}, nil
	case SetMonthlyBudget:
		s.monthlyBudget = c.Amount
		return Outcome{}, nil
	case AddCategory:
		return s.applyAddCategory(c)
	case AddGoal:
		return s.applyAddGoal(c)
	case ContributeToGoal:
		return s.applyContributeToGoal(c)
	case AddBill:
		return s.applyAddBill(c)
	case PayBill:
		return s.applyPayBill(c)
	case AddScheduledPayment:
		return s.applyAddScheduledPayment(c)
	case UpdateScheduledPayment:
		return s.applyUpdateScheduledPayment(c)
	case DeleteScheduledPayment:
		return s.applyDeleteScheduledPayment(c)
	case InviteMember:
		return s.applyInviteMember(c)
	case RemoveMember:
		return s.applyRemoveMember(c)
	case UpdateMemberPermission:
		return s.applyUpdateMemberPermission(c)
	default:
		return Outcome{}, fmt.Errorf("unknown command %T", cmd)
	}
}
