package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// SplitShare assigns part of a transaction to a household member.
type SplitShare struct {
	MemberID   string          `json:"memberId"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Transaction is a committed ledger entry. It is immutable once created;
// the ledger is rebuilt and re-sorted on every insert rather than updated
// in place.
type Transaction struct {
	ID            string          `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"categoryId"`
	Date          time.Time       `json:"date"`
	Tags          []string        `json:"tags,omitempty"`
	Split         []SplitShare    `json:"split,omitempty"`
	ApprovedBy    []string        `json:"approvedBy,omitempty"`
	NeedsApproval bool            `json:"needsApproval,omitempty"`
}

// TransactionDraft is a candidate transaction that has not been committed
// to the ledger. A draft blocked by the impulse detector is parked inside
// an ImpulseBlock, which then holds the only copy of the candidate.
type TransactionDraft struct {
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CategoryID  string          `json:"categoryId"`
	Date        time.Time       `json:"date"`
	Tags        []string        `json:"tags,omitempty"`
}

// Validate checks a draft at the dispatch boundary. The store never sees
// a malformed candidate.
func (d TransactionDraft) Validate() error {
	if d.Type != TypeIncome && d.Type != TypeExpense {
		return errors.New("transaction type must be income or expense")
	}
	if !d.Amount.IsPositive() {
		return errors.New("transaction amount must be positive")
	}
	if d.Description == "" {
		return errors.New("transaction description is required")
	}
	if d.Date.IsZero() {
		return errors.New("transaction date is required")
	}
	return nil
}

// Materialize turns a draft into a committed Transaction with the given id.
func (d TransactionDraft) Materialize(id string) Transaction {
	return Transaction{
		ID:          id,
		Type:        d.Type,
		Amount:      d.Amount,
		Description: d.Description,
		CategoryID:  d.CategoryID,
		Date:        d.Date,
		Tags:        d.Tags,
	}
}
