package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the payment state of a bill.
type BillStatus string

const (
	BillPending BillStatus = "pending"
	BillPaid    BillStatus = "paid"
)

// Bill is an upcoming or settled obligation. Paying a bill commits a new
// expense Transaction to the ledger; that spend is pre-approved and is not
// routed through the interception pipeline.
type Bill struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"dueDate"`
	CategoryID string          `json:"categoryId,omitempty"`
	Status     BillStatus      `json:"status"`
}
