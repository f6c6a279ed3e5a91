package model

import "github.com/shopspring/decimal"

// PaymentMethod is how a scheduled payment is settled.
type PaymentMethod string

const (
	MethodPix    PaymentMethod = "pix"
	MethodDebit  PaymentMethod = "debit"
	MethodBoleto PaymentMethod = "boleto"
	MethodCredit PaymentMethod = "credit"
)

// ScheduledPayment is a recurring-payment template. It never enters the
// ledger itself; the schedule planner derives Bills from it. PaymentMonth
// zero means monthly recurrence; a value 1-12 makes the payment annual.
type ScheduledPayment struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	IsVariable    bool            `json:"isVariable"`
	PaymentDay    int             `json:"paymentDay"`             // 1-31
	PaymentMonth  int             `json:"paymentMonth,omitempty"` // 1-12, 0 = monthly
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CategoryID    string          `json:"categoryId"`
	IsActive      bool            `json:"isActive"`
}
