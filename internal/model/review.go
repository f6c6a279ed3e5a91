package model

import "time"

// ImpulseReason identifies which impulse heuristic blocked a candidate.
type ImpulseReason string

const (
	ImpulseRapidPurchases   ImpulseReason = "rapid_purchases"
	ImpulseRepeatedPurchase ImpulseReason = "repeated_purchase"
	ImpulseRiskyTime        ImpulseReason = "risky_time"
)

// ImpulseRiskLevel grades a block for the user.
type ImpulseRiskLevel string

const (
	RiskLow      ImpulseRiskLevel = "baixo"
	RiskMedium   ImpulseRiskLevel = "médio"
	RiskHigh     ImpulseRiskLevel = "alto"
	RiskCritical ImpulseRiskLevel = "crítico"
)

// ImpulseBlockStatus tracks a parked candidate's resolution.
type ImpulseBlockStatus string

const (
	BlockPending   ImpulseBlockStatus = "pending"
	BlockConfirmed ImpulseBlockStatus = "confirmed"
	BlockDeleted   ImpulseBlockStatus = "deleted"
)

// ImpulseBlock parks a candidate expense that the impulse detector stopped
// before it reached the ledger. While pending, the block holds the only copy
// of the candidate. Confirming mints a fresh transaction id and commits the
// candidate; deleting discards it permanently.
type ImpulseBlock struct {
	ID        string             `json:"id"`
	Blocked   TransactionDraft   `json:"blockedTransaction"`
	Reason    ImpulseReason      `json:"reason"`
	Message   string             `json:"message"`
	RiskLevel ImpulseRiskLevel   `json:"riskLevel"`
	Timestamp time.Time          `json:"timestamp"`
	Status    ImpulseBlockStatus `json:"status"`
}

// SuspiciousReason identifies which post-commit heuristic flagged a
// transaction.
type SuspiciousReason string

const (
	SuspiciousUnusualAmount   SuspiciousReason = "unusual_amount"
	SuspiciousDuplicate       SuspiciousReason = "duplicate"
	SuspiciousUnusualTime     SuspiciousReason = "unusual_time"
	SuspiciousNewSubscription SuspiciousReason = "new_subscription"
)

// SuspiciousStatus tracks the user's review of a flag.
type SuspiciousStatus string

const (
	SuspiciousPending   SuspiciousStatus = "pending"
	SuspiciousConfirmed SuspiciousStatus = "confirmed"
	SuspiciousIgnored   SuspiciousStatus = "ignored"
)

// SuspiciousFlag is a purely advisory annotation on an already-committed
// transaction. It never un-commits anything. TransactionID may dangle if the
// referenced transaction disappears; readers tolerate that.
type SuspiciousFlag struct {
	ID            string           `json:"id"`
	TransactionID string           `json:"transactionId"`
	Reason        SuspiciousReason `json:"reason"`
	Message       string           `json:"message"`
	Status        SuspiciousStatus `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
}
