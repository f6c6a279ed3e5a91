package model

import "time"

// Plan gates the premium features. Both heuristic engines are inert on the
// free plan.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Permission is a member's access level on the shared account.
type Permission string

const (
	PermissionAdmin    Permission = "admin"
	PermissionEditor   Permission = "editor"
	PermissionReadonly Permission = "readonly"
)

// Member is a participant in the shared account.
type Member struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Permission Permission `json:"permission"`
	IsOnline   bool       `json:"isOnline"`
	Nickname   string     `json:"nickname,omitempty"`
	Color      string     `json:"color,omitempty"`
}

// AuditEntry records one member-attributable mutation. The store keeps the
// most recent 100 entries in a bounded log.
type AuditEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	MemberID   string    `json:"memberId"`
	MemberName string    `json:"memberName"`
	Action     string    `json:"action"`
}
