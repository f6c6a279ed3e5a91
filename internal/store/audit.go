package store

import (
	"github.com/vigia-dev/vigia/internal/id"
	"github.com/vigia-dev/vigia/internal/model"
)

// auditCapacity bounds the audit log; when full, the oldest entry is
// evicted on insert.
const auditCapacity = 100

// auditLog is a fixed-capacity ring buffer of audit entries.
type auditLog struct {
	buf  [auditCapacity]model.AuditEntry
	next int // slot of the next write
	size int
}

func (l *auditLog) append(e model.AuditEntry) {
	l.buf[l.next] = e
	l.next = (l.next + 1) % auditCapacity
	if l.size < auditCapacity {
		l.size++
	}
}

// entries returns the log newest-first.
func (l *auditLog) entries() []model.AuditEntry {
	out := make([]model.AuditEntry, 0, l.size)
	for i := 1; i <= l.size; i++ {
		out = append(out, l.buf[(l.next-i+auditCapacity)%auditCapacity])
	}
	return out
}

// appendAudit records a member-attributable mutation. Mutations with no
// acting member configured are not audited.
func (s *Store) appendAudit(action string) {
	if s.actingMemberID == "" {
		return
	}
	name := "Usuário"
	for _, m := range s.members {
		if m.ID == s.actingMemberID {
			if m.Nickname != "" {
				name = m.Nickname
			} else if m.Name != "" {
				name = m.Name
			}
			break
		}
	}
	s.audit.append(model.AuditEntry{
		ID:         id.New(),
		Timestamp:  s.now(),
		MemberID:   s.actingMemberID,
		MemberName: name,
		Action:     action,
	})
}
