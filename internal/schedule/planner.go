// Package schedule derives upcoming bills from recurring-payment templates.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vigia-dev/vigia/internal/model"
)

// NextDue computes the next due date of a scheduled payment strictly after
// from, in UTC. Recurrence follows cron day-of-month semantics: a payment on
// day 31 skips months with fewer days rather than clamping to their last day.
func NextDue(p model.ScheduledPayment, from time.Time) (time.Time, error) {
	expr := fmt.Sprintf("0 0 %d * *", p.PaymentDay)
	if p.PaymentMonth != 0 {
		expr = fmt.Sprintf("0 0 %d %d *", p.PaymentDay, p.PaymentMonth)
	}
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse recurrence for %q: %w", p.Name, err)
	}
	return s.Next(from.UTC()), nil
}

// UpcomingBills expands active templates into bills due within horizon of
// from. Templates already covered by an existing bill with the same name and
// due date are skipped, so repeated runs are safe. Returned bills carry no
// ID; the store mints one when they are registered.
func UpcomingBills(payments []model.ScheduledPayment, existing []model.Bill, from time.Time, horizon time.Duration) ([]model.Bill, error) {
	limit := from.Add(horizon)
	var out []model.Bill
	for _, p := range payments {
		if !p.IsActive {
			continue
		}
		due, err := NextDue(p, from)
		if err != nil {
			return nil, err
		}
		if due.After(limit) {
			continue
		}
		if covered(existing, p.Name, due) {
			continue
		}
		out = append(out, model.Bill{
			Name:       p.Name,
			Amount:     p.Amount,
			DueDate:    due,
			CategoryID: p.CategoryID,
			Status:     model.BillPending,
		})
	}
	return out, nil
}

func covered(existing []model.Bill, name string, due time.Time) bool {
	y, m, d := due.Date()
	for _, b := range existing {
		by, bm, bd := b.DueDate.Date()
		if b.Name == name && by == y && bm == m && bd == d {
			return true
		}
	}
	return false
}
