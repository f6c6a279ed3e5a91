// Package impulse scores candidate expenses against recent ledger history
// for impulsive-spending patterns before they are committed.
package impulse

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vigia-dev/vigia/internal/config"
	"github.com/vigia-dev/vigia/internal/model"
)

// Detector evaluates candidates with an ordered set of checks. First match
// wins; a candidate only ever receives one block reason.
type Detector struct {
	cfg config.ImpulseConfig
}

// NewDetector creates a Detector from configured thresholds.
func NewDetector(cfg config.ImpulseConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect inspects a candidate expense against ledger history, which must be
// sorted newest-first. It returns a pending block describing the matched
// pattern, or nil when the candidate passes. The returned block has no ID;
// the store mints one when it parks the candidate, which keeps Detect
// deterministic for identical inputs.
//
// Checks run in priority order: risky time, repeated purchase, rapid
// purchases. The risky-time check is a blanket policy and fires regardless
// of history. Empty history is not a special case; the remaining checks
// simply find nothing to match.
func (d *Detector) Detect(draft model.TransactionDraft, history []model.Transaction, now time.Time) *model.ImpulseBlock {
	if draft.Type != model.TypeExpense {
		return nil
	}

	if hour := draft.Date.Hour(); hourInWindow(hour, d.cfg.RiskyStartHour, d.cfg.RiskyEndHour) {
		return d.block(draft, now, model.ImpulseRiskyTime, model.RiskMedium,
			fmt.Sprintf("Você quase nunca gasta neste horário (%dh). Tem certeza de que esta compra é essencial agora?", hour))
	}

	if len(history) > 0 {
		last := history[0]
		if last.Type == model.TypeExpense &&
			last.Amount.Equal(draft.Amount) &&
			last.CategoryID == draft.CategoryID &&
			now.Sub(last.Date) < d.cfg.RepeatedWindow() {
			return d.block(draft, now, model.ImpulseRepeatedPurchase, model.RiskHigh,
				fmt.Sprintf("Esta compra de %s é idêntica à anterior. Deseja mesmo confirmar este gasto?", formatBRL(draft.Amount)))
		}
	}

	windowStart := now.Add(-d.cfg.RapidWindow())
	recent := 0
	for _, t := range history {
		if t.Type == model.TypeExpense && t.Date.After(windowStart) {
			recent++
		}
	}
	// The candidate itself would be purchase number recent+1 in the window.
	if recent >= d.cfg.RapidCount-1 {
		return d.block(draft, now, model.ImpulseRapidPurchases, model.RiskCritical,
			fmt.Sprintf("Bloqueei este gasto de %s, pois detectei um padrão de compras por impulso (%d gastos em menos de %d minutos).",
				formatBRL(draft.Amount), d.cfg.RapidCount, d.cfg.RapidWindowMinutes))
	}

	return nil
}

func (d *Detector) block(draft model.TransactionDraft, now time.Time, reason model.ImpulseReason, level model.ImpulseRiskLevel, message string) *model.ImpulseBlock {
	return &model.ImpulseBlock{
		Blocked:   draft,
		Reason:    reason,
		Message:   message,
		RiskLevel: level,
		Timestamp: now,
		Status:    model.BlockPending,
	}
}

// hourInWindow reports whether hour falls in [start, end), wrapping
// midnight when start > end.
func hourInWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func formatBRL(amount decimal.Decimal) string {
	return "R$ " + amount.StringFixed(2)
}
