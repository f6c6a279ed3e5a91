// Package suspicious annotates already-committed expenses that match
// category, timing, or duplication patterns. It is purely advisory and
// never un-commits anything.
package suspicious

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vigia-dev/vigia/internal/config"
	"github.com/vigia-dev/vigia/internal/model"
)

// Detector evaluates committed transactions with an ordered set of checks.
// First match wins.
type Detector struct {
	cfg config.SuspiciousConfig
}

// NewDetector creates a Detector from configured thresholds.
func NewDetector(cfg config.SuspiciousConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect inspects a freshly committed transaction against history, which
// must already include the committed transaction itself. Income is always
// exempt. The returned flag has no ID; the store mints one when it appends
// the flag, which keeps Detect deterministic for identical inputs.
//
// Checks run in priority order: duplicate, unusual amount, unusual time,
// possible new subscription.
func (d *Detector) Detect(committed model.Transaction, history []model.Transaction, now time.Time) *model.SuspiciousFlag {
	if committed.Type != model.TypeExpense {
		return nil
	}

	for _, t := range history {
		if t.ID == committed.ID || t.Type != model.TypeExpense {
			continue
		}
		if t.Amount.Equal(committed.Amount) &&
			t.CategoryID == committed.CategoryID &&
			absDuration(t.Date.Sub(committed.Date)) < d.cfg.DuplicateWindow() {
			minutes := int(absDuration(t.Date.Sub(committed.Date)).Round(time.Minute) / time.Minute)
			return d.flag(committed, now, model.SuspiciousDuplicate,
				fmt.Sprintf("Encontramos duas compras iguais (%s) feitas com %d minuto(s) de diferença. Deseja revisar?",
					formatBRL(committed.Amount), minutes))
		}
	}

	categoryTotal := decimal.Zero
	categoryCount := 0
	for _, t := range history {
		if t.ID == committed.ID || t.Type != model.TypeExpense || t.CategoryID != committed.CategoryID {
			continue
		}
		categoryTotal = categoryTotal.Add(t.Amount)
		categoryCount++
	}
	// Sparse categories are skipped to avoid false positives.
	if categoryCount > d.cfg.MinCategoryHistory {
		mean := categoryTotal.Div(decimal.NewFromInt(int64(categoryCount)))
		threshold := mean.Mul(decimal.NewFromFloat(d.cfg.UnusualMultiplier))
		if committed.Amount.GreaterThan(threshold) {
			pct := committed.Amount.Sub(mean).Div(mean).Mul(decimal.NewFromInt(100)).Round(0)
			return d.flag(committed, now, model.SuspiciousUnusualAmount,
				fmt.Sprintf("Este valor de %s é %s%% maior que seu gasto médio nesta categoria.",
					formatBRL(committed.Amount), pct))
		}
	}

	if hour := committed.Date.Hour(); hour >= d.cfg.UnusualStartHour && hour < d.cfg.UnusualEndHour {
		return d.flag(committed, now, model.SuspiciousUnusualTime,
			fmt.Sprintf("Esta compra foi realizada em um horário atípico (%dh). Deseja revisar?", hour))
	}

	sameDescription := 0
	for _, t := range history {
		if t.ID == committed.ID || t.Type != model.TypeExpense {
			continue
		}
		if strings.EqualFold(t.Description, committed.Description) {
			sameDescription++
		}
	}
	if sameDescription >= d.cfg.SubscriptionMinRepeats {
		return d.flag(committed, now, model.SuspiciousNewSubscription,
			fmt.Sprintf("Uma possível assinatura foi detectada: cobrança repetida para %q nos últimos meses.", committed.Description))
	}

	return nil
}

func (d *Detector) flag(committed model.Transaction, now time.Time, reason model.SuspiciousReason, message string) *model.SuspiciousFlag {
	return &model.SuspiciousFlag{
		TransactionID: committed.ID,
		Reason:        reason,
		Message:       message,
		Status:        model.SuspiciousPending,
		Timestamp:     now,
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func formatBRL(amount decimal.Decimal) string {
	return "R$ " + amount.StringFixed(2)
}
