package impulse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigia-dev/vigia/internal/config"
	"github.com/vigia-dev/vigia/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// at returns a fixed afternoon timestamp shifted to the given hour.
func at(hour int) time.Time {
	return time.Date(2025, 6, 15, hour, 30, 0, 0, time.UTC)
}

func newDetector() *Detector {
	return NewDetector(config.Default().Impulse)
}

func draft(amount, categoryID string, date time.Time) model.TransactionDraft {
	return model.TransactionDraft{
		Type:        model.TypeExpense,
		Amount:      dec(amount),
		Description: "Compra",
		CategoryID:  categoryID,
		Date:        date,
	}
}

func expense(id, amount, categoryID string, date time.Time) model.Transaction {
	return model.Transaction{
		ID:          id,
		Type:        model.TypeExpense,
		Amount:      dec(amount),
		Description: "Compra",
		CategoryID:  categoryID,
		Date:        date,
	}
}

func TestDetect_RiskyTime(t *testing.T) {
	d := newDetector()
	now := at(14)

	for _, hour := range []int{23, 0, 2, 4} {
		blk := d.Detect(draft("50", "3", at(hour)), nil, now)
		require.NotNil(t, blk, "hour %d should be risky", hour)
		assert.Equal(t, model.ImpulseRiskyTime, blk.Reason)
		assert.Equal(t, model.RiskMedium, blk.RiskLevel)
		assert.Equal(t, model.BlockPending, blk.Status)
		assert.Empty(t, blk.ID, "detector must not mint ids")
	}

	for _, hour := range []int{5, 12, 22} {
		assert.Nil(t, d.Detect(draft("50", "3", at(hour)), nil, now), "hour %d is safe", hour)
	}
}

func TestDetect_RiskyTime_WinsOverRepeatedPurchase(t *testing.T) {
	d := newDetector()
	now := at(23)

	// Identical to the head of history within the repeated window, but the
	// candidate sits in the risky window: priority ordering picks risky_time.
	history := []model.Transaction{expense("t1", "50", "3", now.Add(-time.Minute))}
	blk := d.Detect(draft("50", "3", at(23)), history, now)
	require.NotNil(t, blk)
	assert.Equal(t, model.ImpulseRiskyTime, blk.Reason)
}

func TestDetect_RepeatedPurchase(t *testing.T) {
	d := newDetector()
	now := at(14)

	history := []model.Transaction{expense("t1", "50", "3", now.Add(-time.Minute))}
	blk := d.Detect(draft("50", "3", now), history, now)
	require.NotNil(t, blk)
	assert.Equal(t, model.ImpulseRepeatedPurchase, blk.Reason)
	assert.Equal(t, model.RiskHigh, blk.RiskLevel)
	assert.True(t, blk.Blocked.Amount.Equal(dec("50")), "block keeps the candidate data")
}

func TestDetect_RepeatedPurchase_OutsideWindow(t *testing.T) {
	d := newDetector()
	now := at(14)

	history := []model.Transaction{expense("t1", "50", "3", now.Add(-3*time.Minute))}
	assert.Nil(t, d.Detect(draft("50", "3", now), history, now))
}

func TestDetect_RepeatedPurchase_DifferentCategory(t *testing.T) {
	d := newDetector()
	now := at(14)

	history := []model.Transaction{expense("t1", "50", "9", now.Add(-time.Minute))}
	assert.Nil(t, d.Detect(draft("50", "3", now), history, now))
}

func TestDetect_RapidPurchases(t *testing.T) {
	d := newDetector()
	now := at(14)

	history := []model.Transaction{
		expense("t1", "12", "4", now.Add(-time.Minute)),
		expense("t2", "33", "2", now.Add(-3*time.Minute)),
	}
	blk := d.Detect(draft("50", "3", now), history, now)
	require.NotNil(t, blk)
	assert.Equal(t, model.ImpulseRapidPurchases, blk.Reason)
	assert.Equal(t, model.RiskCritical, blk.RiskLevel)
}

func TestDetect_RapidPurchases_TooFewInWindow(t *testing.T) {
	d := newDetector()
	now := at(14)

	history := []model.Transaction{
		expense("t1", "12", "4", now.Add(-time.Minute)),
		expense("t2", "33", "2", now.Add(-10*time.Minute)),
	}
	assert.Nil(t, d.Detect(draft("50", "3", now), history, now))
}

func TestDetect_IncomeExempt(t *testing.T) {
	d := newDetector()
	now := at(23)

	income := model.TransactionDraft{
		Type:        model.TypeIncome,
		Amount:      dec("5000"),
		Description: "Salário",
		CategoryID:  "7",
		Date:        at(23),
	}
	assert.Nil(t, d.Detect(income, nil, now))
}

func TestDetect_QuietHistoryPasses(t *testing.T) {
	d := newDetector()
	now := at(14)

	// Single identical purchase 90 minutes ago: no window matches.
	history := []model.Transaction{expense("t1", "50", "3", now.Add(-90*time.Minute))}
	assert.Nil(t, d.Detect(draft("50", "3", now), history, now))
}

func TestDetect_EmptyHistory(t *testing.T) {
	d := newDetector()
	assert.Nil(t, d.Detect(draft("50", "3", at(14)), nil, at(14)))
}

func TestDetect_Idempotent(t *testing.T) {
	d := newDetector()
	now := at(14)
	history := []model.Transaction{expense("t1", "50", "3", now.Add(-time.Minute))}
	candidate := draft("50", "3", now)

	first := d.Detect(candidate, history, now)
	second := d.Detect(candidate, history, now)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestHourInWindow_WrapsMidnight(t *testing.T) {
	assert.True(t, hourInWindow(23, 23, 5))
	assert.True(t, hourInWindow(0, 23, 5))
	assert.True(t, hourInWindow(4, 23, 5))
	assert.False(t, hourInWindow(5, 23, 5))
	assert.False(t, hourInWindow(22, 23, 5))

	assert.True(t, hourInWindow(3, 1, 5))
	assert.False(t, hourInWindow(0, 1, 5))
}
