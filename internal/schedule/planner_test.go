package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigia-dev/vigia/internal/model"
)

func payment(name string, day, month int) model.ScheduledPayment {
	return model.ScheduledPayment{
		Name:          name,
		Amount:        decimal.NewFromInt(100),
		PaymentDay:    day,
		PaymentMonth:  month,
		PaymentMethod: model.MethodDebit,
		CategoryID:    "8",
		IsActive:      true,
	}
}

func TestNextDue_MonthlyBeforePaymentDay(t *testing.T) {
	from := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	due, err := NextDue(payment("Internet", 10, 0), from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), due)
}

func TestNextDue_MonthlyAfterPaymentDay(t *testing.T) {
	from := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	due, err := NextDue(payment("Internet", 10, 0), from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), due)
}

func TestNextDue_Annual(t *testing.T) {
	from := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	due, err := NextDue(payment("IPVA", 15, 3), from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), due)
}

func TestNextDue_Day31SkipsShortMonths(t *testing.T) {
	from := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	due, err := NextDue(payment("Aluguel", 31, 0), from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), due, "February has no day 31")
}

func TestUpcomingBills(t *testing.T) {
	from := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	inactive := payment("Cancelado", 7, 0)
	inactive.IsActive = false
	payments := []model.ScheduledPayment{
		payment("Internet", 10, 0),
		payment("Aluguel", 25, 0),
		inactive,
	}

	bills, err := UpcomingBills(payments, nil, from, 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, bills, 1, "only Internet falls inside the horizon")
	assert.Equal(t, "Internet", bills[0].Name)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), bills[0].DueDate)
	assert.Equal(t, model.BillPending, bills[0].Status)
	assert.Empty(t, bills[0].ID)
}

func TestUpcomingBills_SkipsAlreadyCovered(t *testing.T) {
	from := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	payments := []model.ScheduledPayment{payment("Internet", 10, 0)}
	existing := []model.Bill{{
		ID:      "b1",
		Name:    "Internet",
		DueDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Status:  model.BillPending,
	}}

	bills, err := UpcomingBills(payments, existing, from, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, bills, "repeated runs must not duplicate bills")
}
