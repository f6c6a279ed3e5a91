package export

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigia-dev/vigia/internal/model"
)

func TestBillReminderICS(t *testing.T) {
	bill := model.Bill{
		ID:      "b1",
		Name:    "Conta de Luz",
		Amount:  decimal.RequireFromString("150.75"),
		DueDate: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		Status:  model.BillPending,
	}
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	content := BillReminderICS(bill, now)

	assert.True(t, strings.HasPrefix(content, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(content, "END:VCALENDAR"))
	assert.Contains(t, content, "PRODID:-//VIGIA//Agenda Financeira//PT")
	assert.Contains(t, content, "UID:b1@vigia.app")
	assert.Contains(t, content, "DTSTAMP:20250615T120000Z")
	assert.Contains(t, content, "DTSTART:20250710T090000")
	assert.Contains(t, content, "DTEND:20250710T100000")
	assert.Contains(t, content, "SUMMARY:Vencimento: Conta de Luz")
	assert.Contains(t, content, "Valor: R$ 150.75")

	// Three display alarms: two days, one day, and ten minutes ahead.
	assert.Equal(t, 3, strings.Count(content, "BEGIN:VALARM"))
	assert.Contains(t, content, "TRIGGER:-P2D")
	assert.Contains(t, content, "TRIGGER:-P1D")
	assert.Contains(t, content, "TRIGGER:-PT10M")

	for _, line := range strings.Split(content, "\r\n") {
		require.NotContains(t, line, "\n", "lines must be CRLF-separated only")
	}
}
