package export

import (
	"strings"
	"time"

	"github.com/vigia-dev/vigia/internal/model"
)

const icsProdID = "-//VIGIA//Agenda Financeira//PT"

// BillReminderICS renders one bill as an iCalendar file: a one-hour event at
// 09:00 on the due date with display alarms two days, one day, and ten
// minutes ahead. Lines are joined with CRLF per RFC 5545.
func BillReminderICS(bill model.Bill, now time.Time) string {
	day := bill.DueDate.UTC().Format("20060102")
	stamp := now.UTC().Format("20060102T150405Z")
	reminder := "Lembrete de Vencimento: " + bill.Name

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + icsProdID,
		"BEGIN:VEVENT",
		"UID:" + bill.ID + "@vigia.app",
		"DTSTAMP:" + stamp,
		"DTSTART:" + day + "T090000",
		"DTEND:" + day + "T100000",
		"SUMMARY:Vencimento: " + bill.Name,
		"DESCRIPTION:Valor: R$ " + bill.Amount.StringFixed(2) + "\\n\\nLembrete gerado por VIGIA.",
		"BEGIN:VALARM",
		"TRIGGER:-P2D",
		"ACTION:DISPLAY",
		"DESCRIPTION:" + reminder,
		"END:VALARM",
		"BEGIN:VALARM",
		"TRIGGER:-P1D",
		"ACTION:DISPLAY",
		"DESCRIPTION:" + reminder,
		"END:VALARM",
		"BEGIN:VALARM",
		"TRIGGER:-PT10M",
		"ACTION:DISPLAY",
		"DESCRIPTION:Vencimento Hoje: " + bill.Name,
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n")
}
