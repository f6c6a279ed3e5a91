// Package export renders ledger data to interchange formats: CSV for
// spreadsheets and iCalendar for bill reminders.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vigia-dev/vigia/internal/model"
)

// Header is the CSV header for a transaction export.
const Header = "id,type,amount,description,category,date,tags,approved_by"

const (
	numFields   = 8
	colID       = 0
	colType     = 1
	colAmount   = 2
	colDesc     = 3
	colCategory = 4
	colDate     = 5
	colTags     = 6
	colApproved = 7
)

// WriteTransactionsCSV writes transactions to w (including header). Category
// ids are resolved to names; unknown ids are written as-is.
func WriteTransactionsCSV(w io.Writer, txns []model.Transaction, categories []model.Category) error {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(marshalTransaction(t, names)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

func marshalTransaction(t model.Transaction, names map[string]string) []string {
	rec := make([]string, numFields)
	rec[colID] = t.ID
	rec[colType] = string(t.Type)
	rec[colAmount] = t.Amount.StringFixed(2)
	rec[colDesc] = t.Description
	rec[colCategory] = t.CategoryID
	if name, ok := names[t.CategoryID]; ok {
		rec[colCategory] = name
	}
	rec[colDate] = t.Date.UTC().Format("2006-01-02")
	rec[colTags] = strings.Join(t.Tags, ";")
	rec[colApproved] = strings.Join(t.ApprovedBy, ";")
	return rec
}
