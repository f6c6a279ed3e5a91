package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigia-dev/vigia/internal/model"
)

func TestWriteTransactionsCSV(t *testing.T) {
	txns := []model.Transaction{
		{
			ID:          "t1",
			Type:        model.TypeExpense,
			Amount:      decimal.RequireFromString("150.5"),
			Description: "Mercado",
			CategoryID:  "1",
			Date:        time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC),
			Tags:        []string{"casa", "semanal"},
		},
		{
			ID:          "t2",
			Type:        model.TypeIncome,
			Amount:      decimal.NewFromInt(5000),
			Description: "Salário",
			CategoryID:  "desconhecida",
			Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			ApprovedBy:  []string{"user1"},
		},
	}
	categories := []model.Category{{ID: "1", Name: "Alimentação"}}

	var buf strings.Builder
	require.NoError(t, WriteTransactionsCSV(&buf, txns, categories))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, strings.Split(Header, ","), records[0])
	assert.Equal(t, []string{"t1", "expense", "150.50", "Mercado", "Alimentação", "2025-06-15", "casa;semanal", ""}, records[1])
	assert.Equal(t, []string{"t2", "income", "5000.00", "Salário", "desconhecida", "2025-06-01", "", "user1"}, records[2])
}

func TestWriteTransactionsCSV_Empty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteTransactionsCSV(&buf, nil, nil))
	assert.Equal(t, Header+"\n", buf.String())
}
