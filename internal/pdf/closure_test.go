package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonops-backend/internal/domain"
)

func sampleClosure() domain.DayClosure {
	return domain.DayClosure{
		ID:              3,
		BranchID:        10,
		Date:            time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		TotalSales:      decimal.NewFromInt(1400),
		TotalCash:       decimal.NewFromInt(100),
		TotalExpense:    decimal.NewFromInt(50),
		TotalNet:        decimal.NewFromInt(1250),
		TotalCommission: decimal.NewFromInt(100),
		TotalBonus:      decimal.NewFromInt(20),
		EntriesCount:    2,
		EmployeesCount:  2,
		ClosedBy:        42,
		ClosedAt:        time.Date(2026, 5, 10, 22, 15, 0, 0, time.UTC),
		Notes:           "end of day",
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := ClosureRenderer{}.Render(sampleClosure())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderIsDeterministic(t *testing.T) {
	// repeated renders of the same frozen closure must be byte-identical
	c := sampleClosure()
	first, err := ClosureRenderer{}.Render(c)
	require.NoError(t, err)
	second, err := ClosureRenderer{}.Render(c)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderDiffersPerClosure(t *testing.T) {
	a, err := ClosureRenderer{}.Render(sampleClosure())
	require.NoError(t, err)

	c := sampleClosure()
	c.TotalSales = decimal.NewFromInt(9999)
	b, err := ClosureRenderer{}.Render(c)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
