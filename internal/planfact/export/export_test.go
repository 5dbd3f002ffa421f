package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"

	"planfact-service/internal/planfact/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestToXLSX_RoundTrip(t *testing.T) {
	rows := []model.ReconciledRow{
		{
			Store: "5", Product: "A1", Description: "нож", Brand: "X", Segment: "Кухня",
			Price: d("100"), PlanQty: d("10"), FactQty: d("7"),
			PlanAmount: d("1000"), FactAmount: d("700"),
			QtyVar: d("-3"), AmountVar: d("-300"),
			QtyVarPct: d("-30"), AmountVarPct: d("-30"),
		},
	}
	sheet := ReconciledSheet(rows)
	b, err := ToXLSX(sheet)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, sheet.Headers, got[0], "порядок колонок сохранён")
	assert.Equal(t, "5", got[1][0])
	assert.Equal(t, "A1", got[1][1])
	assert.Equal(t, "700", got[1][10])
	assert.Equal(t, "-3", got[1][11])
	assert.Equal(t, "-30", got[1][13])
}

func TestToXLSX_DoesNotMutateInput(t *testing.T) {
	sums := []model.Summary{{Store: "1", PlanQty: d("10"), FactQty: d("8")}}
	snapshot := sums[0]
	_, err := ToXLSX(SummarySheet(sums, false))
	require.NoError(t, err)
	assert.Equal(t, snapshot, sums[0])
}

func TestSummarySheet_SegmentColumn(t *testing.T) {
	sums := []model.Summary{{Store: "1", Segment: "TV"}}
	with := SummarySheet(sums, true)
	without := SummarySheet(sums, false)
	assert.Contains(t, with.Headers, "Сегмент")
	assert.NotContains(t, without.Headers, "Сегмент")
	assert.Len(t, with.Rows[0], len(with.Headers))
}

func TestColumnWidthCapped(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	rows := []model.ReconciledRow{{Store: "1", Product: "A", Description: string(long)}}
	b, err := ToXLSX(ReconciledSheet(rows))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	w, err := f.GetColWidth(f.GetSheetName(0), "C")
	require.NoError(t, err)
	assert.LessOrEqual(t, w, float64(maxColWidth))
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "plan_fact_analysis_2026-08-28.xlsx", Filename("", now))
	assert.Equal(t, "plan_fact_analysis_Магазин_5_2026-08-28.xlsx", Filename("Магазин 5", now))
}
