package exporter

import (
	"bytes"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"MarketMovers/internal/model"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func sampleReport() *model.Report {
	mcap := func(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }
	return &model.Report{
		RunID:   uuid.MustParse("6f1c2a8e-0000-4000-8000-000000000001"),
		Input:   model.Input{Symbols: []string{"AAPL", "AAPL"}, Range: model.DateRange{Start: day(1), End: day(31)}},
		Outcome: model.OutcomeOK,
		Series: []model.EnrichedSeries{
			{Symbol: "AAPL", Shares: 1_000_000_000, Rows: []model.EnrichedRow{
				{Date: day(2), Price: mcap(100), MarketCap: mcap(100_000_000_000)},
				{Date: day(3), Price: mcap(102), MarketCap: mcap(102_000_000_000), MarketCapChange: mcap(2_000_000_000)},
			}},
			{Symbol: "AAPL", Shares: 1, Rows: []model.EnrichedRow{{Date: day(2), Price: mcap(1), MarketCap: mcap(1)}}},
		},
		Gainers: []model.MoverRecord{
			{Symbol: "AAPL", TotalMarketCapChange: decimal.NewFromInt(2_000_000_000)},
			{Symbol: "AAPL", TotalMarketCapChange: decimal.Zero},
		},
		Losers: []model.MoverRecord{
			{Symbol: "AAPL", TotalMarketCapChange: decimal.Zero},
		},
	}
}

func openWorkbook(t *testing.T, rep *model.Report) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rep))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWrite_Sheets(t *testing.T) {
	f := openWorkbook(t, sampleReport())
	assert.Equal(t, []string{MoversSheet, "AAPL", "AAPL (2)"}, f.GetSheetList())
}

func TestWrite_SeriesRows(t *testing.T) {
	f := openWorkbook(t, sampleReport())

	rows, err := f.GetRows("AAPL", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Price", "Market Cap", "Market Cap Change"}, rows[0])

	assert.Equal(t, "2024-01-02", rows[1][0])
	require.GreaterOrEqual(t, len(rows[1]), 3)
	mc, err := strconv.ParseFloat(rows[1][2], 64)
	require.NoError(t, err)
	assert.Equal(t, 1e11, mc)
	if len(rows[1]) > 3 {
		assert.Empty(t, rows[1][3], "first change is absent")
	}

	change, err := strconv.ParseFloat(rows[2][3], 64)
	require.NoError(t, err)
	assert.Equal(t, 2e9, change)
}

func TestWrite_MissingObservationLeavesBlankCells(t *testing.T) {
	rep := sampleReport()
	rep.Series = rep.Series[:1]
	rep.Series[0].Rows = append(rep.Series[0].Rows, model.EnrichedRow{Date: day(4)})

	f := openWorkbook(t, rep)
	rows, err := f.GetRows("AAPL", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "2024-01-04", rows[3][0])
	for _, cell := range rows[3][1:] {
		assert.Empty(t, cell)
	}
}

func TestWrite_MoversSheet(t *testing.T) {
	f := openWorkbook(t, sampleReport())

	rows, err := f.GetRows(MoversSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "6f1c2a8e-0000-4000-8000-000000000001", rows[0][1])
	assert.Equal(t, "2024-01-01 to 2024-01-31", rows[1][1])
	assert.Equal(t, "Top Gainers", rows[3][0])
	assert.Equal(t, "Top Losers", rows[3][4])

	assert.Equal(t, []string{"1", "AAPL"}, rows[5][:2])
	assert.Equal(t, "AAPL", rows[5][5])
	assert.Equal(t, "2", rows[6][0])
	if len(rows[6]) > 5 {
		assert.Empty(t, rows[6][5], "only one loser")
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	rep := sampleReport()

	path, err := SaveFile(dir+"/nested", rep)
	require.NoError(t, err)
	assert.Contains(t, path, "movers-6f1c2a8e-0000-4000-8000-000000000001.xlsx")
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"top movers": true}

	assert.Equal(t, "BRK_B", sheetName("BRK/B", used))
	assert.Equal(t, "BRK_B (2)", sheetName("BRK/B", used))
	assert.Equal(t, "TOP MOVERS (2)", sheetName("TOP MOVERS", used), "names are case-insensitive")

	long := sheetName("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", used)
	assert.Len(t, long, maxSheetName)
	again := sheetName("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", used)
	assert.Len(t, again, maxSheetName)
	assert.NotEqual(t, long, again)
}
