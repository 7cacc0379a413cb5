package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketMovers/internal/model"
)

func testIndex(n int) []time.Time {
	idx := make([]time.Time, n)
	for i := range idx {
		idx[i] = time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC)
	}
	return idx
}

func multiTable() *model.Table {
	return &model.Table{
		Index: testIndex(2),
		Columns: []model.ColumnKey{
			{Field: model.FieldClose, Symbol: "AAPL"},
			{Field: model.FieldClose, Symbol: "MSFT"},
			{Field: model.FieldVolume, Symbol: "AAPL"},
			{Field: model.FieldVolume, Symbol: "MSFT"},
		},
		Values: [][]float64{
			{100, 101},
			{400, 410},
			{1e6, 2e6},
			{3e6, 4e6},
		},
	}
}

func TestDetectShape(t *testing.T) {
	assert.Equal(t, ShapeMulti, DetectShape(multiTable()))

	flat := &model.Table{
		Index:   testIndex(1),
		Columns: []model.ColumnKey{{Field: model.FieldClose}},
		Values:  [][]float64{{1}},
	}
	assert.Equal(t, ShapeFlat, DetectShape(flat))
}

func TestExtractSymbol_MultiDropsSymbolLevel(t *testing.T) {
	src := multiTable()

	got, err := ExtractSymbol(src, "MSFT")
	require.NoError(t, err)

	assert.Equal(t, []model.ColumnKey{{Field: model.FieldClose}, {Field: model.FieldVolume}}, got.Columns)
	closes, ok := got.Field(model.FieldClose)
	require.True(t, ok)
	assert.Equal(t, []float64{400, 410}, closes)
	assert.Equal(t, src.Index, got.Index)
}

func TestExtractSymbol_FlatIsCopied(t *testing.T) {
	src := &model.Table{
		Index:   testIndex(2),
		Columns: []model.ColumnKey{{Field: model.FieldClose}},
		Values:  [][]float64{{10, 11}},
	}

	got, err := ExtractSymbol(src, "AAPL")
	require.NoError(t, err)

	got.Values[0][0] = 999
	got.Set(model.ColumnKey{Field: model.FieldAdjClose}, []float64{1, 2})
	assert.Equal(t, 10.0, src.Values[0][0], "extracted table must not alias the source")
	assert.Len(t, src.Columns, 1)
}

func TestExtractSymbol_MultiDoesNotAlias(t *testing.T) {
	src := multiTable()

	got, err := ExtractSymbol(src, "AAPL")
	require.NoError(t, err)
	got.Values[0][0] = -1

	assert.Equal(t, 100.0, src.Values[0][0])
}

func TestExtractSymbol_UnknownSymbol(t *testing.T) {
	_, err := ExtractSymbol(multiTable(), "GOOG")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSymbolNotInTable))
}
