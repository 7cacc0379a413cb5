package model

import (
	"math"
	"time"
)

// Field names as delivered by the price source.
type Field string

const (
	FieldOpen     Field = "Open"
	FieldHigh     Field = "High"
	FieldLow      Field = "Low"
	FieldClose    Field = "Close"
	FieldAdjClose Field = "Adj Close"
	FieldVolume   Field = "Volume"
)

// FieldEffectivePrice is the column used for valuation once the price has been resolved.
const FieldEffectivePrice = FieldAdjClose

// DateLayout is the calendar date format used for input and output.
const DateLayout = "2006-01-02"

// DateRange is a half-open [Start, End) window of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OHLCV represents a single daily bar. Missing observations are NaN.
type OHLCV struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// ColumnKey addresses one column of a Table. Symbol is empty for single-symbol tables.
type ColumnKey struct {
	Field  Field
	Symbol string
}

// Table is a date-indexed set of float columns. Values[c][i] is column c at Index[i].
type Table struct {
	Index   []time.Time
	Columns []ColumnKey
	Values  [][]float64
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Index) == 0
}

// Column returns the values stored under key.
func (t *Table) Column(key ColumnKey) ([]float64, bool) {
	for i, k := range t.Columns {
		if k == key {
			return t.Values[i], true
		}
	}
	return nil, false
}

// Field returns a column of a flat table by field name.
func (t *Table) Field(f Field) ([]float64, bool) {
	return t.Column(ColumnKey{Field: f})
}

// HasField reports whether a flat table carries field f.
func (t *Table) HasField(f Field) bool {
	_, ok := t.Field(f)
	return ok
}

// Set replaces the column under key, appending it if absent. values must match the index length.
func (t *Table) Set(key ColumnKey, values []float64) {
	for i, k := range t.Columns {
		if k == key {
			t.Values[i] = values
			return
		}
	}
	t.Columns = append(t.Columns, key)
	t.Values = append(t.Values, values)
}

// Copy returns a deep copy so callers can mutate columns without aliasing.
func (t *Table) Copy() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Index:   append([]time.Time(nil), t.Index...),
		Columns: append([]ColumnKey(nil), t.Columns...),
		Values:  make([][]float64, len(t.Values)),
	}
	for i, v := range t.Values {
		out.Values[i] = append([]float64(nil), v...)
	}
	return out
}

// NaNColumn returns a column of n missing observations.
func NaNColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
