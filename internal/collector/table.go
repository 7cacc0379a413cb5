package collector

import (
	"math"
	"sort"
	"time"

	"MarketMovers/internal/model"
)

var tableFields = []model.Field{
	model.FieldOpen,
	model.FieldHigh,
	model.FieldLow,
	model.FieldClose,
	model.FieldAdjClose,
	model.FieldVolume,
}

// BuildTable lays out per-symbol bars on a shared date index.
// A single distinct symbol produces flat columns; more produce field-major (field, symbol) columns.
// Adj Close is only present when at least one bar carries it.
func BuildTable(symbols []string, bars map[string][]model.OHLCV) *model.Table {
	unique := distinct(symbols)

	seen := make(map[time.Time]struct{})
	hasAdj := false
	for _, s := range unique {
		for _, b := range bars[s] {
			seen[b.Time] = struct{}{}
			if !math.IsNaN(b.AdjClose) {
				hasAdj = true
			}
		}
	}
	if len(seen) == 0 {
		return &model.Table{}
	}

	index := make([]time.Time, 0, len(seen))
	for d := range seen {
		index = append(index, d)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })
	pos := make(map[time.Time]int, len(index))
	for i, d := range index {
		pos[d] = i
	}

	t := &model.Table{Index: index}
	multi := len(unique) > 1
	for _, f := range tableFields {
		if f == model.FieldAdjClose && !hasAdj {
			continue
		}
		for _, s := range unique {
			col := model.NaNColumn(len(index))
			for _, b := range bars[s] {
				col[pos[b.Time]] = barField(b, f)
			}
			key := model.ColumnKey{Field: f}
			if multi {
				key.Symbol = s
			}
			t.Set(key, col)
		}
	}
	return t
}

func barField(b model.OHLCV, f model.Field) float64 {
	switch f {
	case model.FieldOpen:
		return b.Open
	case model.FieldHigh:
		return b.High
	case model.FieldLow:
		return b.Low
	case model.FieldClose:
		return b.Close
	case model.FieldAdjClose:
		return b.AdjClose
	case model.FieldVolume:
		return b.Volume
	}
	return math.NaN()
}

func distinct(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// calendarDay strips the clock so bars from different exchanges share index keys.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
