package calculator

import (
	"errors"
	"fmt"

	"MarketMovers/internal/model"
)

// Shape describes how a fetched table lays out its columns.
type Shape int

const (
	// ShapeFlat tables are keyed by field only (one symbol was requested).
	ShapeFlat Shape = iota
	// ShapeMulti tables are keyed by (field, symbol).
	ShapeMulti
)

func (s Shape) String() string {
	if s == ShapeMulti {
		return "multi"
	}
	return "flat"
}

// ErrSymbolNotInTable is returned when a multi-symbol table has no columns for the symbol.
var ErrSymbolNotInTable = errors.New("symbol not present in fetched table")

// DetectShape inspects the column keys of a fetched table.
func DetectShape(t *model.Table) Shape {
	for _, k := range t.Columns {
		if k.Symbol != "" {
			return ShapeMulti
		}
	}
	return ShapeFlat
}

// ExtractSymbol returns the symbol's own columns as a flat table keyed by field.
// The result never aliases the source table.
func ExtractSymbol(t *model.Table, symbol string) (*model.Table, error) {
	if DetectShape(t) == ShapeFlat {
		return t.Copy(), nil
	}

	out := &model.Table{Index: append(t.Index[:0:0], t.Index...)}
	for i, k := range t.Columns {
		if k.Symbol != symbol {
			continue
		}
		out.Set(model.ColumnKey{Field: k.Field}, append([]float64(nil), t.Values[i]...))
	}
	if len(out.Columns) == 0 {
		return nil, fmt.Errorf("extract %s: %w", symbol, ErrSymbolNotInTable)
	}
	return out, nil
}
