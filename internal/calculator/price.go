package calculator

import (
	"errors"
	"fmt"
	"math"

	"MarketMovers/internal/model"
)

// ErrNoPriceField is returned when neither adjusted close nor close is available.
var ErrNoPriceField = errors.New("no close price field")

// ResolvePrice guarantees the table carries the effective price column.
// Adjusted close is used as-is; otherwise close is copied over and a fallback notice is raised.
// An adjusted close column without a single observation counts as absent.
func ResolvePrice(t *model.Table, symbol string, notices *model.Notices) (*model.Table, error) {
	if adj, ok := t.Field(model.FieldAdjClose); ok && anyObserved(adj) {
		return t, nil
	}
	closes, ok := t.Field(model.FieldClose)
	if !ok {
		return nil, fmt.Errorf("resolve price for %s: %w", symbol, ErrNoPriceField)
	}
	notices.Add(model.NoticeFieldFallback, symbol,
		fmt.Sprintf("Adjusted Close price not found for %s. Using Close price instead.", symbol))
	t.Set(model.ColumnKey{Field: model.FieldEffectivePrice}, append([]float64(nil), closes...))
	return t, nil
}

func anyObserved(col []float64) bool {
	for _, v := range col {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}
