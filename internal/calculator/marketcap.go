package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"MarketMovers/internal/model"
)

// ErrNonPositiveShares is returned for a zero or negative share count.
var ErrNonPositiveShares = errors.New("share count must be positive")

// ComputeMarketCap values every row at price x shares and diffs consecutive rows.
// The share count is held constant over the whole window.
func ComputeMarketCap(symbol string, t *model.Table, shares int64) (model.EnrichedSeries, error) {
	if shares <= 0 {
		return model.EnrichedSeries{}, fmt.Errorf("market cap for %s: %w", symbol, ErrNonPositiveShares)
	}
	prices, ok := t.Field(model.FieldEffectivePrice)
	if !ok {
		return model.EnrichedSeries{}, fmt.Errorf("market cap for %s: %w", symbol, ErrNoPriceField)
	}

	sharesDec := decimal.NewFromInt(shares)
	rows := make([]model.EnrichedRow, len(t.Index))
	for i, date := range t.Index {
		row := model.EnrichedRow{Date: date}
		if isObserved(prices[i]) {
			price := decimal.NewFromFloat(prices[i])
			row.Price = decimal.NewNullDecimal(price)
			row.MarketCap = decimal.NewNullDecimal(price.Mul(sharesDec))
		}
		// first row has no predecessor: change stays absent
		if i > 0 && row.MarketCap.Valid && rows[i-1].MarketCap.Valid {
			row.MarketCapChange = decimal.NewNullDecimal(row.MarketCap.Decimal.Sub(rows[i-1].MarketCap.Decimal))
		}
		rows[i] = row
	}
	return model.EnrichedSeries{Symbol: symbol, Shares: shares, Rows: rows}, nil
}

func isObserved(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
