package collector

import (
	"context"
	"errors"

	"MarketMovers/internal/model"
)

// ErrNoData marks a symbol the provider has no history for.
var ErrNoData = errors.New("no data returned")

// Fetcher returns daily price history for a set of symbols.
// One requested symbol yields a flat table; several yield (field, symbol) columns.
// A range without any observations yields an empty table, not an error.
type Fetcher interface {
	Fetch(ctx context.Context, symbols []string, rng model.DateRange) (*model.Table, error)
	Name() string
}

// SharesLookup returns the outstanding share count for a symbol.
type SharesLookup interface {
	LookupShares(ctx context.Context, symbol string) (int64, error)
}

// Provider is a data source that serves both prices and fundamentals.
type Provider interface {
	Fetcher
	SharesLookup
}
