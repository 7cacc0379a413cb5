package report

import (
	"fmt"
	"time"

	"MarketMovers/internal/model"
)

const (
	// DefaultSymbols is the watchlist used when none is configured.
	DefaultSymbols = "AAPL, MSFT, GOOG"
	// DefaultLookbackDays is the window length when no start date is given.
	DefaultLookbackDays = 365
)

// ResolveRange parses optional YYYY-MM-DD bounds. A missing end is today and a missing start
// is lookbackDays before the end. Ordering is left to the pipeline.
func ResolveRange(start, end string, now time.Time, lookbackDays int) (model.DateRange, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	var rng model.DateRange
	if end == "" {
		y, m, d := now.Date()
		rng.End = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	} else {
		t, err := time.Parse(model.DateLayout, end)
		if err != nil {
			return rng, fmt.Errorf("end date %q: want YYYY-MM-DD", end)
		}
		rng.End = t
	}
	if start == "" {
		rng.Start = rng.End.AddDate(0, 0, -lookbackDays)
	} else {
		t, err := time.Parse(model.DateLayout, start)
		if err != nil {
			return rng, fmt.Errorf("start date %q: want YYYY-MM-DD", start)
		}
		rng.Start = t
	}
	return rng, nil
}
