package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"MarketMovers/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without Bars get a synthetic weekday series unless Synthetic is false.
type MockFetcher struct {
	Bars      map[string][]model.OHLCV
	Shares    map[string]int64
	Err       error
	SharesErr error
	Synthetic bool
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbols []string, rng model.DateRange) (*model.Table, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars := make(map[string][]model.OHLCV, len(symbols))
	for _, s := range distinct(symbols) {
		if b, ok := m.Bars[s]; ok {
			bars[s] = inRange(b, rng)
			continue
		}
		if m.Synthetic {
			bars[s] = generateMockBars(basePrice(s), rng)
		}
	}
	return BuildTable(symbols, bars), nil
}

func (m *MockFetcher) LookupShares(_ context.Context, symbol string) (int64, error) {
	if m.SharesErr != nil {
		return 0, m.SharesErr
	}
	if n, ok := m.Shares[symbol]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("mock: no shares for %s", symbol)
}

func inRange(bars []model.OHLCV, rng model.DateRange) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if b.Time.Before(rng.Start) || !b.Time.Before(rng.End) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// basePrice derives a stable pseudo price from the symbol so mock runs differ per ticker.
func basePrice(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 20 + float64(h.Sum32()%480)
}

func generateMockBars(basePrice float64, rng model.DateRange) []model.OHLCV {
	var bars []model.OHLCV
	i := 0
	for d := calendarDay(rng.Start); d.Before(rng.End); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i%20-10)*0.001)
		bars = append(bars, model.OHLCV{
			Time:     d,
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p,
			Volume:   1000000,
		})
		i++
	}
	return bars
}
