package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"MarketMovers/internal/model"
)

// TopN is the leaderboard length for gainers and losers.
const TopN = 5

// TotalChange sums the daily market-cap changes of a series.
// Absent changes (the first day, gaps) count as zero.
func TotalChange(s model.EnrichedSeries) decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.Rows {
		if !r.MarketCapChange.Valid {
			continue
		}
		total = total.Add(r.MarketCapChange.Decimal)
	}
	return total
}

// MoverRecords builds one record per series, in series order.
func MoverRecords(series []model.EnrichedSeries) []model.MoverRecord {
	records := make([]model.MoverRecord, len(series))
	for i, s := range series {
		records[i] = model.MoverRecord{Symbol: s.Symbol, TotalMarketCapChange: TotalChange(s)}
	}
	return records
}

// TopMovers ranks records by total change and keeps the first n of each direction.
// Ties keep input order.
func TopMovers(records []model.MoverRecord, n int) (gainers, losers []model.MoverRecord) {
	gainers = append([]model.MoverRecord(nil), records...)
	sort.SliceStable(gainers, func(i, j int) bool {
		return gainers[i].TotalMarketCapChange.GreaterThan(gainers[j].TotalMarketCapChange)
	})
	losers = append([]model.MoverRecord(nil), records...)
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].TotalMarketCapChange.LessThan(losers[j].TotalMarketCapChange)
	})
	return truncate(gainers, n), truncate(losers, n)
}

func truncate(records []model.MoverRecord, n int) []model.MoverRecord {
	if n < 0 {
		n = 0
	}
	if len(records) > n {
		return records[:n]
	}
	return records
}
