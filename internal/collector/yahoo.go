package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"MarketMovers/internal/model"
)

const (
	yahooChartURL   = "https://query1.finance.yahoo.com"
	yahooSummaryURL = "https://query2.finance.yahoo.com"
)

// YahooFetcher implements Provider using Yahoo Finance public endpoints.
type YahooFetcher struct {
	Client     *http.Client
	ChartURL   string
	SummaryURL string
	SymbolMap  map[string]string // maps internal symbol to Yahoo ticker

	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, requestsPerSecond int, logger *zap.Logger) *YahooFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YahooFetcher{
		Client:     newHTTPClient(proxyURL),
		ChartURL:   yahooChartURL,
		SummaryURL: yahooSummaryURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		limiter: newLimiter(requestsPerSecond),
		logger:  logger.Named("yahoo"),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// yahooSummary is the quoteSummary response restricted to the modules we request.
type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			DefaultKeyStatistics struct {
				SharesOutstanding struct {
					Raw *float64 `json:"raw"`
				} `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func valueAt(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

// Fetch downloads daily bars for every symbol, one request per distinct symbol.
func (f *YahooFetcher) Fetch(ctx context.Context, symbols []string, rng model.DateRange) (*model.Table, error) {
	bars := make(map[string][]model.OHLCV, len(symbols))
	for _, s := range distinct(symbols) {
		b, err := f.fetchChart(ctx, s, rng)
		if errors.Is(err, ErrNoData) {
			f.logger.Warn("no price history", zap.String("symbol", s))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", s, err)
		}
		bars[s] = b
	}
	return BuildTable(symbols, bars), nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, rng model.DateRange) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&includeAdjustedClose=true&events=history",
		f.ChartURL, url.PathEscape(f.yahooSymbol(symbol)), rng.Start.Unix(), rng.End.Unix())

	var chart yahooChart
	if err := getJSON(ctx, f.Client, f.limiter, "yahoo", u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := model.OHLCV{
			Time:     calendarDay(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()),
			Open:     valueAt(quote.Open, i),
			High:     valueAt(quote.High, i),
			Low:      valueAt(quote.Low, i),
			Close:    valueAt(quote.Close, i),
			AdjClose: valueAt(adj, i),
			Volume:   valueAt(quote.Volume, i),
		}
		if math.IsNaN(bar.Close) && math.IsNaN(bar.AdjClose) {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// LookupShares reads sharesOutstanding from the key statistics module.
func (f *YahooFetcher) LookupShares(ctx context.Context, symbol string) (int64, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=defaultKeyStatistics",
		f.SummaryURL, url.PathEscape(f.yahooSymbol(symbol)))

	var summary yahooSummary
	if err := getJSON(ctx, f.Client, f.limiter, "yahoo", u, &summary); err != nil {
		return 0, err
	}
	if summary.QuoteSummary.Error != nil {
		return 0, fmt.Errorf("yahoo api error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return 0, ErrNoData
	}
	raw := summary.QuoteSummary.Result[0].DefaultKeyStatistics.SharesOutstanding.Raw
	if raw == nil || *raw <= 0 {
		return 0, fmt.Errorf("yahoo: sharesOutstanding missing for %s", symbol)
	}
	return int64(*raw), nil
}
