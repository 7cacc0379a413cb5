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

// DefaultEODHDURL is the base URL for the EODHD API.
const DefaultEODHDURL = "https://eodhd.com/api"

// EODHDFetcher implements Provider using the EODHD REST API.
type EODHDFetcher struct {
	BaseURL  string
	APIKey   string
	Exchange string // appended as TICKER.EXCHANGE
	Client   *http.Client

	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewEODHDFetcher creates a new fetcher with optional proxy support.
func NewEODHDFetcher(baseURL, apiKey, exchange, proxyURL string, requestsPerSecond int, logger *zap.Logger) *EODHDFetcher {
	if baseURL == "" {
		baseURL = DefaultEODHDURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EODHDFetcher{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Exchange: exchange,
		Client:   newHTTPClient(proxyURL),
		limiter:  newLimiter(requestsPerSecond),
		logger:   logger.Named("eodhd"),
	}
}

func (f *EODHDFetcher) Name() string { return "eodhd" }

// eodBar is the JSON shape of one /eod row.
type eodBar struct {
	Date          string   `json:"date"`
	Open          *float64 `json:"open"`
	High          *float64 `json:"high"`
	Low           *float64 `json:"low"`
	Close         *float64 `json:"close"`
	AdjustedClose *float64 `json:"adjusted_close"`
	Volume        *float64 `json:"volume"`
}

type eodFundamentals struct {
	SharesStats struct {
		SharesOutstanding *float64 `json:"SharesOutstanding"`
	} `json:"SharesStats"`
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func (f *EODHDFetcher) ticker(symbol string) string {
	if f.Exchange == "" {
		return symbol
	}
	return symbol + "." + f.Exchange
}

func (f *EODHDFetcher) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", f.APIKey)
	params.Set("fmt", "json")
	return fmt.Sprintf("%s%s?%s", f.BaseURL, path, params.Encode())
}

func (f *EODHDFetcher) Fetch(ctx context.Context, symbols []string, rng model.DateRange) (*model.Table, error) {
	bars := make(map[string][]model.OHLCV, len(symbols))
	for _, s := range distinct(symbols) {
		b, err := f.fetchEOD(ctx, s, rng)
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

func (f *EODHDFetcher) fetchEOD(ctx context.Context, symbol string, rng model.DateRange) ([]model.OHLCV, error) {
	// EODHD treats "to" as inclusive; the range end is exclusive.
	params := url.Values{}
	params.Set("from", rng.Start.Format(model.DateLayout))
	params.Set("to", rng.End.AddDate(0, 0, -1).Format(model.DateLayout))
	params.Set("period", "d")
	params.Set("order", "a")

	var rows []eodBar
	if err := getJSON(ctx, f.Client, f.limiter, "eodhd", f.endpoint("/eod/"+url.PathEscape(f.ticker(symbol)), params), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse(model.DateLayout, r.Date)
		if err != nil {
			f.logger.Warn("skip row with bad date", zap.String("symbol", symbol), zap.String("date", r.Date))
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:     d,
			Open:     orNaN(r.Open),
			High:     orNaN(r.High),
			Low:      orNaN(r.Low),
			Close:    orNaN(r.Close),
			AdjClose: orNaN(r.AdjustedClose),
			Volume:   orNaN(r.Volume),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// LookupShares reads SharesStats.SharesOutstanding from the fundamentals endpoint.
func (f *EODHDFetcher) LookupShares(ctx context.Context, symbol string) (int64, error) {
	var fund eodFundamentals
	if err := getJSON(ctx, f.Client, f.limiter, "eodhd", f.endpoint("/fundamentals/"+url.PathEscape(f.ticker(symbol)), nil), &fund); err != nil {
		return 0, err
	}
	v := fund.SharesStats.SharesOutstanding
	if v == nil || *v <= 0 {
		return 0, fmt.Errorf("eodhd: SharesOutstanding missing for %s", symbol)
	}
	return int64(*v), nil
}
