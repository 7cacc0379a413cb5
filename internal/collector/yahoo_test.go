package collector

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketMovers/internal/model"
)

const aaplChart = `{"chart":{"result":[{"meta":{"gmtoffset":-18000},
"timestamp":[1704205800,1704292200,1704378600,1704465000],
"indicators":{"quote":[{"open":[99,101,null,100],"high":[101,103,null,102],"low":[98,100,null,99],
"close":[100,102,null,101],"volume":[10,20,null,30]}]}}],"error":null}}`

const msftChart = `{"chart":{"result":[{"meta":{"gmtoffset":-18000},
"timestamp":[1704205800,1704292200],
"indicators":{"quote":[{"open":[370,372],"high":[375,376],"low":[369,370],"close":[371,373],"volume":[5,6]}],
"adjclose":[{"adjclose":[370.5,372.5]}]}}],"error":null}}`

func newYahooServer(t *testing.T) *YahooFetcher {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(aaplChart))
	})
	mux.HandleFunc("/v8/finance/chart/MSFT", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(msftChart))
	})
	mux.HandleFunc("/v8/finance/chart/ZZZZ", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})
	mux.HandleFunc("/v8/finance/chart/FAIL", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"defaultKeyStatistics":{"sharesOutstanding":{"raw":15000000000,"fmt":"15B"}}}],"error":null}}`))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/MSFT", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"defaultKeyStatistics":{}}],"error":null}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := NewYahooFetcher("", 0, nil)
	f.ChartURL = srv.URL
	f.SummaryURL = srv.URL
	return f
}

func janRange() model.DateRange {
	return model.DateRange{Start: day(1), End: day(31)}
}

func TestYahooFetch_SingleSymbol(t *testing.T) {
	f := newYahooServer(t)

	tbl, err := f.Fetch(context.Background(), []string{"AAPL"}, janRange())
	require.NoError(t, err)

	assert.Equal(t, []model.ColumnKey{
		{Field: model.FieldOpen}, {Field: model.FieldHigh}, {Field: model.FieldLow},
		{Field: model.FieldClose}, {Field: model.FieldVolume},
	}, tbl.Columns)
	require.Len(t, tbl.Index, 3, "null bar is skipped")
	assert.Equal(t, day(2), tbl.Index[0])
	assert.Equal(t, day(5), tbl.Index[2])
	closes, _ := tbl.Field(model.FieldClose)
	assert.Equal(t, []float64{100, 102, 101}, closes)
}

func TestYahooFetch_MultiSymbol(t *testing.T) {
	f := newYahooServer(t)

	tbl, err := f.Fetch(context.Background(), []string{"AAPL", "MSFT"}, janRange())
	require.NoError(t, err)

	adj, ok := tbl.Column(model.ColumnKey{Field: model.FieldAdjClose, Symbol: "MSFT"})
	require.True(t, ok)
	assert.Equal(t, 370.5, adj[0])
	aaplAdj, ok := tbl.Column(model.ColumnKey{Field: model.FieldAdjClose, Symbol: "AAPL"})
	require.True(t, ok)
	assert.True(t, math.IsNaN(aaplAdj[0]))
}

func TestYahooFetch_UnknownSymbolIsEmpty(t *testing.T) {
	f := newYahooServer(t)

	tbl, err := f.Fetch(context.Background(), []string{"ZZZZ"}, janRange())
	require.NoError(t, err)
	assert.True(t, tbl.Empty())
}

func TestYahooFetch_ServerErrorAborts(t *testing.T) {
	f := newYahooServer(t)

	_, err := f.Fetch(context.Background(), []string{"AAPL", "FAIL"}, janRange())
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestYahooLookupShares(t *testing.T) {
	f := newYahooServer(t)

	n, err := f.LookupShares(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(15_000_000_000), n)

	_, err = f.LookupShares(context.Background(), "MSFT")
	assert.Error(t, err, "missing sharesOutstanding")

	_, err = f.LookupShares(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestYahooSymbolMap(t *testing.T) {
	f := NewYahooFetcher("", 0, nil)
	assert.Equal(t, "^GSPC", f.yahooSymbol("SPX500"))
	assert.Equal(t, "AAPL", f.yahooSymbol("AAPL"))
}
