package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EnrichedRow is one date of a symbol's series with derived market-cap fields.
// Price and MarketCap are invalid where the symbol has no observation on that date.
// MarketCapChange is invalid on the first row and wherever either neighbour price is missing.
type EnrichedRow struct {
	Date            time.Time           `json:"date"`
	Price           decimal.NullDecimal `json:"price"`
	MarketCap       decimal.NullDecimal `json:"market_cap"`
	MarketCapChange decimal.NullDecimal `json:"market_cap_change"`
}

// EnrichedSeries is one symbol's price series with market cap computed at a fixed share count.
type EnrichedSeries struct {
	Symbol string        `json:"symbol"`
	Shares int64         `json:"shares"`
	Rows   []EnrichedRow `json:"rows"`
}

// MoverRecord is a symbol's summed market-cap change over the window.
type MoverRecord struct {
	Symbol               string          `json:"symbol"`
	TotalMarketCapChange decimal.Decimal `json:"total_market_cap_change"`
}

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeNoSymbols    Outcome = "no_symbols"
	OutcomeInvalidRange Outcome = "invalid_range"
	OutcomeEmpty        Outcome = "empty"
	OutcomeFailed       Outcome = "failed"
)

// Input echoes what the user asked for.
type Input struct {
	Raw     string    `json:"raw"`
	Symbols []string  `json:"symbols"`
	Range   DateRange `json:"range"`
}

// Report is everything a presentation surface needs for one run.
type Report struct {
	RunID       uuid.UUID        `json:"run_id"`
	Input       Input            `json:"input"`
	Outcome     Outcome          `json:"outcome"`
	Message     string           `json:"message,omitempty"`
	Notices     []Notice         `json:"notices"`
	Series      []EnrichedSeries `json:"series,omitempty"`
	Gainers     []MoverRecord    `json:"top_gainers,omitempty"`
	Losers      []MoverRecord    `json:"top_losers,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}
