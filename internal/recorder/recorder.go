package recorder

import (
	"time"

	"github.com/shopspring/decimal"

	"MarketMovers/internal/model"
)

// RunSummary is the persisted view of one report run.
type RunSummary struct {
	RunID       string        `json:"run_id"`
	Timestamp   time.Time     `json:"timestamp"`
	Symbols     string        `json:"symbols"`
	Start       string        `json:"start"`
	End         string        `json:"end"`
	Outcome     model.Outcome `json:"outcome"`
	Message     string        `json:"message,omitempty"`
	NoticeCount int           `json:"notice_count"`
	Gainers     []MoverRow    `json:"top_gainers"`
	Losers      []MoverRow    `json:"top_losers"`
}

// MoverRow is one ranked entry of a persisted run.
type MoverRow struct {
	Rank   int             `json:"rank"`
	Symbol string          `json:"symbol"`
	Change decimal.Decimal `json:"total_market_cap_change"`
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(rep *model.Report) error
	// Recent returns up to limit runs, newest first.
	Recent(limit int) ([]RunSummary, error)
	Close() error
}
