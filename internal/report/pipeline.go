package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MarketMovers/internal/calculator"
	"MarketMovers/internal/collector"
	"MarketMovers/internal/metrics"
	"MarketMovers/internal/model"
)

// Request is one user-triggered report.
type Request struct {
	Symbols string
	Range   model.DateRange
}

// Pipeline fetches prices and turns them into a market-cap movers report.
type Pipeline struct {
	Fetcher collector.Fetcher
	Shares  *collector.SharesResolver
	Metrics *metrics.Metrics

	logger *zap.Logger
	now    func() time.Time
}

// NewPipeline wires a pipeline. m and logger may be nil.
func NewPipeline(fetcher collector.Fetcher, shares *collector.SharesResolver, m *metrics.Metrics, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if shares == nil {
		shares = collector.NewSharesResolver(nil, logger)
	}
	return &Pipeline{
		Fetcher: fetcher,
		Shares:  shares,
		Metrics: m,
		logger:  logger.Named("report"),
		now:     time.Now,
	}
}

// Run executes the whole pipeline once. The returned report is never nil: it always echoes the
// input and carries every notice raised, plus either the results or a user-facing message.
// The error is nil only for OutcomeOK.
func (p *Pipeline) Run(ctx context.Context, req Request) (rep *model.Report, err error) {
	rep = &model.Report{
		RunID:       uuid.New(),
		Input:       model.Input{Raw: req.Symbols, Range: req.Range},
		GeneratedAt: p.now(),
	}
	var notices model.Notices
	log := p.logger.With(zap.String("run_id", rep.RunID.String()))

	defer func() {
		if r := recover(); r != nil {
			err = fail(rep, fmt.Errorf("panic: %v", r))
		}
		rep.Notices = notices.List()
		p.Metrics.ObserveRun(string(rep.Outcome))
		for _, n := range rep.Notices {
			p.Metrics.ObserveNotice(string(n.Kind))
		}
		if err != nil {
			log.Warn("report run ended early", zap.String("outcome", string(rep.Outcome)), zap.Error(err))
			return
		}
		log.Info("report run complete",
			zap.Int("symbols", len(rep.Series)), zap.Int("notices", len(rep.Notices)))
	}()

	rep.Input.Symbols = calculator.ParseSymbols(req.Symbols)

	if err := calculator.ValidateRange(req.Range); err != nil {
		rep.Outcome = model.OutcomeInvalidRange
		rep.Message = MsgInvalidRange
		return rep, err
	}
	if len(rep.Input.Symbols) == 0 {
		rep.Outcome = model.OutcomeNoSymbols
		rep.Message = MsgNoSymbols
		return rep, ErrNoSymbols
	}

	log.Info("fetching price history",
		zap.Strings("symbols", rep.Input.Symbols), zap.String("provider", p.Fetcher.Name()))
	started := time.Now()
	table, err := p.Fetcher.Fetch(ctx, rep.Input.Symbols, req.Range)
	p.Metrics.ObserveFetch(p.Fetcher.Name(), time.Since(started))
	if err != nil {
		return rep, fail(rep, err)
	}
	if table.Empty() {
		rep.Outcome = model.OutcomeEmpty
		rep.Message = MsgEmptyResult
		return rep, ErrEmptyResult
	}

	series := make([]model.EnrichedSeries, 0, len(rep.Input.Symbols))
	for _, symbol := range rep.Input.Symbols {
		s, err := p.processSymbol(ctx, table, symbol, &notices)
		if err != nil {
			return rep, fail(rep, err)
		}
		series = append(series, s)
	}

	rep.Series = series
	rep.Gainers, rep.Losers = calculator.TopMovers(calculator.MoverRecords(series), calculator.TopN)
	rep.Outcome = model.OutcomeOK
	return rep, nil
}

func (p *Pipeline) processSymbol(ctx context.Context, table *model.Table, symbol string, notices *model.Notices) (model.EnrichedSeries, error) {
	flat, err := calculator.ExtractSymbol(table, symbol)
	if err != nil {
		return model.EnrichedSeries{}, err
	}
	flat, err = calculator.ResolvePrice(flat, symbol, notices)
	if err != nil {
		return model.EnrichedSeries{}, err
	}
	shares := p.Shares.Resolve(ctx, symbol, notices)
	return calculator.ComputeMarketCap(symbol, flat, shares)
}

func fail(rep *model.Report, cause error) error {
	ferr := &FailureError{Err: cause}
	var already *FailureError
	if errors.As(cause, &already) {
		ferr = already
	}
	rep.Outcome = model.OutcomeFailed
	rep.Message = ferr.Error()
	rep.Series, rep.Gainers, rep.Losers = nil, nil, nil
	return ferr
}
