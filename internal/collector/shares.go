package collector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"MarketMovers/internal/model"
)

// DefaultShares is substituted when the share count cannot be looked up.
// It is a placeholder, not an estimate.
const DefaultShares int64 = 1_000_000_000

var errNoLookup = errors.New("no shares source configured")

// SharesResolver turns any lookup failure into DefaultShares plus a notice.
type SharesResolver struct {
	Lookup SharesLookup
	logger *zap.Logger
}

// NewSharesResolver creates a resolver; lookup may be nil.
func NewSharesResolver(lookup SharesLookup, logger *zap.Logger) *SharesResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SharesResolver{Lookup: lookup, logger: logger.Named("shares")}
}

// Resolve returns the outstanding share count for symbol. It never fails.
func (r *SharesResolver) Resolve(ctx context.Context, symbol string, notices *model.Notices) int64 {
	shares, err := r.lookup(ctx, symbol)
	if err == nil && shares > 0 {
		return shares
	}
	if err == nil {
		err = fmt.Errorf("non-positive share count %d", shares)
	}
	r.logger.Warn("shares lookup failed, using default",
		zap.String("symbol", symbol), zap.Int64("default", DefaultShares), zap.Error(err))
	notices.Add(model.NoticeSharesFallback, symbol,
		fmt.Sprintf("Could not fetch outstanding shares for %s. Using a constant value (1,000,000,000) instead.", symbol))
	return DefaultShares
}

func (r *SharesResolver) lookup(ctx context.Context, symbol string) (shares int64, err error) {
	if r.Lookup == nil {
		return 0, errNoLookup
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("shares lookup panic: %v", p)
		}
	}()
	return r.Lookup.LookupShares(ctx, symbol)
}
