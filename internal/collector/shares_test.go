package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"MarketMovers/internal/model"
)

// MockSharesLookup is a testify mock of SharesLookup.
type MockSharesLookup struct {
	mock.Mock
}

func (m *MockSharesLookup) LookupShares(ctx context.Context, symbol string) (int64, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(int64), args.Error(1)
}

type panickyLookup struct{}

func (panickyLookup) LookupShares(context.Context, string) (int64, error) { panic("boom") }

func TestSharesResolver_Success(t *testing.T) {
	ctx := context.Background()
	lookup := new(MockSharesLookup)
	lookup.On("LookupShares", ctx, "AAPL").Return(int64(15_000_000_000), nil)
	var notices model.Notices

	got := NewSharesResolver(lookup, nil).Resolve(ctx, "AAPL", &notices)

	assert.Equal(t, int64(15_000_000_000), got)
	assert.Zero(t, notices.Len())
	lookup.AssertExpectations(t)
}

func TestSharesResolver_FallbackCases(t *testing.T) {
	ctx := context.Background()
	failing := new(MockSharesLookup)
	failing.On("LookupShares", ctx, "MSFT").Return(int64(0), errors.New("network down"))
	zero := new(MockSharesLookup)
	zero.On("LookupShares", ctx, "MSFT").Return(int64(0), nil)

	tests := []struct {
		name   string
		lookup SharesLookup
	}{
		{"lookup error", failing},
		{"zero shares", zero},
		{"no lookup", nil},
		{"panic", panickyLookup{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var notices model.Notices

			got := NewSharesResolver(tt.lookup, nil).Resolve(ctx, "MSFT", &notices)

			assert.Equal(t, DefaultShares, got)
			if assert.Equal(t, 1, notices.Len()) {
				n := notices.List()[0]
				assert.Equal(t, model.NoticeSharesFallback, n.Kind)
				assert.Equal(t, "Could not fetch outstanding shares for MSFT. Using a constant value (1,000,000,000) instead.", n.Message)
			}
		})
	}
}
