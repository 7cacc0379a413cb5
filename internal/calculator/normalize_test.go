package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketMovers/internal/model"
)

func TestParseSymbols(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"default input", "AAPL, MSFT, GOOG", []string{"AAPL", "MSFT", "GOOG"}},
		{"lowercase and padding", "  aapl ,msft  ", []string{"AAPL", "MSFT"}},
		{"duplicates kept in order", "msft, AAPL, msft", []string{"MSFT", "AAPL", "MSFT"}},
		{"single", "tsla", []string{"TSLA"}},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"blank tokens dropped", "AAPL,, ,MSFT", []string{"AAPL", "MSFT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSymbols(tt.raw))
		})
	}
}

func TestValidateRange(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{"start before end", day(1), day(2), false},
		{"equal dates", day(5), day(5), true},
		{"start after end", day(9), day(2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(model.DateRange{Start: tt.start, End: tt.end})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}
