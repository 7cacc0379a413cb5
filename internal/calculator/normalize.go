package calculator

import (
	"fmt"
	"strings"

	"MarketMovers/internal/model"
)

// ValidationError reports an unusable date range.
type ValidationError struct {
	Range model.DateRange
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("end date %s must fall after start date %s",
		e.Range.End.Format(model.DateLayout), e.Range.Start.Format(model.DateLayout))
}

// ParseSymbols splits a comma-separated ticker string into trimmed, uppercased symbols.
// Order is preserved and duplicates are kept. Blank tokens such as the middle of "AAPL,,MSFT"
// are dropped, so the result can be shorter than the comma-separated token count.
func ParseSymbols(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	tokens := strings.Split(raw, ",")
	symbols := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		s := strings.ToUpper(strings.TrimSpace(tok))
		if s == "" {
			continue
		}
		symbols = append(symbols, s)
	}
	return symbols
}

// ValidateRange fails when start is not strictly before end.
func ValidateRange(r model.DateRange) error {
	if !r.Start.Before(r.End) {
		return &ValidationError{Range: r}
	}
	return nil
}
