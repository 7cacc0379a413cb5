package report

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSymbols means the input held no ticker symbols.
	ErrNoSymbols = errors.New("no symbols entered")
	// ErrEmptyResult means the fetch returned no rows.
	ErrEmptyResult = errors.New("no data found for the selected symbols and date range")
)

// User-facing messages for each terminal condition.
const (
	MsgNoSymbols    = "Please enter stock symbols."
	MsgInvalidRange = "Error: End date must fall after start date."
	MsgEmptyResult  = "No data found for the selected stock(s) and date range."
)

// FailureError wraps anything unexpected that aborted a run.
type FailureError struct {
	Err error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("An error occurred: %v", e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }
