package contracts

import (
	"errors"
	"fmt"
)

// ErrNoStocksScored is returned when a non-empty universe produced no result
var ErrNoStocksScored = errors.New("no stocks scored")

// ValidationError reports a malformed stock identifier or metric mapping
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// SourceFetchError reports a failed or timed-out provider call for one stock
type SourceFetchError struct {
	StockCode string
	Source    string
	Err       error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("%s fetch failed for %s: %v", e.Source, e.StockCode, e.Err)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed write to a result destination
type PersistenceError struct {
	Destination string
	Err         error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist results to %s: %v", e.Destination, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
