package domain

import (
	"fmt"

	"go.uber.org/multierr"
)

type Direction string

const (
	DirectionMerge  Direction = "merge"
	DirectionMirror Direction = "mirror"
)

// LineError records a single line that failed during a merge.
type LineError struct {
	ProductID string
	Op        string
	Err       error
}

func (e LineError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ProductID, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

type SyncSummary struct {
	Direction Direction
	Merged    int
	Added     int
	Synced    int
	Errors    []LineError
}

// Updated is the number of lines that reached the remote cart.
func (s SyncSummary) Updated() int {
	return s.Merged + s.Added
}

// Err combines all per-line errors, nil when every line succeeded.
func (s SyncSummary) Err() error {
	var errs error
	for _, le := range s.Errors {
		errs = multierr.Append(errs, le)
	}
	return errs
}

// Message is the one-line notification shown after a sync.
func (s SyncSummary) Message() string {
	switch s.Direction {
	case DirectionMirror:
		return fmt.Sprintf("%d items synced to local storage", s.Synced)
	default:
		msg := fmt.Sprintf("Synced cart: %d merged, %d added", s.Merged, s.Added)
		if len(s.Errors) > 0 {
			msg += fmt.Sprintf(", %d failed", len(s.Errors))
		}
		return msg
	}
}
