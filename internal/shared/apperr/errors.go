// Package apperr defines the error taxonomy shared by the signal and trade features.
//
// Every unit of scheduled work (one asset's signal check, one trade's resolution check)
// classifies its failure with one of these sentinels so the surrounding pass can decide
// whether to skip the unit or stop.
package apperr

import (
	"context"
	"errors"
)

var (
	// ErrDataUnavailable indicates missing or insufficient candles or pivot inputs.
	// The affected asset or trade is skipped for this cycle.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrTransient indicates a fetch that still failed after the bounded retry policy.
	ErrTransient = errors.New("transient I/O failure")

	// ErrPersistence indicates that the trade store could not be written.
	// In-memory state stays authoritative until the next successful write.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotification indicates that a message could not be delivered.
	ErrNotification = errors.New("notification failure")
)

// Skippable reports whether err only affects the current unit of work.
// Cancellation of the surrounding context is never skippable: it halts the whole pass.
func Skippable(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrDataUnavailable) ||
		errors.Is(err, ErrTransient) ||
		errors.Is(err, ErrPersistence) ||
		errors.Is(err, ErrNotification)
}
