package mcts

import "sync/atomic"

// Global cooperative abort flag. A running search observes it only at the
// IntervalChecker cadence, so a thread may overrun by up to one interval.

var globalAbort atomic.Bool

// SetAbort requests that all running searches stop as soon as possible.
func SetAbort() {
	globalAbort.Store(true)
}

// ClearAbort resets the abort flag. Callers must clear it before starting a
// new search after an abort.
func ClearAbort() {
	globalAbort.Store(false)
}

// Aborted reports whether an abort was requested.
func Aborted() bool {
	return globalAbort.Load()
}
