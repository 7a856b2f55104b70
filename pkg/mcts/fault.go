package mcts

import (
	"fmt"
	"sync"
)

// Internal consistency violations are programmer errors, never control flow.
// Before dying, every registered fault handler runs so owners of diagnostic
// state (e.g. a Search dumping its thread states) get a chance to report it.

// FaultHandler is a diagnostic dump callback run when an internal invariant
// is violated. Handlers must not themselves violate invariants.
type FaultHandler func()

var (
	faultMu       sync.Mutex
	faultHandlers []*faultEntry
	faultRunning  bool
)

type faultEntry struct {
	fn FaultHandler
}

// RegisterFaultHandler adds a handler and returns a function that removes it
// again. The caller owns the registration and must unregister it when the
// diagnostic state it dumps goes away.
func RegisterFaultHandler(h FaultHandler) (unregister func()) {
	entry := &faultEntry{fn: h}
	faultMu.Lock()
	faultHandlers = append(faultHandlers, entry)
	faultMu.Unlock()
	return func() {
		faultMu.Lock()
		defer faultMu.Unlock()
		for i, e := range faultHandlers {
			if e == entry {
				faultHandlers = append(faultHandlers[:i], faultHandlers[i+1:]...)
				return
			}
		}
	}
}

func failf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	faultMu.Lock()
	handlers := make([]*faultEntry, len(faultHandlers))
	copy(handlers, faultHandlers)
	running := faultRunning
	faultRunning = true
	faultMu.Unlock()
	// A handler that faults again must not re-enter the handler list.
	if !running {
		for _, e := range handlers {
			e.fn()
		}
		faultMu.Lock()
		faultRunning = false
		faultMu.Unlock()
	}
	panic("mcts: " + msg)
}
