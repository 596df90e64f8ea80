// Package pending tracks outbound requests awaiting their responses.
package pending

import (
	"sync"

	"github.com/codegenlab/genwire/pkg/wirerrs"
)

// Outcome is the terminal state of one outbound request: a value from a
// matching response, or a cancellation error from shutdown.
type Outcome struct {
	Value any
	Err   error
}

// Table maps outstanding request ids to the callers awaiting them. An
// entry is owned by the table until resolution or cancellation, at which
// point it is removed exactly once and ownership passes to the waiter.
type Table struct {
	mu      sync.Mutex
	waiters map[string]chan Outcome
}

// NewTable creates an empty pending-request table.
func NewTable() *Table {
	return &Table{waiters: make(map[string]chan Outcome)}
}

// Register creates the completion slot for a request id. The returned
// channel receives exactly one Outcome.
func (t *Table) Register(id string) <-chan Outcome {
	ch := make(chan Outcome, 1)

	t.mu.Lock()
	t.waiters[id] = ch
	t.mu.Unlock()

	return ch
}

// Resolve removes and completes the entry for id atomically. It reports
// false when no entry exists, which indicates a protocol error from the
// peer and must be handled without crashing the reader loop.
func (t *Table) Resolve(id string, value any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.waiters[id]
	if !ok {
		return false
	}
	delete(t.waiters, id)
	ch <- Outcome{Value: value}

	return true
}

// Fail removes and completes the entry for id with an error. It reports
// false when no entry exists.
func (t *Table) Fail(id string, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.waiters[id]
	if !ok {
		return false
	}
	delete(t.waiters, id)
	ch <- Outcome{Err: err}

	return true
}

// Remove discards the entry for id without completing it, for callers that
// gave up waiting. Removing an already-resolved id is a no-op.
func (t *Table) Remove(id string) {
	t.mu.Lock()
	delete(t.waiters, id)
	t.mu.Unlock()
}

// CancelAll completes every still-pending entry with a cancellation
// outcome and clears the table, so no caller blocks forever across
// shutdown.
func (t *Table) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, ch := range t.waiters {
		ch <- Outcome{Err: wirerrs.ErrRequestCanceled}
		delete(t.waiters, id)
	}
}

// Len reports the number of outstanding requests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.waiters)
}
