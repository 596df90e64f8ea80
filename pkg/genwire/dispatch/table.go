package dispatch

import (
	"fmt"
	"sync"

	"github.com/codegenlab/genwire/pkg/wirerrs"
)

// Table maps method names to handlers. Entries are registered at setup
// time before the read loop observes traffic and are never removed at
// runtime; the lock exists so late registration is still safe.
type Table struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewTable creates an empty dispatch table.
func NewTable() *Table {
	return &Table{handlers: make(map[string]Handler)}
}

// Register installs a handler for a method name. Registering the same name
// twice is a programming error and is rejected.
func (t *Table) Register(method string, h Handler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.handlers[method]; exists {
		return wirerrs.NewDispatchError(
			wirerrs.ErrCodeDuplicateMethod,
			fmt.Sprintf("method %q", method),
			wirerrs.ErrDuplicateMethod,
		).WithMethod(method)
	}
	t.handlers[method] = h

	return nil
}

// Lookup returns the handler for a method name, if one is registered.
func (t *Table) Lookup(method string) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	h, ok := t.handlers[method]

	return h, ok
}
