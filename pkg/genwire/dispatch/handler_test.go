package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/codegenlab/genwire/pkg/wirerrs"
)

// TestUnary_Binding covers the binding rules for one-argument handlers: a
// one-element array binds positionally, a params object binds whole.
func TestUnary_Binding(t *testing.T) {
	h := Unary(func(_ context.Context, arg any) (any, error) {
		return arg, nil
	})

	t.Run("one-element array binds the element", func(t *testing.T) {
		got, err := h.Invoke(context.Background(), []any{"value"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "value" {
			t.Errorf("expected %q, got %v", "value", got)
		}
	})

	t.Run("object binds whole", func(t *testing.T) {
		params := map[string]any{"path": "main.go"}

		got, err := h.Invoke(context.Background(), params)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		m, ok := got.(map[string]any)
		if !ok || m["path"] != "main.go" {
			t.Errorf("expected the whole object, got %v", got)
		}
	})

	t.Run("wrong arity fails", func(t *testing.T) {
		for _, params := range []any{nil, []any{}, []any{1, 2}, "scalar"} {
			_, err := h.Invoke(context.Background(), params)
			if !errors.Is(err, wirerrs.ErrArgumentCount) {
				t.Errorf("params %v: expected ErrArgumentCount, got %v", params, err)
			}
		}
	})
}

// TestNullary_Binding covers the empty-params requirement for zero-argument
// handlers.
func TestNullary_Binding(t *testing.T) {
	h := Nullary(func(_ context.Context) (any, error) {
		return 7, nil
	})

	t.Run("absent and empty params are accepted", func(t *testing.T) {
		for _, params := range []any{nil, []any{}, map[string]any{}} {
			got, err := h.Invoke(context.Background(), params)
			if err != nil {
				t.Fatalf("params %v: unexpected error: %v", params, err)
			}
			if got != 7 {
				t.Errorf("expected 7, got %v", got)
			}
		}
	})

	t.Run("non-empty params fail", func(t *testing.T) {
		_, err := h.Invoke(context.Background(), []any{1})
		if !errors.Is(err, wirerrs.ErrArgumentCount) {
			t.Fatalf("expected ErrArgumentCount, got %v", err)
		}
	})
}

// TestBinary_Binding covers positional binding for two-argument handlers.
func TestBinary_Binding(t *testing.T) {
	h := Binary(func(_ context.Context, first, second any) (any, error) {
		return []any{first, second}, nil
	})

	t.Run("two-element array binds positionally", func(t *testing.T) {
		got, err := h.Invoke(context.Background(), []any{"a", "b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pair, ok := got.([]any)
		if !ok || pair[0] != "a" || pair[1] != "b" {
			t.Errorf("expected [a b], got %v", got)
		}
	})

	t.Run("wrong shapes fail", func(t *testing.T) {
		for _, params := range []any{nil, []any{1}, []any{1, 2, 3}, map[string]any{"a": 1}} {
			_, err := h.Invoke(context.Background(), params)
			if !errors.Is(err, wirerrs.ErrArgumentCount) {
				t.Errorf("params %v: expected ErrArgumentCount, got %v", params, err)
			}
		}
	})
}

// TestNotification verifies that notification handlers receive params as
// decoded and never produce a result value.
func TestNotification(t *testing.T) {
	var received any
	h := Notification(func(_ context.Context, params any) error {
		received = params

		return nil
	})

	params := []any{"event", float64(1)}
	got, err := h.Invoke(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil result, got %v", got)
	}
	if r, ok := received.([]any); !ok || len(r) != 2 {
		t.Errorf("expected params passthrough, got %v", received)
	}
}
