// Package dispatch maps method names to handlers and binds inbound params
// to the closed set of handler shapes the channel supports.
package dispatch

import (
	"context"
	"fmt"

	"github.com/codegenlab/genwire/pkg/wirerrs"
)

// Handler is one registered method implementation. The constructors in
// this package (Nullary, Unary, Binary, Notification) are the only
// supported shapes; argument decoding is fixed per shape at registration
// time rather than via runtime type coercion.
type Handler interface {
	// Invoke binds the decoded params and runs the handler. Notification
	// handlers return a nil value.
	Invoke(ctx context.Context, params any) (any, error)
}

// NullaryFunc is a handler taking no arguments and returning a value.
type NullaryFunc func(ctx context.Context) (any, error)

// UnaryFunc is a handler taking one argument: either the single element
// of a one-element params array, or the whole params object.
type UnaryFunc func(ctx context.Context, arg any) (any, error)

// BinaryFunc is a handler taking two positional arguments.
type BinaryFunc func(ctx context.Context, first, second any) (any, error)

// NotificationFunc is a fire-and-forget handler. It receives the params
// value as decoded (array, object, or nil) and produces no result.
type NotificationFunc func(ctx context.Context, params any) error

type nullaryHandler struct{ fn NullaryFunc }

type unaryHandler struct{ fn UnaryFunc }

type binaryHandler struct{ fn BinaryFunc }

type notificationHandler struct{ fn NotificationFunc }

// Nullary wraps a zero-argument handler. Inbound params must be absent or
// empty.
func Nullary(fn NullaryFunc) Handler { return &nullaryHandler{fn: fn} }

// Unary wraps a one-argument handler.
func Unary(fn UnaryFunc) Handler { return &unaryHandler{fn: fn} }

// Binary wraps a two-argument handler. Inbound params must be a
// two-element array.
func Binary(fn BinaryFunc) Handler { return &binaryHandler{fn: fn} }

// Notification wraps a handler that never produces a result payload.
func Notification(fn NotificationFunc) Handler {
	return &notificationHandler{fn: fn}
}

func (h *nullaryHandler) Invoke(ctx context.Context, params any) (any, error) {
	if !emptyParams(params) {
		return nil, argumentError(0, params)
	}

	return h.fn(ctx)
}

func (h *unaryHandler) Invoke(ctx context.Context, params any) (any, error) {
	switch p := params.(type) {
	case []any:
		if len(p) != 1 {
			return nil, argumentError(1, params)
		}

		return h.fn(ctx, p[0])
	case map[string]any:
		// A params object binds whole as the single argument.
		return h.fn(ctx, p)
	default:
		return nil, argumentError(1, params)
	}
}

func (h *binaryHandler) Invoke(ctx context.Context, params any) (any, error) {
	p, ok := params.([]any)
	if !ok || len(p) != 2 {
		return nil, argumentError(2, params)
	}

	return h.fn(ctx, p[0], p[1])
}

func (h *notificationHandler) Invoke(ctx context.Context, params any) (any, error) {
	return nil, h.fn(ctx, params)
}

// emptyParams reports whether params is absent or empty, the only shapes a
// nullary handler accepts.
func emptyParams(params any) bool {
	switch p := params.(type) {
	case nil:
		return true
	case []any:
		return len(p) == 0
	case map[string]any:
		return len(p) == 0
	default:
		return false
	}
}

// argumentError builds the per-message binding failure. It aborts
// processing of the one message and never crashes the connection.
func argumentError(arity int, params any) error {
	return wirerrs.NewDispatchError(
		wirerrs.ErrCodeArgumentCount,
		fmt.Sprintf("handler expects %d argument(s), params are %s", arity, describeParams(params)),
		wirerrs.ErrArgumentCount,
	)
}

func describeParams(params any) string {
	switch p := params.(type) {
	case nil:
		return "absent"
	case []any:
		return fmt.Sprintf("a %d-element array", len(p))
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", params)
	}
}
