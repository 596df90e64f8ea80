package genwire

import (
	"context"
	"encoding/json"

	"github.com/codegenlab/genwire/pkg/genwire/framing"
	"github.com/codegenlab/genwire/pkg/wirerrs"
)

// Notify sends a call that expects no reply. It is never placed in the
// pending-request table.
func (c *Conn) Notify(method string, args ...any) error {
	return c.send(map[string]any{
		fieldMethod: method,
		fieldParams: paramsArray(args),
	})
}

// Request sends a call expecting a reply and blocks the caller (never the
// read loop) until the matching response arrives, the context ends, or the
// connection shuts down. Shutdown while awaiting yields
// wirerrs.ErrRequestCanceled.
func (c *Conn) Request(ctx context.Context, method string, args ...any) (any, error) {
	if !c.alive() {
		return nil, wirerrs.ErrConnClosed
	}

	id := c.nextID()
	resCh := c.pending.Register(id)

	err := c.send(map[string]any{
		fieldID:     id,
		fieldMethod: method,
		fieldParams: paramsArray(args),
	})
	if err != nil {
		c.pending.Remove(id)

		return nil, err
	}

	select {
	case <-ctx.Done():
		c.pending.Remove(id)

		return nil, ctx.Err()
	case out := <-resCh:
		return out.Value, out.Err
	}
}

// RequestAs issues a Request and decodes the response payload into T.
func RequestAs[T any](ctx context.Context, c *Conn, method string, args ...any) (T, error) {
	var out T

	v, err := c.Request(ctx, method, args...)
	if err != nil {
		return out, err
	}
	if v == nil {
		return out, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return out, wirerrs.NewProtocolError(
			wirerrs.ErrCodeMessageParseFailed,
			"re-encode response payload",
			err,
		)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, wirerrs.NewProtocolError(
			wirerrs.ErrCodeMessageParseFailed,
			"decode response payload",
			err,
		)
	}

	return out, nil
}

// sendResult sends the success response for an inbound request. A handler
// that produced no value yields a null result.
func (c *Conn) sendResult(id any, result any) {
	err := c.send(map[string]any{
		fieldID:     id,
		fieldResult: result,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to send response")
		c.tracef("failed to send response: %v", err)
	}
}

// sendError sends the error response for an inbound request that could not
// be served.
func (c *Conn) sendError(id any, code int, message string) {
	err := c.send(map[string]any{
		fieldID: id,
		fieldError: map[string]any{
			fieldCode:    code,
			fieldMessage: message,
		},
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to send error response")
		c.tracef("failed to send error response: %v", err)
	}
}

// send serializes one outbound value and writes it under the write lock,
// so concurrent senders never interleave header and body bytes.
func (c *Conn) send(v any) error {
	if !c.alive() {
		return wirerrs.ErrConnClosed
	}

	frame, err := framing.EncodeFrame(v)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.out.Write(frame); err != nil {
		return wirerrs.NewTransportError(
			wirerrs.ErrCodeWriteFailed,
			"write frame",
			err,
		)
	}

	return nil
}
