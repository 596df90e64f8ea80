package genwire

import (
	"errors"
	"fmt"
	"io"

	"github.com/codegenlab/genwire/pkg/genwire/dispatch"
	"github.com/codegenlab/genwire/pkg/genwire/framing"
	"github.com/codegenlab/genwire/pkg/wirerrs"
)

// readLoop is the single sequential consumer of the input stream. Messages
// are read strictly in arrival order, but each one is dispatched on its
// own goroutine so handler completion order is unordered.
func (c *Conn) readLoop() {
	defer close(c.done)
	defer c.shutdown()

	for c.alive() {
		v, err := c.codec.ReadValue()
		if err != nil {
			if c.fatalReadError(err) {
				return
			}

			continue
		}

		go c.dispatchValue(v)
	}
}

// fatalReadError classifies a read error and reports whether the loop must
// exit. Errors local to one message are logged and skipped.
func (c *Conn) fatalReadError(err error) bool {
	if !c.alive() {
		return true
	}

	if errors.Is(err, io.EOF) {
		// Peer closed the stream between messages; the connection ends
		// quietly.
		c.log.Debug().Msg("input stream closed by peer")
		c.tracef("stream closed by peer")

		return true
	}

	var protoErr *wirerrs.ProtocolError
	if errors.As(err, &protoErr) {
		c.log.Warn().Err(err).Msg("skipping unparseable message")
		c.tracef("skipping unparseable message: %v", err)

		return false
	}

	var framingErr *wirerrs.FramingError
	if errors.As(err, &framingErr) {
		c.log.Error().Err(err).Msg("framing violation, terminating read loop")
		c.tracef("fatal framing violation: %v", err)

		return true
	}

	c.log.Error().Err(err).Msg("input stream failed, terminating read loop")
	c.tracef("stream read failed: %v", err)

	return true
}

// dispatchValue is the per-message dispatch step, run concurrently with
// subsequent reads.
func (c *Conn) dispatchValue(v *framing.Value) {
	if v.IsArray() {
		// Batch messages are never processed.
		c.log.Warn().Int("elements", len(v.Array)).Msg("batch message unhandled")
		c.tracef("unhandled batch message with %d element(s)", len(v.Array))

		return
	}

	obj := v.Object
	if method, ok := obj[fieldMethod].(string); ok {
		c.handleCall(method, obj)

		return
	}
	_, hasResult := obj[fieldResult]
	_, hasError := obj[fieldError]
	if hasResult || hasError {
		c.handleResponse(obj)

		return
	}

	c.log.Warn().Msg("message is neither a call nor a response")
	c.tracef("discarding message with no method and no result")
}

// handleCall invokes the registered handler for an inbound call and, when
// the call carried an id, sends back the correlated response.
func (c *Conn) handleCall(method string, obj map[string]any) {
	id, hasID := obj[fieldID]

	h, ok := c.handlers.Lookup(method)
	if !ok {
		if hasID {
			// A request expecting a reply must not be stranded.
			c.sendError(id, codeMethodNotFound, "method not found: "+method)

			return
		}
		c.tracef("dropping notification for unknown method %q", method)

		return
	}

	result, err := c.invoke(h, obj[fieldParams])
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Msg("handler failed")
		c.tracef("handler for %q failed: %v", method, err)
		if hasID {
			code := codeInternalError
			if errors.Is(err, wirerrs.ErrArgumentCount) {
				code = codeInvalidParams
			}
			c.sendError(id, code, err.Error())
		}

		return
	}

	if hasID {
		c.sendResult(id, result)
	}
}

// invoke runs a handler, converting a panic at the task boundary into an
// error so one bad message cannot take down the reader.
func (c *Conn) invoke(h dispatch.Handler, params any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wirerrs.NewDispatchError(
				wirerrs.ErrCodeHandlerPanic,
				fmt.Sprintf("handler panic: %v", r),
				nil,
			)
		}
	}()

	return h.Invoke(c.ctx, params)
}

// handleResponse resolves the pending request matching an inbound
// response. An id with no pending entry is a peer protocol error: logged
// and discarded, never a crash.
func (c *Conn) handleResponse(obj map[string]any) {
	rawID, ok := obj[fieldID]
	if !ok {
		c.log.Warn().Msg("response carries no id")
		c.tracef("discarding response with no id")

		return
	}

	id := idKey(rawID)

	if errObj, ok := obj[fieldError].(map[string]any); ok {
		if !c.pending.Fail(id, responseError(errObj)) {
			c.log.Warn().Str("id", id).Msg("error response matches no pending request")
			c.tracef("discarding error response for unknown id %s", id)
		}

		return
	}

	if !c.pending.Resolve(id, obj[fieldResult]) {
		c.log.Warn().Str("id", id).Msg("response matches no pending request")
		c.tracef("discarding response for unknown id %s", id)
	}
}

// responseError shapes a peer error response into a protocol error carrying
// the peer's code and message.
func responseError(errObj map[string]any) error {
	msg, _ := errObj[fieldMessage].(string)
	if msg == "" {
		msg = "request failed"
	}

	perr := wirerrs.NewProtocolError(wirerrs.ErrCodeRemoteError, msg, nil)
	if code, ok := errObj[fieldCode].(float64); ok {
		perr = perr.WithRemoteCode(int(code))
	}

	return perr
}
