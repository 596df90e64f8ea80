// Package wirerrs provides the error handling framework for the genwire
// channel. It defines error categories, codes, and typed wrappers used
// consistently across the framing, dispatch, and connection layers.
package wirerrs

import "errors"

// ErrorCategory represents different categories of errors that can occur
// on a genwire channel.
type ErrorCategory string

const (
	// CategoryTransport represents stream-level I/O errors.
	CategoryTransport ErrorCategory = "transport"
	// CategoryFraming represents message delimiting errors.
	CategoryFraming ErrorCategory = "framing"
	// CategoryDispatch represents handler lookup and binding errors.
	CategoryDispatch ErrorCategory = "dispatch"
	// CategoryProtocol represents peer protocol violations.
	CategoryProtocol ErrorCategory = "protocol"
)

// ErrorCode represents specific error codes within each category.
type ErrorCode string

// Transport error codes.
const (
	ErrCodeConnClosed  ErrorCode = "conn_closed"
	ErrCodeReadFailed  ErrorCode = "read_failed"
	ErrCodeWriteFailed ErrorCode = "write_failed"
)

// Framing error codes.
const (
	ErrCodeFramingViolation ErrorCode = "framing_violation"
	ErrCodeBufferOverflow   ErrorCode = "buffer_overflow"
	ErrCodeTruncatedMessage ErrorCode = "truncated_message"
)

// Dispatch error codes.
const (
	ErrCodeDuplicateMethod ErrorCode = "duplicate_method"
	ErrCodeUnknownMethod   ErrorCode = "unknown_method"
	ErrCodeArgumentCount   ErrorCode = "argument_count"
	ErrCodeHandlerPanic    ErrorCode = "handler_panic"
)

// Protocol error codes.
const (
	ErrCodeMessageParseFailed ErrorCode = "message_parse_failed"
	ErrCodeUnmatchedResponse  ErrorCode = "unmatched_response"
	ErrCodeBatchUnsupported   ErrorCode = "batch_unsupported"
	ErrCodeRemoteError        ErrorCode = "remote_error"
)

// Sentinel errors for errors.Is checks at API boundaries.
var (
	// ErrConnClosed indicates the connection is no longer alive.
	ErrConnClosed = errors.New("genwire: connection closed")
	// ErrRequestCanceled indicates a pending request was resolved by
	// shutdown rather than by a matching response.
	ErrRequestCanceled = errors.New("genwire: request canceled")
	// ErrDuplicateMethod indicates a method name was registered twice.
	ErrDuplicateMethod = errors.New("genwire: method already registered")
	// ErrArgumentCount indicates inbound params did not match the
	// handler's declared shape.
	ErrArgumentCount = errors.New("genwire: argument count mismatch")
)
