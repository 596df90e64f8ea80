package wirerrs

// FramingError represents a message delimiting failure. Framing errors are
// fatal to the read loop that observes them.
type FramingError struct {
	*BaseError
}

// NewFramingError creates a new framing error.
func NewFramingError(code ErrorCode, message string, cause error) *FramingError {
	return &FramingError{
		BaseError: NewBaseError(CategoryFraming, code, message, cause),
	}
}

// WithByte records the offending byte observed on the stream.
func (e *FramingError) WithByte(b byte) *FramingError {
	_ = e.WithMetadata("byte", b)

	return e
}

// WithBufferSize records the accumulated buffer size at failure time.
func (e *FramingError) WithBufferSize(n int) *FramingError {
	_ = e.WithMetadata("buffer_size", n)

	return e
}

// ProtocolError represents a peer protocol violation that is local to one
// message and never terminates the read loop.
type ProtocolError struct {
	*BaseError
}

// NewProtocolError creates a new protocol error.
func NewProtocolError(code ErrorCode, message string, cause error) *ProtocolError {
	return &ProtocolError{
		BaseError: NewBaseError(CategoryProtocol, code, message, cause),
	}
}

// WithRequestID records the request id the error relates to.
func (e *ProtocolError) WithRequestID(id string) *ProtocolError {
	_ = e.WithMetadata("request_id", id)

	return e
}

// WithRemoteCode records the numeric error code a peer response carried.
func (e *ProtocolError) WithRemoteCode(code int) *ProtocolError {
	_ = e.WithMetadata("remote_code", code)

	return e
}

// DispatchError represents a handler lookup or argument binding failure.
type DispatchError struct {
	*BaseError
}

// NewDispatchError creates a new dispatch error.
func NewDispatchError(code ErrorCode, message string, cause error) *DispatchError {
	return &DispatchError{
		BaseError: NewBaseError(CategoryDispatch, code, message, cause),
	}
}

// WithMethod records the method name the error relates to.
func (e *DispatchError) WithMethod(method string) *DispatchError {
	_ = e.WithMetadata("method", method)

	return e
}

// TransportError represents a stream-level I/O failure.
type TransportError struct {
	*BaseError
}

// NewTransportError creates a new transport error.
func NewTransportError(code ErrorCode, message string, cause error) *TransportError {
	return &TransportError{
		BaseError: NewBaseError(CategoryTransport, code, message, cause),
	}
}
