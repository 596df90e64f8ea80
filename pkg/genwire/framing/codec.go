package framing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/codegenlab/genwire/pkg/wirerrs"
)

const (
	// DefaultMaxBufferSize bounds bare-mode accumulation. A buffer that
	// never becomes valid JSON is a framing violation once it grows past
	// this limit.
	DefaultMaxBufferSize = 1 << 20

	headerContentLength = "content-length"
)

// Value is one decoded wire message: exactly one of Object or Array is set.
// Top-level arrays are batch messages, which the channel reports as
// unhandled rather than processing.
type Value struct {
	Object map[string]any
	Array  []any
}

// IsArray reports whether the value is a top-level array.
func (v *Value) IsArray() bool {
	return v.Object == nil
}

// Codec extracts complete messages from a Reader under either framing
// convention and serializes outbound values in header-framed form.
type Codec struct {
	r         *Reader
	maxBuffer int
}

// NewCodec creates a codec over the given reader. maxBuffer bounds
// bare-mode accumulation; zero or negative selects DefaultMaxBufferSize.
func NewCodec(r *Reader, maxBuffer int) *Codec {
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBufferSize
	}

	return &Codec{r: r, maxBuffer: maxBuffer}
}

// ReadValue reads the next complete message using whichever framing the
// peer chose for it. It returns io.EOF once the stream is cleanly closed
// between messages. FramingError results are fatal to the caller's loop;
// ProtocolError results are local to the one message.
func (c *Codec) ReadValue() (*Value, error) {
	b, err := c.skipWhitespace()
	if err != nil {
		return nil, err
	}

	if b == '{' || b == '[' {
		return c.readBare(b)
	}

	return c.readHeaderFramed()
}

// skipWhitespace consumes insignificant bytes between messages and returns
// the first significant byte without consuming it.
func (c *Codec) skipWhitespace() (byte, error) {
	for {
		b, err := c.r.PeekByte()
		if err != nil {
			return 0, err
		}
		if b != ' ' && b != '\t' && b != '\r' && b != '\n' {
			return b, nil
		}
		if err := c.r.DiscardByte(); err != nil {
			return 0, err
		}
	}
}

// readBare accumulates lines until the buffer parses as a complete JSON
// object or array. Parse failures mean "not enough data yet"; only buffer
// overflow is an error.
func (c *Codec) readBare(first byte) (*Value, error) {
	var buf strings.Builder
	closer := byte('}')
	if first == '[' {
		closer = ']'
	}

	for {
		line, err := c.r.ReadLine()
		if err != nil {
			return nil, err
		}
		buf.WriteString(line)

		if buf.Len() > c.maxBuffer {
			return nil, wirerrs.NewFramingError(
				wirerrs.ErrCodeBufferOverflow,
				fmt.Sprintf("bare message exceeds %d bytes", c.maxBuffer),
				nil,
			).WithBufferSize(buf.Len())
		}

		text := buf.String()
		trimmed := strings.TrimSpace(text)
		if len(trimmed) == 0 || trimmed[len(trimmed)-1] != closer {
			continue
		}

		if v, ok := tryParse(trimmed, first); ok {
			return v, nil
		}
	}
}

// readHeaderFramed reads "Name: Value" header lines through a blank line,
// then extracts the body via Content-Length when present, falling back to
// bare-mode accumulation otherwise.
func (c *Codec) readHeaderFramed() (*Value, error) {
	length, hasLength, err := c.readHeaders()
	if err != nil {
		return nil, err
	}

	if hasLength {
		body, err := c.r.ReadBytes(length)
		if err != nil {
			return nil, wirerrs.NewFramingError(
				wirerrs.ErrCodeTruncatedMessage,
				fmt.Sprintf("stream closed inside a %d-byte body", length),
				err,
			)
		}

		return parseBody(string(body))
	}

	b, err := c.r.PeekByte()
	if err != nil {
		return nil, err
	}
	if b != '{' && b != '[' {
		return nil, wirerrs.NewFramingError(
			wirerrs.ErrCodeFramingViolation,
			fmt.Sprintf("expected '{' or '[' after headers, got %q", b),
			nil,
		).WithByte(b)
	}

	return c.readBare(b)
}

// readHeaders consumes header lines through the terminating blank line and
// returns the Content-Length value when one is present and parses.
func (c *Codec) readHeaders() (int, bool, error) {
	length := 0
	hasLength := false

	for {
		line, err := c.r.ReadLine()
		if err != nil {
			return 0, false, err
		}
		if line == "" {
			return length, hasLength, nil
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.ToLower(strings.TrimSpace(name)) != headerContentLength {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		length = n
		hasLength = true
	}
}

// parseBody decodes a complete body as an object when it starts with '{',
// otherwise as an array.
func parseBody(text string) (*Value, error) {
	trimmed := strings.TrimSpace(text)
	first := byte(0)
	if len(trimmed) > 0 {
		first = trimmed[0]
	}

	v, ok := tryParse(trimmed, first)
	if !ok {
		return nil, wirerrs.NewProtocolError(
			wirerrs.ErrCodeMessageParseFailed,
			"body is not valid JSON",
			nil,
		)
	}

	return v, nil
}

// tryParse attempts a complete parse of text as an object or array.
func tryParse(text string, first byte) (*Value, bool) {
	switch first {
	case '{':
		obj := make(map[string]any)
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil, false
		}

		return &Value{Object: obj}, true
	default:
		var arr []any
		if err := json.Unmarshal([]byte(text), &arr); err != nil {
			return nil, false
		}
		if arr == nil {
			arr = []any{}
		}

		return &Value{Array: arr}, true
	}
}
