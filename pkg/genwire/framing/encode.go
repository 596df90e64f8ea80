package framing

import (
	"encoding/json"
	"fmt"

	"github.com/codegenlab/genwire/pkg/wirerrs"
)

// EncodeFrame serializes an outbound value in the canonical send format:
// a Content-Length header, a blank line, and exactly that many UTF-8 body
// bytes. Receive-side bare mode is never used for sends.
func EncodeFrame(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, wirerrs.NewProtocolError(
			wirerrs.ErrCodeMessageParseFailed,
			"marshal outbound message",
			err,
		)
	}

	frame := make([]byte, 0, len(body)+32)
	frame = append(frame, fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))...)
	frame = append(frame, body...)

	return frame, nil
}
