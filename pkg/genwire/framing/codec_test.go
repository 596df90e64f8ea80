package framing

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codegenlab/genwire/pkg/wirerrs"
)

func newTestCodec(input string, maxBuffer int) *Codec {
	return NewCodec(NewReader(strings.NewReader(input)), maxBuffer)
}

// TestCodec_ReadValue_Bare covers bare-mode accumulation: a value's own
// balanced delimiters mark its end, across however many lines it spans.
func TestCodec_ReadValue_Bare(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Value
	}{
		{
			name:  "single-line object",
			input: `{"method":"echo","params":["hi"]}` + "\n",
			want: &Value{Object: map[string]any{
				"method": "echo",
				"params": []any{"hi"},
			}},
		},
		{
			name:  "object split across lines",
			input: "{\"method\":\"echo\",\n\"params\":[1,\n2]}\n",
			want: &Value{Object: map[string]any{
				"method": "echo",
				"params": []any{float64(1), float64(2)},
			}},
		},
		{
			name:  "array message",
			input: "[{\"method\":\"a\"},{\"method\":\"b\"}]\n",
			want: &Value{Array: []any{
				map[string]any{"method": "a"},
				map[string]any{"method": "b"},
			}},
		},
		{
			name:  "leading whitespace is skipped",
			input: "  \r\n\t{\"ok\":true}\n",
			want:  &Value{Object: map[string]any{"ok": true}},
		},
		{
			name: "closer inside a string does not end accumulation",
			// The first line ends with '}' inside a string literal, so the
			// parse fails and accumulation continues across the line break.
			input: "{\"text\":\"brace }\n\",\"n\":1}\n",
			want: &Value{Object: map[string]any{
				"text": "brace }",
				"n":    float64(1),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCodec(tt.input, 0)

			got, err := c.ReadValue()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestCodec_ReadValue_HeaderFramed covers Content-Length extraction and the
// no-usable-header fallback.
func TestCodec_ReadValue_HeaderFramed(t *testing.T) {
	t.Run("content-length body", func(t *testing.T) {
		body := `{"id":"1","result":42}`
		input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
		c := newTestCodec(input, 0)

		got, err := c.ReadValue()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := &Value{Object: map[string]any{"id": "1", "result": float64(42)}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("value mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("header name is case-insensitive", func(t *testing.T) {
		body := `{"ok":true}`
		input := fmt.Sprintf("content-length: %d\r\n\r\n%s", len(body), body)
		c := newTestCodec(input, 0)

		got, err := c.ReadValue()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Object["ok"] != true {
			t.Errorf("expected ok=true, got %v", got.Object)
		}
	})

	t.Run("array body", func(t *testing.T) {
		body := `[1,2,3]`
		input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
		c := newTestCodec(input, 0)

		got, err := c.ReadValue()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.IsArray() {
			t.Fatalf("expected array value, got object %v", got.Object)
		}
		if len(got.Array) != 3 {
			t.Errorf("expected 3 elements, got %d", len(got.Array))
		}
	})

	t.Run("no content-length falls back to bare accumulation", func(t *testing.T) {
		input := "X-Ignored: yes\r\n\r\n{\"method\":\"m\",\n\"params\":[]}\n"
		c := newTestCodec(input, 0)

		got, err := c.ReadValue()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Object["method"] != "m" {
			t.Errorf("expected method m, got %v", got.Object)
		}
	})

	t.Run("unexpected byte after headers is a framing violation", func(t *testing.T) {
		input := "X-Ignored: yes\r\n\r\ngarbage"
		c := newTestCodec(input, 0)

		_, err := c.ReadValue()
		var framingErr *wirerrs.FramingError
		if !errors.As(err, &framingErr) {
			t.Fatalf("expected FramingError, got %v", err)
		}
		if framingErr.Code() != wirerrs.ErrCodeFramingViolation {
			t.Errorf("expected %s, got %s", wirerrs.ErrCodeFramingViolation, framingErr.Code())
		}
	})

	t.Run("stream closed inside body is a framing violation", func(t *testing.T) {
		input := "Content-Length: 100\r\n\r\n{\"short\":true}"
		c := newTestCodec(input, 0)

		_, err := c.ReadValue()
		var framingErr *wirerrs.FramingError
		if !errors.As(err, &framingErr) {
			t.Fatalf("expected FramingError, got %v", err)
		}
		if framingErr.Code() != wirerrs.ErrCodeTruncatedMessage {
			t.Errorf("expected %s, got %s", wirerrs.ErrCodeTruncatedMessage, framingErr.Code())
		}
	})

	t.Run("unparseable body is a protocol error, not fatal", func(t *testing.T) {
		body := `{"broken":`
		input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
		c := newTestCodec(input, 0)

		_, err := c.ReadValue()
		var protoErr *wirerrs.ProtocolError
		if !errors.As(err, &protoErr) {
			t.Fatalf("expected ProtocolError, got %v", err)
		}
	})
}

// TestCodec_ReadValue_Sequence verifies that framing mode is chosen per
// message, so mixed streams decode in order.
func TestCodec_ReadValue_Sequence(t *testing.T) {
	body := `{"second":true}`
	input := "{\"first\":true}\n" +
		fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body) +
		"\n{\"third\":true}\n"
	c := newTestCodec(input, 0)

	for i, key := range []string{"first", "second", "third"} {
		got, err := c.ReadValue()
		if err != nil {
			t.Fatalf("message %d: unexpected error: %v", i, err)
		}
		if got.Object[key] != true {
			t.Errorf("message %d: expected key %q, got %v", i, key, got.Object)
		}
	}

	if _, err := c.ReadValue(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after last message, got %v", err)
	}
}

// TestCodec_ReadValue_Overflow verifies the bare-mode accumulation bound.
func TestCodec_ReadValue_Overflow(t *testing.T) {
	// A buffer that never becomes valid JSON grows until it crosses the
	// limit and fails as a framing violation.
	input := "{\"a\":\"" + strings.Repeat("x", 100) + "\n\"}\n"
	c := newTestCodec(input, 50)

	_, err := c.ReadValue()
	var framingErr *wirerrs.FramingError
	if !errors.As(err, &framingErr) {
		t.Fatalf("expected FramingError, got %v", err)
	}
	if framingErr.Code() != wirerrs.ErrCodeBufferOverflow {
		t.Errorf("expected %s, got %s", wirerrs.ErrCodeBufferOverflow, framingErr.Code())
	}
}

// TestEncodeFrame verifies the canonical send format and that a frame round
// trips through the codec.
func TestEncodeFrame(t *testing.T) {
	t.Run("header carries exact byte count", func(t *testing.T) {
		frame, err := EncodeFrame(map[string]any{"id": "0", "result": nil})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		text := string(frame)
		if !strings.HasPrefix(text, "Content-Length: ") {
			t.Fatalf("frame missing header: %q", text)
		}
		_, body, found := strings.Cut(text, "\r\n\r\n")
		if !found {
			t.Fatalf("frame missing blank-line terminator: %q", text)
		}
		want := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
		if text != want {
			t.Errorf("expected %q, got %q", want, text)
		}
	})

	t.Run("round trips through the codec", func(t *testing.T) {
		sent := map[string]any{
			"id":     "-3",
			"method": "generate",
			"params": []any{"model.go", float64(2)},
		}
		frame, err := EncodeFrame(sent)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		c := NewCodec(NewReader(strings.NewReader(string(frame))), 0)
		got, err := c.ReadValue()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(sent, got.Object); diff != "" {
			t.Errorf("round trip mismatch (-sent +received):\n%s", diff)
		}
	})
}
