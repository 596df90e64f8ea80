// Package framing implements message delimiting for the genwire channel.
//
// Two receive framings are supported: bare mode, where a JSON value's own
// balanced delimiters mark its end, and header-framed mode, where
// "Name: Value" header lines (notably Content-Length) precede the body.
// All outbound traffic is header-framed.
package framing

import (
	"bufio"
	"io"
	"strings"
)

// Reader wraps the input byte stream with the three primitives the codec
// needs: a non-consuming peek, line reads, and exact-count reads.
// It is not safe for concurrent use; a single read loop owns it.
type Reader struct {
	br *bufio.Reader
}

// NewReader creates a Reader over the given stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// PeekByte returns the next byte without consuming it. It returns io.EOF
// once the peer has closed the stream, never blocking forever on a closed
// stream.
func (r *Reader) PeekByte() (byte, error) {
	b, err := r.br.Peek(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// DiscardByte consumes exactly one byte.
func (r *Reader) DiscardByte() error {
	_, err := r.br.Discard(1)

	return err
}

// ReadLine consumes through the next newline and returns the line with the
// terminator stripped. A final unterminated line before EOF is returned as
// a line; the next call reports io.EOF.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}

		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// ReadBytes reads exactly n bytes, blocking until satisfied. A stream that
// closes early yields io.ErrUnexpectedEOF.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return nil, err
	}

	return buf, nil
}
