package genwire

import "github.com/rs/zerolog"

// Option configures a Conn at construction time.
type Option func(*Conn)

// WithLogger attaches a structured logger. The connection adds its own
// conn id field. The default logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Conn) {
		c.log = log
	}
}

// WithTrace installs a callback invoked with human-readable diagnostic
// lines, the channel's only error surface besides the logger.
func WithTrace(fn func(string)) Option {
	return func(c *Conn) {
		c.trace = fn
	}
}

// WithMaxBufferSize bounds bare-mode accumulation. Zero or negative keeps
// the default.
func WithMaxBufferSize(n int) Option {
	return func(c *Conn) {
		c.maxBuffer = n
	}
}
