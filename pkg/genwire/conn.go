package genwire

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/codegenlab/genwire/pkg/genwire/dispatch"
	"github.com/codegenlab/genwire/pkg/genwire/framing"
	"github.com/codegenlab/genwire/pkg/genwire/pending"
)

// Conn is one bidirectional channel over an input and an output byte
// stream. It owns both streams exclusively; no other component reads or
// writes them directly.
//
// A Conn is listening from the moment it is constructed. Handlers should
// be registered before the peer starts sending traffic.
type Conn struct {
	codec *framing.Codec
	in    io.Reader
	out   io.Writer

	handlers *dispatch.Table
	pending  *pending.Table

	// writeMu admits one writer at a time so the header line and body of
	// one message are never interleaved with another's.
	writeMu sync.Mutex
	seq     atomic.Int64

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	closeOnce    sync.Once
	closeErr     error
	done         chan struct{}

	log       zerolog.Logger
	trace     func(string)
	maxBuffer int
}

// New creates a connection over the given streams and immediately spawns
// its read loop. The read loop is the sole reader of in; all sends share
// out under the connection's write lock.
func New(in io.Reader, out io.Writer, opts ...Option) *Conn {
	c := &Conn{
		in:       in,
		out:      out,
		handlers: dispatch.NewTable(),
		pending:  pending.NewTable(),
		done:     make(chan struct{}),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.log = c.log.With().Str("conn", uuid.NewString()).Logger()
	c.codec = framing.NewCodec(framing.NewReader(in), c.maxBuffer)
	c.ctx, c.cancel = context.WithCancel(context.Background())

	go c.readLoop()

	return c
}

// Register installs a handler for inbound calls of the given method.
func (c *Conn) Register(method string, h dispatch.Handler) error {
	return c.handlers.Register(method, h)
}

// RegisterNotification installs a fire-and-forget handler. The handler
// receives the params value as decoded and produces no response even when
// the peer supplied an id.
func (c *Conn) RegisterNotification(method string, fn dispatch.NotificationFunc) error {
	return c.handlers.Register(method, dispatch.Notification(fn))
}

// Done is closed once the read loop has exited, whether by peer close,
// fatal framing violation, or Close.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close marks the connection not-alive, cancels every pending outbound
// request so no caller blocks forever, and releases both streams. It is
// safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.shutdown()

		var errs *multierror.Error
		if closer, ok := c.in.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		// Guard against double-closing a combined read/write stream.
		if any(c.in) == any(c.out) {
			c.closeErr = errs.ErrorOrNil()

			return
		}
		if closer, ok := c.out.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		c.closeErr = errs.ErrorOrNil()
	})

	return c.closeErr
}

// shutdown flips liveness and cancels all pending requests. The read loop
// runs it on exit so callers never hang on a dead peer; Close runs it
// before releasing the streams.
func (c *Conn) shutdown() {
	c.shutdownOnce.Do(func() {
		c.cancel()
		c.pending.CancelAll()
	})
}

// alive reports whether the liveness flag still gates sends and reads.
func (c *Conn) alive() bool {
	return c.ctx.Err() == nil
}

// nextID allocates the next outbound request id by decrementing an integer
// counter starting at 0 (yielding "0", "-1", "-2", ...). The range is
// deliberately disjoint from the non-negative ids the remote side
// generates, avoiding collisions without coordination.
func (c *Conn) nextID() string {
	return fmt.Sprintf("%d", c.seq.Add(-1)+1)
}

// tracef emits a human-readable diagnostic line to the trace callback.
func (c *Conn) tracef(format string, args ...any) {
	if c.trace != nil {
		c.trace(fmt.Sprintf(format, args...))
	}
}
