// Package host spawns a code-generation plugin process and wires its
// standard streams into a genwire connection. The channel core only
// consumes the two byte streams; this package supplies them.
package host

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/codegenlab/genwire/pkg/genwire"
)

// Plugin is a running plugin process with a live channel to it.
type Plugin struct {
	// Conn is the channel over the plugin's stdin/stdout.
	Conn *genwire.Conn

	cmd      *exec.Cmd
	log      zerolog.Logger
	group    *errgroup.Group
	mu       sync.Mutex
	closed   bool
	closeErr error
}

// Options configures how the plugin process is spawned.
type Options struct {
	// Env entries are appended to the inherited environment.
	Env map[string]string
	// Logger receives host diagnostics and the plugin's stderr lines.
	Logger zerolog.Logger
	// ConnOptions are passed through to the channel.
	ConnOptions []genwire.Option
}

// Spawn starts the plugin process and returns the connected channel. The
// context governs the process lifetime: cancelling it kills the plugin.
func Spawn(ctx context.Context, command string, args []string, opts Options) (*Plugin, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if len(opts.Env) > 0 {
		cmd.Env = append(cmd.Environ(), envSlice(opts.Env)...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open plugin stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open plugin stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("open plugin stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start plugin %q: %w", command, err)
	}

	log := opts.Logger.With().Str("plugin", command).Logger()

	p := &Plugin{
		cmd:   cmd,
		log:   log,
		group: &errgroup.Group{},
	}

	connOpts := append([]genwire.Option{genwire.WithLogger(log)}, opts.ConnOptions...)
	p.Conn = genwire.New(stdout, stdin, connOpts...)

	// Surface the plugin's stderr through the host logger so plugin
	// diagnostics are not lost.
	p.group.Go(func() error {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Debug().Str("stream", "stderr").Msg(scanner.Text())
		}

		return scanner.Err()
	})

	return p, nil
}

// Close shuts down the channel, reaps the plugin process, and aggregates
// any teardown errors. It is safe to call more than once.
func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.closeErr
	}
	p.closed = true

	var errs *multierror.Error

	// Closing the channel closes the plugin's stdin, which signals a
	// well-behaved plugin to exit.
	if err := p.Conn.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := p.group.Wait(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := p.cmd.Wait(); err != nil {
		errs = multierror.Append(errs, err)
	}

	p.closeErr = errs.ErrorOrNil()

	return p.closeErr
}

// envSlice converts env entries to KEY=VALUE form.
func envSlice(m map[string]string) []string {
	result := make([]string, 0, len(m))
	for k, v := range m {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}

	return result
}
