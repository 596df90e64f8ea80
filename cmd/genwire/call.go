package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/codegenlab/genwire/pkg/genwire/host"
)

func newCallCmd() *cobra.Command {
	var (
		pluginPath string
		pluginArgs []string
		timeout    time.Duration
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "call <method> [json-arg...]",
		Short: "Spawn a plugin and invoke one method",
		Long: `Spawn the plugin process, send one request over its standard
streams, print the JSON result, and shut the plugin down. Each argument
is parsed as JSON; arguments that do not parse are passed as strings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), callOptions{
				pluginPath: pluginPath,
				pluginArgs: pluginArgs,
				method:     args[0],
				rawArgs:    args[1:],
				timeout:    timeout,
				verbose:    verbose,
			})
		},
	}

	cmd.Flags().StringVar(&pluginPath, "plugin", "", "path to the plugin executable (required)")
	cmd.Flags().StringArrayVar(&pluginArgs, "plugin-arg", nil, "argument passed to the plugin, repeatable")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log host diagnostics to stderr")
	_ = cmd.MarkFlagRequired("plugin")

	return cmd
}

type callOptions struct {
	pluginPath string
	pluginArgs []string
	method     string
	rawArgs    []string
	timeout    time.Duration
	verbose    bool
}

func runCall(ctx context.Context, opts callOptions) error {
	log := zerolog.Nop()
	if opts.verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
	}

	plugin, err := host.Spawn(ctx, opts.pluginPath, opts.pluginArgs, host.Options{
		Logger: log,
	})
	if err != nil {
		return err
	}
	defer plugin.Close()

	callCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	result, err := plugin.Conn.Request(callCtx, opts.method, parseArgs(opts.rawArgs)...)
	if err != nil {
		return fmt.Errorf("call %q: %w", opts.method, err)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))

	return nil
}

// parseArgs decodes each argument as JSON, falling back to the literal
// string so callers can write `call reverse hello` without quoting.
func parseArgs(raw []string) []any {
	args := make([]any, 0, len(raw))
	for _, r := range raw {
		var v any
		if err := json.Unmarshal([]byte(r), &v); err != nil {
			v = r
		}
		args = append(args, v)
	}

	return args
}
