package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/codegenlab/genwire/pkg/genwire"
	"github.com/codegenlab/genwire/pkg/genwire/dispatch"
	"github.com/codegenlab/genwire/pkg/genwire/mcpbridge"
)

func newPluginCmd() *cobra.Command {
	var withMCPCalc bool

	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Serve demo methods over stdin/stdout",
		Long: `Serve a small set of demo methods over the process's standard
streams until the host closes the channel. Diagnostics go to stderr so
they never corrupt the channel.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlugin(cmd.Context(), withMCPCalc)
		},
	}

	cmd.Flags().BoolVar(&withMCPCalc, "with-mcp-calc", false,
		"expose an in-process MCP calculator through the bridge methods")

	return cmd
}

func runPlugin(ctx context.Context, withMCPCalc bool) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	conn := genwire.New(os.Stdin, os.Stdout, genwire.WithLogger(log))
	defer conn.Close()

	if err := registerDemoMethods(conn, log); err != nil {
		return err
	}

	if withMCPCalc {
		bridge := mcpbridge.New(log)
		defer bridge.Close()

		if err := bridge.Add(ctx, &mcpbridge.InProcessServerConfig{
			Name:     "calculator",
			Instance: newCalculatorServer(),
		}); err != nil {
			return err
		}
		if err := bridge.Attach(conn); err != nil {
			return err
		}
	}

	log.Info().Msg("plugin serving")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		return nil
	}
}

func registerDemoMethods(conn *genwire.Conn, log zerolog.Logger) error {
	err := conn.Register("echo", dispatch.Unary(
		func(_ context.Context, arg any) (any, error) {
			return arg, nil
		},
	))
	if err != nil {
		return err
	}

	err = conn.Register("add", dispatch.Binary(
		func(_ context.Context, first, second any) (any, error) {
			a, aok := first.(float64)
			b, bok := second.(float64)
			if !aok || !bok {
				return nil, fmt.Errorf("add expects two numbers, got %T and %T", first, second)
			}

			return a + b, nil
		},
	))
	if err != nil {
		return err
	}

	err = conn.Register("reverse", dispatch.Unary(
		func(_ context.Context, arg any) (any, error) {
			s, ok := arg.(string)
			if !ok {
				return nil, fmt.Errorf("reverse expects a string, got %T", arg)
			}
			runes := []rune(s)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}

			return string(runes), nil
		},
	))
	if err != nil {
		return err
	}

	return conn.RegisterNotification("log",
		func(_ context.Context, params any) error {
			log.Info().Interface("params", params).Msg("peer log")

			return nil
		},
	)
}

// newCalculatorServer builds the in-process MCP server the bridge exposes
// when --with-mcp-calc is set.
func newCalculatorServer() *mcpserver.MCPServer {
	srv := mcpserver.NewMCPServer("calculator", "0.1.0")

	srv.AddTool(
		mcp.NewTool("add",
			mcp.WithDescription("Add two numbers"),
			mcp.WithNumber("a", mcp.Required()),
			mcp.WithNumber("b", mcp.Required()),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			a := req.GetFloat("a", 0)
			b := req.GetFloat("b", 0)

			return mcp.NewToolResultText(fmt.Sprintf("%g", a+b)), nil
		},
	)

	return srv
}
