// Command genwire is a demonstration host and plugin for the genwire
// message channel. The plugin subcommand serves a few methods over
// stdin/stdout; the call subcommand spawns a plugin and invokes one.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "genwire",
		Short:        "JSON-RPC message channel demo",
		SilenceUsage: true,
	}

	root.AddCommand(newPluginCmd())
	root.AddCommand(newCallCmd())

	return root
}
