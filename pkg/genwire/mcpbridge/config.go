// Package mcpbridge exposes MCP tool servers over a genwire channel. A
// plugin can register a bridge on its connection so the host reaches MCP
// tools through ordinary channel methods.
package mcpbridge

import mcpserver "github.com/mark3labs/mcp-go/server"

// ServerConfig is the interface for all MCP server configurations.
// External servers run out of process (stdio subprocess or HTTP endpoint);
// in-process servers are direct instances.
type ServerConfig interface {
	serverConfig()
	// GetName returns the server identifier for routing.
	GetName() string
}

// StdioServerConfig configures an external MCP server via subprocess.
// The server communicates over stdin/stdout using the stdio transport.
type StdioServerConfig struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string
}

func (*StdioServerConfig) serverConfig() {}

// GetName returns the server identifier.
func (c *StdioServerConfig) GetName() string { return c.Name }

// HTTPServerConfig configures an external MCP server reached over HTTP
// using the streamable transport.
type HTTPServerConfig struct {
	Name string
	URL  string
}

func (*HTTPServerConfig) serverConfig() {}

// GetName returns the server identifier.
func (c *HTTPServerConfig) GetName() string { return c.Name }

// InProcessServerConfig configures an MCP server running in the same
// process, invoked directly without IPC.
type InProcessServerConfig struct {
	Name     string
	Instance *mcpserver.MCPServer
}

func (*InProcessServerConfig) serverConfig() {}

// GetName returns the server identifier.
func (c *InProcessServerConfig) GetName() string { return c.Name }
