package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync/atomic"

	mcpserver "github.com/mark3labs/mcp-go/server"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server is one MCP server reachable through the bridge.
type Server interface {
	// Name returns the identifier used for routing.
	Name() string
	// CallTool invokes a named tool with keyed arguments.
	CallTool(ctx context.Context, tool string, args map[string]any) (any, error)
	// ListTools enumerates the server's tools.
	ListTools(ctx context.Context) (any, error)
	// Close releases the server connection.
	Close() error
}

// MessageHandler is the optional raw surface a server may expose: a whole
// JSON-RPC message in, a whole JSON-RPC response out. In-process servers
// implement it; remote sessions do not.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) ([]byte, error)
}

// Dial connects a configured server. In-process instances are wrapped
// directly; external configurations are dialed with the MCP client.
func Dial(ctx context.Context, cfg ServerConfig) (Server, error) {
	var transport mcpsdk.Transport

	switch cfg := cfg.(type) {
	case *InProcessServerConfig:
		return &inProcessServer{name: cfg.Name, srv: cfg.Instance}, nil

	case *StdioServerConfig:
		cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
		if len(cfg.Env) > 0 {
			env := cmd.Environ()
			for k, v := range cfg.Env {
				env = append(env, fmt.Sprintf("%s=%s", k, v))
			}
			cmd.Env = env
		}
		transport = &mcpsdk.CommandTransport{Command: cmd}

	case *HTTPServerConfig:
		transport = &mcpsdk.StreamableClientTransport{Endpoint: cfg.URL}

	default:
		return nil, fmt.Errorf("unknown MCP server config type: %T", cfg)
	}

	client := mcpsdk.NewClient(
		&mcpsdk.Implementation{
			Name:    "genwire",
			Version: "0.1.0",
		},
		nil,
	)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to MCP server %q: %w", cfg.GetName(), err)
	}

	return &clientSession{name: cfg.GetName(), session: session}, nil
}

// clientSession adapts an MCP client session to the Server interface.
type clientSession struct {
	name    string
	session *mcpsdk.ClientSession
}

func (s *clientSession) Name() string { return s.name }

func (s *clientSession) CallTool(ctx context.Context, tool string, args map[string]any) (any, error) {
	res, err := s.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("call tool %q on %q: %w", tool, s.name, err)
	}

	return res, nil
}

func (s *clientSession) ListTools(ctx context.Context) (any, error) {
	res, err := s.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools on %q: %w", s.name, err)
	}

	return res, nil
}

func (s *clientSession) Close() error {
	return s.session.Close()
}

// inProcessServer adapts an in-process MCP server instance. Tool calls are
// expressed as raw JSON-RPC messages against the server's message surface.
type inProcessServer struct {
	name string
	srv  *mcpserver.MCPServer
	seq  atomic.Int64
}

var _ MessageHandler = (*inProcessServer)(nil)

func (s *inProcessServer) Name() string { return s.name }

// HandleMessage proxies one raw JSON-RPC message to the server instance.
func (s *inProcessServer) HandleMessage(ctx context.Context, message []byte) ([]byte, error) {
	resp := s.srv.HandleMessage(ctx, json.RawMessage(message))
	if resp == nil {
		return nil, nil
	}

	return json.Marshal(resp)
}

func (s *inProcessServer) CallTool(ctx context.Context, tool string, args map[string]any) (any, error) {
	return s.roundTrip(ctx, "tools/call", map[string]any{
		"name":      tool,
		"arguments": args,
	})
}

func (s *inProcessServer) ListTools(ctx context.Context) (any, error) {
	return s.roundTrip(ctx, "tools/list", map[string]any{})
}

func (*inProcessServer) Close() error { return nil }

// roundTrip performs one request/response exchange against the in-process
// message surface and unwraps the result.
func (s *inProcessServer) roundTrip(ctx context.Context, method string, params map[string]any) (any, error) {
	req, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      s.seq.Add(1),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.HandleMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("server %q returned no response for %q", s.name, method)
	}

	var resp struct {
		Result any `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response from %q: %w", s.name, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("server %q: %s (code %d)", s.name, resp.Error.Message, resp.Error.Code)
	}

	return resp.Result, nil
}
