package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/codegenlab/genwire/pkg/genwire"
	"github.com/codegenlab/genwire/pkg/genwire/dispatch"
)

// Channel method names the bridge registers.
const (
	MethodToolsCall = "mcp.tools.call"
	MethodToolsList = "mcp.tools.list"
	MethodMessage   = "mcp.message"
)

// Bridge routes channel calls to a set of named MCP servers.
type Bridge struct {
	mu      sync.RWMutex
	servers map[string]Server
	log     zerolog.Logger
}

// New creates an empty bridge.
func New(log zerolog.Logger) *Bridge {
	return &Bridge{
		servers: make(map[string]Server),
		log:     log.With().Str("component", "mcpbridge").Logger(),
	}
}

// Add dials a configured server and makes it reachable through the bridge.
func (b *Bridge) Add(ctx context.Context, cfg ServerConfig) error {
	server, err := Dial(ctx, cfg)
	if err != nil {
		return err
	}

	return b.AddServer(server)
}

// AddServer registers an already-connected server.
func (b *Bridge) AddServer(s Server) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.servers[s.Name()]; exists {
		return fmt.Errorf("MCP server %q already registered", s.Name())
	}
	b.servers[s.Name()] = s

	return nil
}

// Attach registers the bridge's methods on a connection. Each method takes
// a single params object naming the target server.
func (b *Bridge) Attach(conn *genwire.Conn) error {
	if err := conn.Register(MethodToolsCall, dispatch.Unary(b.handleToolsCall)); err != nil {
		return err
	}
	if err := conn.Register(MethodToolsList, dispatch.Unary(b.handleToolsList)); err != nil {
		return err
	}

	return conn.Register(MethodMessage, dispatch.Unary(b.handleMessage))
}

// Close releases every registered server.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs *multierror.Error
	for name, s := range b.servers {
		if err := s.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close %q: %w", name, err))
		}
		delete(b.servers, name)
	}

	return errs.ErrorOrNil()
}

func (b *Bridge) lookup(arg any) (Server, map[string]any, error) {
	params, ok := arg.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("params must be an object, got %T", arg)
	}
	name, _ := params["server"].(string)
	if name == "" {
		return nil, nil, fmt.Errorf("params missing server name")
	}

	b.mu.RLock()
	server, ok := b.servers[name]
	b.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("no MCP server named %q", name)
	}

	return server, params, nil
}

// handleToolsCall serves mcp.tools.call: {server, tool, arguments}.
func (b *Bridge) handleToolsCall(ctx context.Context, arg any) (any, error) {
	server, params, err := b.lookup(arg)
	if err != nil {
		return nil, err
	}

	tool, _ := params["tool"].(string)
	if tool == "" {
		return nil, fmt.Errorf("params missing tool name")
	}
	args, _ := params["arguments"].(map[string]any)

	b.log.Debug().Str("server", server.Name()).Str("tool", tool).Msg("tool call")

	return server.CallTool(ctx, tool, args)
}

// handleToolsList serves mcp.tools.list: {server}.
func (b *Bridge) handleToolsList(ctx context.Context, arg any) (any, error) {
	server, _, err := b.lookup(arg)
	if err != nil {
		return nil, err
	}

	return server.ListTools(ctx)
}

// handleMessage serves mcp.message: {server, message}, proxying one raw
// JSON-RPC message to servers that expose the raw surface.
func (b *Bridge) handleMessage(ctx context.Context, arg any) (any, error) {
	server, params, err := b.lookup(arg)
	if err != nil {
		return nil, err
	}

	handler, ok := server.(MessageHandler)
	if !ok {
		return nil, fmt.Errorf("MCP server %q does not accept raw messages", server.Name())
	}

	raw, err := json.Marshal(params["message"])
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	resp, err := handler.HandleMessage(ctx, raw)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(resp, &decoded); err != nil {
		return nil, fmt.Errorf("decode server response: %w", err)
	}

	return decoded, nil
}
