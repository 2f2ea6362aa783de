package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	clientName    = "agentloop"
	clientVersion = "0.1.0"
)

// DialFunc establishes a client session for a provider config.
type DialFunc func(ctx context.Context, cfg ProviderConfig) (*mcpsdk.ClientSession, error)

// Pool owns the live provider connections for a service scope. Connections
// are dialed lazily on first use and cached by provider id; Close tears all
// of them down. The pool replaces the implicit module-level connection cache
// of earlier designs with an explicit open/close lifecycle.
type Pool struct {
	mu    sync.Mutex
	conns map[string]*Connection
	dial  DialFunc
}

// NewPool creates a Pool that launches providers over stdio.
func NewPool() *Pool {
	return NewPoolWithDialer(dialStdio)
}

// NewPoolWithDialer creates a Pool with a custom dialer (for tests and
// non-stdio transports).
func NewPoolWithDialer(dial DialFunc) *Pool {
	return &Pool{
		conns: make(map[string]*Connection),
		dial:  dial,
	}
}

// Get returns the cached connection for cfg.ID, dialing it on first use.
func (p *Pool) Get(ctx context.Context, cfg ProviderConfig) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.conns[cfg.ID]; ok {
		return conn, nil
	}

	session, err := p.dial(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect provider %q: %w", cfg.ID, err)
	}

	conn := &Connection{
		ID:      cfg.ID,
		Name:    cfg.Name,
		session: session,
	}
	p.conns[cfg.ID] = conn
	return conn, nil
}

// Close closes every cached connection. The pool can be reused afterwards;
// subsequent Gets dial fresh sessions.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for id, conn := range p.conns {
		if err := conn.close(); err != nil {
			errs = append(errs, fmt.Errorf("close provider %q: %w", id, err))
		}
		delete(p.conns, id)
	}
	return errors.Join(errs...)
}

// dialStdio launches the provider process and connects over stdio. The
// command runs detached from the dial context because the connection
// outlives any single request.
func dialStdio(ctx context.Context, cfg ProviderConfig) (*mcpsdk.ClientSession, error) {
	cmd := exec.Command(cfg.Transport.Command, cfg.Transport.Args...)
	cmd.Env = os.Environ()
	for key, value := range cfg.Transport.Env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}, nil)

	return client.Connect(ctx, &mcpsdk.CommandTransport{Command: cmd}, nil)
}

// Connection is one live provider session. Calls on a single connection are
// serialized by an internal mutex: the underlying transport is not assumed
// to multiplex safely.
type Connection struct {
	ID   string
	Name string

	mu      sync.Mutex
	session *mcpsdk.ClientSession
}

// ListTools returns the provider's declared tools.
func (c *Connection) ListTools(ctx context.Context) ([]*mcpsdk.Tool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var tools []*mcpsdk.Tool
	for t, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// Call invokes a tool and serializes its result: the first text content if
// any, otherwise the JSON-encoded content list. Results flagged IsError are
// returned as Go errors carrying the serialized payload.
func (c *Connection) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}

	c.mu.Lock()
	res, err := c.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	c.mu.Unlock()

	if err != nil {
		return "", err
	}
	if res == nil {
		return "", fmt.Errorf("tool %q returned nil result", name)
	}

	output := serializeContent(res.Content)
	if res.IsError {
		return "", fmt.Errorf("tool %q failed: %s", name, output)
	}
	return output, nil
}

// ListResources returns the provider's declared resources.
func (c *Connection) ListResources(ctx context.Context) ([]*mcpsdk.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.session.ListResources(ctx, &mcpsdk.ListResourcesParams{})
	if err != nil {
		return nil, err
	}
	return res.Resources, nil
}

// ReadResource reads a resource by URI and serializes its contents.
func (c *Connection) ReadResource(ctx context.Context, uri string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.session.ReadResource(ctx, &mcpsdk.ReadResourceParams{URI: uri})
	if err != nil {
		return "", err
	}

	var parts []string
	for _, content := range res.Contents {
		if content == nil {
			continue
		}
		if content.Text != "" {
			parts = append(parts, content.Text)
			continue
		}
		if encoded, err := json.Marshal(content); err == nil {
			parts = append(parts, string(encoded))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("resource %q has no readable contents", uri)
	}
	return strings.Join(parts, "\n"), nil
}

func (c *Connection) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Close()
}

// serializeContent flattens MCP content into text for the model.
func serializeContent(content []mcpsdk.Content) string {
	for _, part := range content {
		if text, ok := part.(*mcpsdk.TextContent); ok {
			return text.Text
		}
	}
	if payload, err := json.Marshal(content); err == nil {
		return string(payload)
	}
	return ""
}

