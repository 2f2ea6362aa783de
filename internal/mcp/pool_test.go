package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEchoServer builds an in-memory provider with an echo tool, a failing
// tool and a single text resource.
func newEchoServer(t *testing.T) *mcpsdk.Server {
	t.Helper()

	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "echo-server", Version: "test"}, nil)
	server.AddTool(&mcpsdk.Tool{
		Name:        "echo",
		Description: "echo text back",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
	}, func(_ context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args map[string]any
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return nil, err
		}
		text, _ := args["text"].(string)
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
		}, nil
	})
	server.AddTool(&mcpsdk.Tool{
		Name:        "fail",
		Description: "always fails",
		InputSchema: map[string]any{"type": "object"},
	}, func(context.Context, *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return &mcpsdk.CallToolResult{
			IsError: true,
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "bad input"}},
		}, nil
	})
	server.AddResource(&mcpsdk.Resource{
		URI:         "file:///notes.txt",
		Name:        "notes",
		Description: "scratch notes",
		MIMEType:    "text/plain",
	}, func(_ context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
		return &mcpsdk.ReadResourceResult{
			Contents: []*mcpsdk.ResourceContents{
				{URI: req.Params.URI, MIMEType: "text/plain", Text: "note contents"},
			},
		}, nil
	})
	return server
}

// dialerFor returns a DialFunc that connects in-memory sessions to the
// server registered under the config id, counting dials.
func dialerFor(t *testing.T, servers map[string]*mcpsdk.Server, dials *atomic.Int32) DialFunc {
	t.Helper()

	return func(ctx context.Context, cfg ProviderConfig) (*mcpsdk.ClientSession, error) {
		if dials != nil {
			dials.Add(1)
		}
		server, ok := servers[cfg.ID]
		if !ok {
			return nil, fmt.Errorf("no server for %q", cfg.ID)
		}

		clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

		serverCtx, serverCancel := context.WithCancel(context.Background())
		serverSession, err := server.Connect(serverCtx, serverTransport, nil)
		if err != nil {
			serverCancel()
			return nil, err
		}
		t.Cleanup(func() {
			_ = serverSession.Close()
			serverCancel()
		})

		client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: clientName, Version: clientVersion}, nil)
		return client.Connect(ctx, clientTransport, nil)
	}
}

func validConfig(id string) ProviderConfig {
	return ProviderConfig{
		ID:        id,
		Name:      id,
		Transport: TransportConfig{Command: "unused"},
	}
}

func TestPool_GetCachesByID(t *testing.T) {
	var dials atomic.Int32
	pool := NewPoolWithDialer(dialerFor(t, map[string]*mcpsdk.Server{"echo": newEchoServer(t)}, &dials))
	defer pool.Close()

	first, err := pool.Get(context.Background(), validConfig("echo"))
	require.NoError(t, err)
	second, err := pool.Get(context.Background(), validConfig("echo"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), dials.Load())
}

func TestPool_GetRejectsInvalidConfig(t *testing.T) {
	var dials atomic.Int32
	pool := NewPoolWithDialer(dialerFor(t, nil, &dials))
	defer pool.Close()

	_, err := pool.Get(context.Background(), ProviderConfig{})

	require.Error(t, err)
	assert.Equal(t, int32(0), dials.Load())
}

func TestPool_GetPropagatesDialFailure(t *testing.T) {
	dialErr := errors.New("spawn failed")
	pool := NewPoolWithDialer(func(context.Context, ProviderConfig) (*mcpsdk.ClientSession, error) {
		return nil, dialErr
	})
	defer pool.Close()

	_, err := pool.Get(context.Background(), validConfig("echo"))

	require.Error(t, err)
	assert.ErrorIs(t, err, dialErr)
}

func TestPool_CloseAllowsRedial(t *testing.T) {
	var dials atomic.Int32
	pool := NewPoolWithDialer(dialerFor(t, map[string]*mcpsdk.Server{"echo": newEchoServer(t)}, &dials))

	_, err := pool.Get(context.Background(), validConfig("echo"))
	require.NoError(t, err)
	require.NoError(t, pool.Close())

	_, err = pool.Get(context.Background(), validConfig("echo"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), dials.Load())
	require.NoError(t, pool.Close())
}

func TestConnection_ListTools(t *testing.T) {
	pool := NewPoolWithDialer(dialerFor(t, map[string]*mcpsdk.Server{"echo": newEchoServer(t)}, nil))
	defer pool.Close()

	conn, err := pool.Get(context.Background(), validConfig("echo"))
	require.NoError(t, err)

	tools, err := conn.ListTools(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(tools))
	for _, tl := range tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, []string{"echo", "fail"}, names)
}

func TestConnection_CallReturnsFirstText(t *testing.T) {
	pool := NewPoolWithDialer(dialerFor(t, map[string]*mcpsdk.Server{"echo": newEchoServer(t)}, nil))
	defer pool.Close()

	conn, err := pool.Get(context.Background(), validConfig("echo"))
	require.NoError(t, err)

	out, err := conn.Call(context.Background(), "echo", map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestConnection_CallErrorResultBecomesError(t *testing.T) {
	pool := NewPoolWithDialer(dialerFor(t, map[string]*mcpsdk.Server{"echo": newEchoServer(t)}, nil))
	defer pool.Close()

	conn, err := pool.Get(context.Background(), validConfig("echo"))
	require.NoError(t, err)

	_, err = conn.Call(context.Background(), "fail", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad input")
}

func TestConnection_ReadResource(t *testing.T) {
	pool := NewPoolWithDialer(dialerFor(t, map[string]*mcpsdk.Server{"echo": newEchoServer(t)}, nil))
	defer pool.Close()

	conn, err := pool.Get(context.Background(), validConfig("echo"))
	require.NoError(t, err)

	content, err := conn.ReadResource(context.Background(), "file:///notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "note contents", content)
}
