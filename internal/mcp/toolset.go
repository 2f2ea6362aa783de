package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/driftlock/agentloop/internal/tool"
)

// Built-in virtual tools layered on top of the connected providers.
const (
	ListResourcesTool = "list_resources"
	ReadResourceTool  = "read_resource"
)

// Toolset is the tool surface assembled from a set of provider configs:
// every connected provider's tools plus the built-in resource tools.
type Toolset struct {
	conns []*Connection
	bound map[string]*boundTool
	decls []tool.Declaration
}

type boundTool struct {
	conn       *Connection
	remoteName string
}

// BuildToolset connects every provider config through the pool and lists
// its tools. Providers that fail to connect or list are skipped with a
// warning; their tools are simply absent for this run. When at least one
// provider is connected, the built-in resource tools are added.
func BuildToolset(ctx context.Context, pool *Pool, configs []ProviderConfig) *Toolset {
	ts := &Toolset{
		bound: make(map[string]*boundTool),
	}

	for _, cfg := range configs {
		conn, err := pool.Get(ctx, cfg)
		if err != nil {
			slog.Warn("tool provider unavailable", "provider", cfg.ID, "error", err)
			continue
		}

		tools, err := conn.ListTools(ctx)
		if err != nil {
			slog.Warn("listing tools failed", "provider", cfg.ID, "error", err)
			continue
		}

		ts.conns = append(ts.conns, conn)
		for _, t := range tools {
			if _, exists := ts.bound[t.Name]; exists {
				slog.Warn("duplicate tool name, keeping first", "tool", t.Name, "provider", cfg.ID)
				continue
			}
			ts.bound[t.Name] = &boundTool{conn: conn, remoteName: t.Name}
			ts.decls = append(ts.decls, tool.Declaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  decodeSchema(t.InputSchema),
			})
		}
	}

	if len(ts.conns) > 0 {
		ts.decls = append(ts.decls, builtinDeclarations()...)
	}

	sort.Slice(ts.decls, func(i, j int) bool {
		return ts.decls[i].Name < ts.decls[j].Name
	})

	return ts
}

// Declarations returns all tool schemas for the LLM.
func (ts *Toolset) Declarations() []tool.Declaration {
	return ts.decls
}

// Call executes a tool by name, dispatching built-ins locally and everything
// else to the owning provider connection.
func (ts *Toolset) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case ListResourcesTool:
		if len(ts.conns) > 0 {
			return ts.listAllResources(ctx)
		}
	case ReadResourceTool:
		if len(ts.conns) > 0 {
			return ts.readResource(ctx, args)
		}
	}

	bt, ok := ts.bound[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return bt.conn.Call(ctx, bt.remoteName, args)
}

// listAllResources fans out to every connected provider. Providers that fail
// contribute nothing; the aggregate never fails outright.
func (ts *Toolset) listAllResources(ctx context.Context) (string, error) {
	type resourceEntry struct {
		Provider    string `json:"provider"`
		Name        string `json:"name,omitempty"`
		URI         string `json:"uri"`
		Description string `json:"description,omitempty"`
		MIMEType    string `json:"mime_type,omitempty"`
	}

	entries := make([]resourceEntry, 0)
	for _, conn := range ts.conns {
		resources, err := conn.ListResources(ctx)
		if err != nil {
			slog.Warn("listing resources failed", "provider", conn.ID, "error", err)
			continue
		}
		for _, r := range resources {
			if r == nil {
				continue
			}
			entries = append(entries, resourceEntry{
				Provider:    conn.ID,
				Name:        r.Name,
				URI:         r.URI,
				Description: r.Description,
				MIMEType:    r.MIMEType,
			})
		}
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// readResource tries each connected provider in turn; the first success
// wins.
func (ts *Toolset) readResource(ctx context.Context, args map[string]any) (string, error) {
	uri, _ := args["uri"].(string)
	if uri == "" {
		return "", fmt.Errorf("read_resource requires a uri argument")
	}

	for _, conn := range ts.conns {
		content, err := conn.ReadResource(ctx, uri)
		if err == nil {
			return content, nil
		}
	}
	return "", fmt.Errorf("resource not found: %s", uri)
}

func builtinDeclarations() []tool.Declaration {
	return []tool.Declaration{
		{
			Name:        ListResourcesTool,
			Description: "List all resources available from every connected tool provider.",
			Parameters:  &tool.Schema{Type: tool.TypeObject},
		},
		{
			Name:        ReadResourceTool,
			Description: "Read a resource by its URI from whichever provider holds it.",
			Parameters: &tool.Schema{
				Type: tool.TypeObject,
				Properties: map[string]*tool.Schema{
					"uri": {
						Type:        tool.TypeString,
						Description: "URI of the resource to read",
					},
				},
				Required: []string{"uri"},
			},
		},
	}
}

// decodeSchema converts a provider-declared input schema into the tagged
// schema vocabulary by round-tripping through JSON. Schemas that cannot be
// decoded degrade to an empty object schema.
func decodeSchema(raw any) *tool.Schema {
	fallback := &tool.Schema{Type: tool.TypeObject}
	if raw == nil {
		return fallback
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fallback
	}

	var schema tool.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return fallback
	}
	if schema.Type == "" {
		schema.Type = tool.TypeObject
	}
	return &schema
}
