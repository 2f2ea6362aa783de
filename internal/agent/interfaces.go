package agent

import (
	"context"

	"github.com/driftlock/agentloop/internal/tool"
)

// Toolbox is the combined tool surface attached to each generation call.
type Toolbox interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// Call executes a tool by name. Failures are returned as errors; the
	// engine captures them as failed records and feeds them back to the
	// model rather than aborting the loop.
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}
