package models

import (
	"context"
)

// Provider defines the interface for LLM backends.
type Provider interface {
	// GenerateStream streams a completion over the request history with the
	// given tool surface attached. Each fragment is delivered to emit in
	// arrival order; a non-nil error from emit aborts the stream.
	// GenerateStream returns an error only when the generation call itself
	// fails; tool execution is the caller's concern.
	GenerateStream(ctx context.Context, req *GenerateRequest, emit func(Chunk) error) error
}
