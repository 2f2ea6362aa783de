package models

import (
	"github.com/driftlock/agentloop/internal/agent/models"
	"github.com/driftlock/agentloop/internal/tool"
)

// GenerateRequest encapsulates all parameters for a streaming generation call.
type GenerateRequest struct {
	// History contains the full conversation so far, including the
	// synthetic directive turns.
	History []models.Message

	// Tools contains function declarations for native tool calling.
	Tools []tool.Declaration

	// SearchStore, when set, names a managed retrieval corpus attached as
	// a native model tool without schema translation.
	SearchStore string

	// Config contains optional generation parameters.
	Config *GenerateConfig
}

// GenerateConfig contains optional generation parameters.
// Pointer fields distinguish "not set" from zero values.
type GenerateConfig struct {
	Temperature     *float32
	TopP            *float32
	MaxOutputTokens int32
}

// Chunk is one fragment of a streamed completion. The closed set of
// implementations is ThoughtChunk, TextChunk and CallChunk; consumers
// classify by type switch.
type Chunk interface {
	isChunk()
}

// ThoughtChunk is model-emitted internal reasoning, distinct from the
// user-facing answer.
type ThoughtChunk struct {
	Text string
}

func (ThoughtChunk) isChunk() {}

// TextChunk is user-facing answer text.
type TextChunk struct {
	Text string
}

func (TextChunk) isChunk() {}

// CallChunk is a structured tool invocation requested by the model.
type CallChunk struct {
	Call models.ToolCall
}

func (CallChunk) isChunk() {}
