package gemini

import (
	"context"

	"github.com/driftlock/agentloop/internal/agent/models"
	provider "github.com/driftlock/agentloop/internal/provider/models"
	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client    GeminiClient
	modelName string
}

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName string) *GeminiProvider {
	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}
}

// GetModel returns the active model name.
func (p *GeminiProvider) GetModel() string {
	return p.modelName
}

// GenerateStream streams a completion and forwards each fragment to emit,
// classified as thought, text or function call. Part ordering within a
// response is preserved.
func (p *GeminiProvider) GenerateStream(ctx context.Context, req *provider.GenerateRequest, emit func(provider.Chunk) error) error {
	contents := toGeminiContents(req.History)
	config := toGeminiConfig(req.Config)
	config.Tools = toGeminiTools(req.Tools, req.SearchStore)

	for resp, err := range p.client.GenerateContentStream(ctx, p.modelName, contents, config) {
		if err != nil {
			return mapGeminiError(err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			if part == nil {
				continue
			}
			chunk := classifyPart(part)
			if chunk == nil {
				continue
			}
			if err := emit(chunk); err != nil {
				return err
			}
		}
	}

	return nil
}

// classifyPart maps a response part onto the chunk union. Parts that carry
// neither text nor a function call (inline data, code execution) yield nil.
func classifyPart(part *genai.Part) provider.Chunk {
	if part.FunctionCall != nil {
		return provider.CallChunk{Call: models.ToolCall{
			ID:   part.FunctionCall.ID,
			Name: part.FunctionCall.Name,
			Args: part.FunctionCall.Args,
		}}
	}
	if part.Text != "" {
		if part.Thought {
			return provider.ThoughtChunk{Text: part.Text}
		}
		return provider.TextChunk{Text: part.Text}
	}
	return nil
}
