package gemini

import (
	"fmt"

	"github.com/driftlock/agentloop/internal/agent/models"
	provider "github.com/driftlock/agentloop/internal/provider/models"
	"github.com/driftlock/agentloop/internal/tool"
	"google.golang.org/genai"
)

// toGeminiContents converts conversation history to Gemini Content format.
func toGeminiContents(history []models.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		content := messageToGeminiContent(msg)
		if content != nil {
			contents = append(contents, content)
		}
	}
	return contents
}

// messageToGeminiContent converts a single message to Gemini Content format.
func messageToGeminiContent(msg models.Message) *genai.Content {
	role := genai.RoleUser
	if msg.Role == "model" {
		role = genai.RoleModel
	}

	parts := make([]*genai.Part, 0)

	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	// Tool calls appear on model messages
	for _, toolCall := range msg.ToolCalls {
		part := genai.NewPartFromFunctionCall(toolCall.Name, toolCall.Args)
		if toolCall.ID != "" {
			part.FunctionCall.ID = toolCall.ID
		}
		parts = append(parts, part)
	}

	// Tool results appear on function messages
	for _, result := range msg.ToolResults {
		content := result.Content
		if result.IsError {
			content = fmt.Sprintf("Error: %s", result.Content)
		}
		part := genai.NewPartFromFunctionResponse(result.Name, map[string]any{
			"content": content,
		})
		if result.ID != "" {
			part.FunctionResponse.ID = result.ID
		}
		parts = append(parts, part)
	}

	// Skip empty messages
	if len(parts) == 0 {
		return nil
	}

	return genai.NewContentFromParts(parts, genai.Role(role))
}

// toGeminiConfig converts internal GenerateConfig to Gemini config.
// Thought parts are always requested so the engine can surface reasoning
// fragments as progress.
func toGeminiConfig(config *provider.GenerateConfig) *genai.GenerateContentConfig {
	geminiConfig := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	}

	if config == nil {
		return geminiConfig
	}

	if config.Temperature != nil {
		geminiConfig.Temperature = config.Temperature
	}
	if config.TopP != nil {
		geminiConfig.TopP = config.TopP
	}
	if config.MaxOutputTokens > 0 {
		geminiConfig.MaxOutputTokens = config.MaxOutputTokens
	}

	return geminiConfig
}

// defaultSafetySettings returns safety settings with blocking disabled for
// all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// toGeminiTools converts tool declarations to Gemini tools. When searchStore
// is set, a managed retrieval tool is attached alongside the declared
// functions; it needs no schema translation.
func toGeminiTools(decls []tool.Declaration, searchStore string) []*genai.Tool {
	var tools []*genai.Tool

	if len(decls) > 0 {
		functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
		for _, decl := range decls {
			fd := &genai.FunctionDeclaration{
				Name:        decl.Name,
				Description: decl.Description,
			}
			if decl.Parameters != nil {
				fd.Parameters = toGeminiSchema(decl.Parameters)
			}
			functionDeclarations = append(functionDeclarations, fd)
		}
		tools = append(tools, &genai.Tool{FunctionDeclarations: functionDeclarations})
	}

	if searchStore != "" {
		tools = append(tools, &genai.Tool{
			Retrieval: &genai.Retrieval{
				VertexRAGStore: &genai.VertexRAGStore{
					RAGResources: []*genai.VertexRAGStoreRAGResource{
						{RAGCorpus: searchStore},
					},
				},
			},
		})
	}

	return tools
}

// toGeminiSchema converts a tool parameter schema to a Gemini Schema.
// Nested object properties are intentionally not recursed: providers
// declare flat parameter lists and deeper nesting degrades to OBJECT.
func toGeminiSchema(params *tool.Schema) *genai.Schema {
	schema := &genai.Schema{
		Type: genai.TypeObject,
	}

	if params.Properties != nil {
		schema.Properties = make(map[string]*genai.Schema)
		for name, prop := range params.Properties {
			converted := &genai.Schema{
				Type:        toGeminiType(prop.Type),
				Description: prop.Description,
			}

			if len(prop.Enum) > 0 {
				converted.Enum = prop.Enum
			}

			if converted.Type == genai.TypeArray {
				itemType := tool.Type("")
				if prop.Items != nil {
					itemType = prop.Items.Type
				}
				converted.Items = &genai.Schema{Type: toGeminiType(itemType)}
			}

			schema.Properties[name] = converted
		}
	}

	schema.Required = params.Required

	return schema
}

// toGeminiType converts a declared type to a Gemini Type.
// Unknown or missing types fall back to string.
func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber, tool.TypeInteger:
		return genai.TypeNumber
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 401, 403:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeAuth,
				Message:    "authentication failed",
				Underlying: err,
				Retryable:  false,
			}
		case 429:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeRateLimit,
				Message:    "rate limit exceeded",
				Underlying: err,
				Retryable:  true,
			}
		case 400:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeInvalidRequest,
				Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
				Underlying: err,
				Retryable:  false,
			}
		case 500, 502, 503, 504:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeUnavailable,
				Message:    "service unavailable",
				Underlying: err,
				Retryable:  true,
			}
		default:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeNetwork,
				Message:    fmt.Sprintf("API error: %s", apiErr.Message),
				Underlying: err,
				Retryable:  true,
			}
		}
	}

	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
