package models

// Message represents a single turn in the conversation history.
type Message struct {
	Role    string // "user", "model", "function"
	Content string

	// For model messages with tool calls
	ToolCalls []ToolCall

	// For function messages with tool results
	ToolResults []ToolResult
}

// ToolCall represents a structured tool invocation from the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult represents the result of a tool execution, fed back to the
// model as a function turn. Content is never empty: failures carry a
// serialized error payload so the model can adapt.
type ToolResult struct {
	ID      string // Matches ToolCall.ID
	Name    string // Tool name
	Content string // Serialized result or error payload
	IsError bool
}

// CallStatus is the terminal status of a single tool call.
type CallStatus string

const (
	CallStatusSuccess CallStatus = "success"
	CallStatusError   CallStatus = "error"
)

// ToolCallRecord is the audit record of one tool execution.
type ToolCallRecord struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Input      string     `json:"input"`  // serialized arguments
	Output     string     `json:"output"` // serialized result, non-empty even on error
	DurationMs int64      `json:"duration_ms"`
	Status     CallStatus `json:"status"`
}

// IterationStep captures one generate/execute round of the loop.
// A step either carries at least one tool call and no terminal response,
// or exactly one terminal text response and zero tool calls.
type IterationStep struct {
	Iteration int              `json:"iteration"` // 1-based
	Thought   string           `json:"thought,omitempty"`
	Response  string           `json:"response,omitempty"`
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
}

// AgenticResult is the aggregated outcome of a full loop invocation.
type AgenticResult struct {
	FinalResponse   string           `json:"final_response"`
	Steps           []IterationStep  `json:"steps"`
	TotalIterations int              `json:"total_iterations"`
	Thoughts        []string         `json:"thoughts"`
	ToolCalls       []ToolCallRecord `json:"tool_calls"`
}
