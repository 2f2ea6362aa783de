package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero
// values. Missing keys are left at their default values.
type Config struct {
	Model ModelConfig `json:"model"`
	Agent AgentConfig `json:"agent"`

	// Providers holds raw tool-provider entries. They are decoded lazily
	// so one malformed entry never fails the whole load.
	Providers []map[string]any `json:"providers"`
}

// ModelConfig selects and tunes the generation model.
type ModelConfig struct {
	Name            string   `json:"name"`              // Default: "gemini-2.0-flash"
	Temperature     *float32 `json:"temperature"`       // Default: nil (model default)
	MaxOutputTokens int32    `json:"max_output_tokens"` // Default: 8192
}

// AgentConfig tunes the iteration loop.
type AgentConfig struct {
	MaxIterations      int    `json:"max_iterations"`       // Default: 10
	ToolTimeoutSeconds int    `json:"tool_timeout_seconds"` // Default: 60
	Persona            string `json:"persona"`              // Default: ""
	SearchStore        string `json:"search_store"`         // Default: "" (retrieval disabled)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Name:            "gemini-2.0-flash",
			MaxOutputTokens: 8192,
		},
		Agent: AgentConfig{
			MaxIterations:      10,
			ToolTimeoutSeconds: 60,
		},
	}
}
