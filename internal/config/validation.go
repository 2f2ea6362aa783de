package config

import (
	"fmt"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.Model.Name == "" {
		errs = append(errs, "model.name must not be empty")
	}
	if c.Model.Temperature != nil && (*c.Model.Temperature < 0 || *c.Model.Temperature > 2) {
		errs = append(errs, "model.temperature must be between 0 and 2")
	}
	if c.Model.MaxOutputTokens < 1 {
		errs = append(errs, "model.max_output_tokens must be >= 1")
	}

	if c.Agent.MaxIterations < 1 {
		errs = append(errs, "agent.max_iterations must be >= 1")
	}
	if c.Agent.ToolTimeoutSeconds < 0 {
		errs = append(errs, "agent.tool_timeout_seconds must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
