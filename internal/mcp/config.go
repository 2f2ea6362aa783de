package mcp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// TransportConfig describes how to launch a provider process.
type TransportConfig struct {
	Command string            `json:"command" mapstructure:"command"`
	Args    []string          `json:"args,omitempty" mapstructure:"args"`
	Env     map[string]string `json:"env,omitempty" mapstructure:"env"`
}

// ProviderConfig identifies one tool provider and its transport.
type ProviderConfig struct {
	ID        string          `json:"id" mapstructure:"id"`
	Name      string          `json:"name" mapstructure:"name"`
	Transport TransportConfig `json:"transport" mapstructure:"transport"`
}

// Validate reports whether the config can produce a connection.
func (c ProviderConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("provider config missing id")
	}
	if strings.TrimSpace(c.Transport.Command) == "" {
		return fmt.Errorf("provider %q: transport missing launch command", c.ID)
	}
	return nil
}

// ParseProviderConfigs decodes raw provider entries. Malformed entries are
// skipped with a warning, never fatal: that provider's tools are simply
// absent for the run.
func ParseProviderConfigs(raw []map[string]any) []ProviderConfig {
	configs := make([]ProviderConfig, 0, len(raw))
	for i, entry := range raw {
		var cfg ProviderConfig
		if err := mapstructure.Decode(entry, &cfg); err != nil {
			slog.Warn("skipping malformed provider config", "index", i, "error", err)
			continue
		}
		if err := cfg.Validate(); err != nil {
			slog.Warn("skipping malformed provider config", "index", i, "error", err)
			continue
		}
		configs = append(configs, cfg)
	}
	return configs
}
