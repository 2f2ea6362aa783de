package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderConfig_Validate(t *testing.T) {
	valid := ProviderConfig{
		ID:        "files",
		Name:      "File server",
		Transport: TransportConfig{Command: "mcp-files"},
	}
	assert.NoError(t, valid.Validate())

	missingID := valid
	missingID.ID = "  "
	assert.Error(t, missingID.Validate())

	missingCommand := valid
	missingCommand.Transport.Command = ""
	assert.Error(t, missingCommand.Validate())
}

func TestParseProviderConfigs_DecodesValidEntries(t *testing.T) {
	raw := []map[string]any{
		{
			"id":   "files",
			"name": "File server",
			"transport": map[string]any{
				"command": "mcp-files",
				"args":    []string{"--root", "/tmp"},
				"env":     map[string]string{"DEBUG": "1"},
			},
		},
	}

	configs := ParseProviderConfigs(raw)

	require.Len(t, configs, 1)
	assert.Equal(t, "files", configs[0].ID)
	assert.Equal(t, "File server", configs[0].Name)
	assert.Equal(t, "mcp-files", configs[0].Transport.Command)
	assert.Equal(t, []string{"--root", "/tmp"}, configs[0].Transport.Args)
	assert.Equal(t, "1", configs[0].Transport.Env["DEBUG"])
}

func TestParseProviderConfigs_SkipsMalformedEntries(t *testing.T) {
	raw := []map[string]any{
		{"id": "no-transport"},
		{"transport": map[string]any{"command": "mcp-files"}},
		{"id": "bad-shape", "transport": "not a map"},
		{
			"id":        "ok",
			"transport": map[string]any{"command": "mcp-ok"},
		},
	}

	configs := ParseProviderConfigs(raw)

	require.Len(t, configs, 1)
	assert.Equal(t, "ok", configs[0].ID)
}

func TestParseProviderConfigs_Empty(t *testing.T) {
	assert.Empty(t, ParseProviderConfigs(nil))
	assert.Empty(t, ParseProviderConfigs([]map[string]any{}))
}
