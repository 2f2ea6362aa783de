package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSystem implements FileSystem for testing.
type MockFileSystem struct {
	HomeDir     string
	HomeDirErr  error
	Files       map[string][]byte
	ReadFileErr error
}

func (m *MockFileSystem) UserHomeDir() (string, error) {
	return m.HomeDir, m.HomeDirErr
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

// --- HAPPY PATH TESTS ---

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	// Config file doesn't exist - should return all defaults
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{}, // Empty - no config file
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model.Name)
	assert.Equal(t, int32(8192), cfg.Model.MaxOutputTokens)
	assert.Nil(t, cfg.Model.Temperature)
	assert.Equal(t, 10, cfg.Agent.MaxIterations)
	assert.Equal(t, 60, cfg.Agent.ToolTimeoutSeconds)
	assert.Empty(t, cfg.Providers)
}

func TestLoad_FullOverride_AllValuesReplaced(t *testing.T) {
	// Config file overrides every single field
	configJSON := `{
		"model": {"name": "gemini-2.5-pro", "temperature": 0.4, "max_output_tokens": 16384},
		"agent": {"max_iterations": 25, "tool_timeout_seconds": 120, "persona": "terse", "search_store": "projects/p/ragCorpora/1"},
		"providers": [{"id": "files", "transport": {"command": "mcp-files"}}]
	}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/agentloop/config.json": []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model.Name)
	require.NotNil(t, cfg.Model.Temperature)
	assert.InDelta(t, 0.4, float64(*cfg.Model.Temperature), 1e-6)
	assert.Equal(t, int32(16384), cfg.Model.MaxOutputTokens)
	assert.Equal(t, 25, cfg.Agent.MaxIterations)
	assert.Equal(t, 120, cfg.Agent.ToolTimeoutSeconds)
	assert.Equal(t, "terse", cfg.Agent.Persona)
	assert.Equal(t, "projects/p/ragCorpora/1", cfg.Agent.SearchStore)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "files", cfg.Providers[0]["id"])
}

func TestLoad_PartialOverride_MergesWithDefaults(t *testing.T) {
	// Config file only overrides max_iterations - rest should be defaults
	configJSON := `{"agent": {"max_iterations": 3}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/agentloop/config.json": []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Agent.MaxIterations)               // Overridden
	assert.Equal(t, "gemini-2.0-flash", cfg.Model.Name)       // Default
	assert.Equal(t, int32(8192), cfg.Model.MaxOutputTokens)   // Default
	assert.Equal(t, 60, cfg.Agent.ToolTimeoutSeconds)         // Default
}

func TestLoad_NoHomeDir_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDirErr: errors.New("no home"),
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model.Name)
}

// --- ERROR PATH TESTS ---

func TestLoad_MalformedJSON_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/agentloop/config.json": []byte(`{"model": {`),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PermissionError_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir:     "/home/user",
		ReadFileErr: os.ErrPermission,
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidValues_FailValidation(t *testing.T) {
	configJSON := `{"agent": {"max_iterations": 0}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/agentloop/config.json": []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "max_iterations")
}
