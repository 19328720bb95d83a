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

func envMap(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

const dotfile = "/home/user/.config/toolproxy/config.json"

// --- HAPPY PATH TESTS ---

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{HomeDir: "/home/user", Files: map[string][]byte{}}
	loader := NewLoaderWithFS(fs, nil)

	cfg, err := loader.Load("")

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 10, cfg.Tools.MaxIterations)
	assert.Equal(t, "devstral-small-2:24b", cfg.Backend.DefaultModel)
	assert.True(t, cfg.Tools.InjectTools)
}

func TestLoad_PartialOverride_MergesWithDefaults(t *testing.T) {
	configJSON := `{"tools": {"max_iterations": 4}, "sandbox": {"command_allowlist": ["git status", "go test"]}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{dotfile: []byte(configJSON)},
	}

	cfg, err := NewLoaderWithFS(fs, nil).Load("")

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Tools.MaxIterations)
	assert.Equal(t, []string{"git status", "go test"}, cfg.Sandbox.CommandAllowlist)
	assert.Equal(t, 8080, cfg.Server.Port)     // Default preserved
	assert.True(t, cfg.Sandbox.AllowCommands) // Default preserved
}

func TestLoad_ExplicitFalse_OverridesDefault(t *testing.T) {
	configJSON := `{"sandbox": {"allow_commands": false}, "tools": {"inject_tools": false}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{dotfile: []byte(configJSON)},
	}

	cfg, err := NewLoaderWithFS(fs, nil).Load("")

	require.NoError(t, err)
	assert.False(t, cfg.Sandbox.AllowCommands)
	assert.False(t, cfg.Tools.InjectTools)
}

func TestLoad_ExplicitYAMLPath(t *testing.T) {
	configYAML := "server:\n  port: 9090\nbackend:\n  base_url: http://gpu-box:11434\nsandbox:\n  allowed_directories:\n    - /data\n"
	fs := &MockFileSystem{
		Files: map[string][]byte{"/etc/toolproxy.yaml": []byte(configYAML)},
	}

	cfg, err := NewLoaderWithFS(fs, nil).Load("/etc/toolproxy.yaml")

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://gpu-box:11434", cfg.Backend.BaseURL)
	assert.Equal(t, []string{"/data"}, cfg.Sandbox.AllowedDirectories)
	assert.Equal(t, 10, cfg.Tools.MaxIterations)
	assert.False(t, cfg.Backend.UseAnthropicAPI)
}

func TestLoad_UseAnthropicAPI(t *testing.T) {
	fs := &MockFileSystem{
		Files: map[string][]byte{"/etc/toolproxy.yml": []byte("backend:\n  use_anthropic_api: true\n")},
	}

	cfg, err := NewLoaderWithFS(fs, nil).Load("/etc/toolproxy.yml")

	require.NoError(t, err)
	assert.True(t, cfg.Backend.UseAnthropicAPI)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{dotfile: []byte(`{"backend": {"base_url": "http://file:1"}}`)},
	}
	env := envMap(map[string]string{
		EnvBackendURL:   "http://env:2",
		EnvBackendToken: "secret",
		EnvPort:         "7000",
		EnvHost:         "127.0.0.1",
	})

	cfg, err := NewLoaderWithFS(fs, env).Load("")

	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.Backend.BaseURL)
	assert.Equal(t, "secret", cfg.Backend.AuthToken)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

// --- UNHAPPY PATH TESTS ---

func TestLoad_MalformedJSON_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{dotfile: []byte(`{invalid json`)},
	}

	cfg, err := NewLoaderWithFS(fs, nil).Load("")

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_PermissionDenied_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{HomeDir: "/home/user", ReadFileErr: os.ErrPermission}

	cfg, err := NewLoaderWithFS(fs, nil).Load("")

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestLoad_ExplicitPathMissing_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{Files: map[string][]byte{}}

	cfg, err := NewLoaderWithFS(fs, nil).Load("/nope/config.json")

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_HomeDirError_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{HomeDirErr: errors.New("homeless")}

	cfg, err := NewLoaderWithFS(fs, nil).Load("")

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Tools.MaxIterations)
}

func TestLoad_InvalidPortEnv_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{HomeDir: "/home/user", Files: map[string][]byte{}}

	_, err := NewLoaderWithFS(fs, envMap(map[string]string{EnvPort: "eighty"})).Load("")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), EnvPort)
}
