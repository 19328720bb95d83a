package config

// Config holds all proxy configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile, environment and flags.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
// The value is treated as read-only once the server has started.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Backend BackendConfig `json:"backend" yaml:"backend"`
	Sandbox SandboxConfig `json:"sandbox" yaml:"sandbox"`
	Tools   ToolsConfig   `json:"tools" yaml:"tools"`
}

type ServerConfig struct {
	Host     string `json:"host" yaml:"host"`           // Default: 0.0.0.0
	Port     int    `json:"port" yaml:"port"`           // Default: 8080
	LogLevel string `json:"log_level" yaml:"log_level"` // Default: info

	// AuthToken, when set, must be presented by clients as a bearer token.
	AuthToken string `json:"auth_token" yaml:"auth_token"`

	ReadHeaderTimeoutSeconds int `json:"read_header_timeout_seconds" yaml:"read_header_timeout_seconds"` // Default: 10
	ShutdownTimeoutSeconds   int `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`       // Default: 10
}

type BackendConfig struct {
	BaseURL        string `json:"base_url" yaml:"base_url"`               // Default: http://localhost:11434
	AuthToken      string `json:"auth_token" yaml:"auth_token"`           // Bearer token sent to the backend
	DefaultModel   string `json:"default_model" yaml:"default_model"`     // Default: devstral-small-2:24b
	ForceModel     string `json:"force_model" yaml:"force_model"`         // Overrides any requested model
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"` // Default: 300
	MaxRetries     int    `json:"max_retries" yaml:"max_retries"`         // Default: 2

	// UseAnthropicAPI relays /v1/messages to the backend's own /v1/messages instead of running the tool loop.
	UseAnthropicAPI bool `json:"use_anthropic_api" yaml:"use_anthropic_api"`
}

type SandboxConfig struct {
	// WorkingDirectory is the sandbox root. Empty means the process working directory.
	WorkingDirectory   string   `json:"working_directory" yaml:"working_directory"`
	AllowedDirectories []string `json:"allowed_directories" yaml:"allowed_directories"`

	AllowCommands    bool     `json:"allow_commands" yaml:"allow_commands"`       // Default: true
	CommandAllowlist []string `json:"command_allowlist" yaml:"command_allowlist"` // Empty allows all

	RespectGitignore bool `json:"respect_gitignore" yaml:"respect_gitignore"` // Default: true

	// CommandEnvFile is a .env file whose variables are added to every run_command environment.
	CommandEnvFile string `json:"command_env_file" yaml:"command_env_file"`
}

type ToolsConfig struct {
	// Workflow
	InjectTools   bool `json:"inject_tools" yaml:"inject_tools"`     // Default: true
	MaxIterations int  `json:"max_iterations" yaml:"max_iterations"` // Default: 10

	// File Operations
	MaxFileSize      int64 `json:"max_file_size" yaml:"max_file_size"`           // Default: 10 * 1024 * 1024 (10MB)
	DefaultReadLimit int   `json:"default_read_limit" yaml:"default_read_limit"` // Default: 2000 lines
	MaxLineLength    int   `json:"max_line_length" yaml:"max_line_length"`       // Default: 2000 chars

	// Directory Listing and Glob
	MaxListEntries int `json:"max_list_entries" yaml:"max_list_entries"` // Default: 500
	MaxListDepth   int `json:"max_list_depth" yaml:"max_list_depth"`     // Default: 3
	MaxGlobResults int `json:"max_glob_results" yaml:"max_glob_results"` // Default: 200

	// Search
	MaxGrepMatches int `json:"max_grep_matches" yaml:"max_grep_matches"` // Default: 100
	MaxGrepFiles   int `json:"max_grep_files" yaml:"max_grep_files"`     // Default: 5000

	// Command Execution
	DefaultCommandTimeout int   `json:"default_command_timeout" yaml:"default_command_timeout"` // Default: 120 (seconds)
	MaxCommandTimeout     int   `json:"max_command_timeout" yaml:"max_command_timeout"`         // Default: 600 (seconds)
	MaxCommandOutput      int64 `json:"max_command_output" yaml:"max_command_output"`           // Default: 30000 bytes
	KillGraceMs           int   `json:"kill_grace_ms" yaml:"kill_grace_ms"`                     // Default: 500
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                     "0.0.0.0",
			Port:                     8080,
			LogLevel:                 "info",
			ReadHeaderTimeoutSeconds: 10,
			ShutdownTimeoutSeconds:   10,
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:11434",
			DefaultModel:   "devstral-small-2:24b",
			TimeoutSeconds: 300,
			MaxRetries:     2,
		},
		Sandbox: SandboxConfig{
			AllowCommands:    true,
			RespectGitignore: true,
		},
		Tools: ToolsConfig{
			InjectTools:           true,
			MaxIterations:         10,
			MaxFileSize:           10 * 1024 * 1024,
			DefaultReadLimit:      2000,
			MaxLineLength:         2000,
			MaxListEntries:        500,
			MaxListDepth:          3,
			MaxGlobResults:        200,
			MaxGrepMatches:        100,
			MaxGrepFiles:          5000,
			DefaultCommandTimeout: 120,
			MaxCommandTimeout:     600,
			MaxCommandOutput:      30000,
			KillGraceMs:           500,
		},
	}
}
