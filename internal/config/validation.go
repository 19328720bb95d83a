package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if !validLogLevels[strings.ToLower(c.Server.LogLevel)] {
		errs = append(errs, "server.log_level must be one of debug, info, warn, error")
	}
	if c.Server.ReadHeaderTimeoutSeconds < 1 {
		errs = append(errs, "server.read_header_timeout_seconds must be >= 1")
	}
	if c.Server.ShutdownTimeoutSeconds < 1 {
		errs = append(errs, "server.shutdown_timeout_seconds must be >= 1")
	}

	// Backend
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "backend.base_url must be an absolute URL")
	}
	if c.Backend.DefaultModel == "" && c.Backend.ForceModel == "" {
		errs = append(errs, "backend.default_model must be set")
	}
	if c.Backend.TimeoutSeconds < 1 {
		errs = append(errs, "backend.timeout_seconds must be >= 1")
	}
	if c.Backend.MaxRetries < 0 {
		errs = append(errs, "backend.max_retries must be >= 0")
	}

	// Sandbox
	for i, prefix := range c.Sandbox.CommandAllowlist {
		if strings.TrimSpace(prefix) == "" {
			errs = append(errs, fmt.Sprintf("sandbox.command_allowlist[%d] must not be blank", i))
		}
	}
	for i, dir := range c.Sandbox.AllowedDirectories {
		if strings.TrimSpace(dir) == "" {
			errs = append(errs, fmt.Sprintf("sandbox.allowed_directories[%d] must not be blank", i))
		}
	}

	// Tools
	if c.Tools.MaxIterations < 1 {
		errs = append(errs, "tools.max_iterations must be >= 1")
	}
	if c.Tools.MaxFileSize < 1 {
		errs = append(errs, "tools.max_file_size must be >= 1")
	}
	if c.Tools.DefaultReadLimit < 1 {
		errs = append(errs, "tools.default_read_limit must be >= 1")
	}
	if c.Tools.MaxLineLength < 1 {
		errs = append(errs, "tools.max_line_length must be >= 1")
	}
	if c.Tools.MaxListEntries < 1 {
		errs = append(errs, "tools.max_list_entries must be >= 1")
	}
	if c.Tools.MaxListDepth < 1 {
		errs = append(errs, "tools.max_list_depth must be >= 1")
	}
	if c.Tools.MaxGlobResults < 1 {
		errs = append(errs, "tools.max_glob_results must be >= 1")
	}
	if c.Tools.MaxGrepMatches < 1 {
		errs = append(errs, "tools.max_grep_matches must be >= 1")
	}
	if c.Tools.MaxGrepFiles < 1 {
		errs = append(errs, "tools.max_grep_files must be >= 1")
	}
	if c.Tools.DefaultCommandTimeout < 1 {
		errs = append(errs, "tools.default_command_timeout must be >= 1")
	}
	if c.Tools.MaxCommandOutput < 1 {
		errs = append(errs, "tools.max_command_output must be >= 1")
	}
	if c.Tools.KillGraceMs < 0 {
		errs = append(errs, "tools.kill_grace_ms must be >= 0")
	}

	// Semantic validation: Default <= Max constraints
	if c.Tools.DefaultCommandTimeout > c.Tools.MaxCommandTimeout {
		errs = append(errs, "tools.default_command_timeout must be <= tools.max_command_timeout")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
