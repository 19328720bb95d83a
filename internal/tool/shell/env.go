package shell

import (
	"fmt"
	"strings"
)

type envFileReader interface {
	ReadFile(path string) ([]byte, error)
}

// ParseEnvFile parses a .env file into KEY=VALUE pairs in file order.
// It supports:
// - KEY=VALUE format, with an optional "export " prefix
// - Comments starting with #
// - Empty lines
// - Basic quoted values (single and double quotes)
//
// It does NOT support:
// - Multi-line values
// - Variable expansion
// - Complex shell escaping
func ParseEnvFile(fs envFileReader, path string) ([]string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, &EnvFileError{Path: path, Cause: err}
	}

	var env []string
	for i, rawLine := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &EnvFileError{Path: path, Line: i + 1, Cause: fmt.Errorf("%w, got %q", ErrEnvFileParse, line)}
		}

		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		env = append(env, key+"="+value)
	}

	return env, nil
}
