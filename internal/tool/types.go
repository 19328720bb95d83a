package tool

import (
	"bytes"
	"encoding/json"
)

// Name identifies one of the built-in tool kinds.
type Name string

const (
	NameReadFile      Name = "read_file"
	NameWriteFile     Name = "write_file"
	NameEditFile      Name = "edit_file"
	NameListDirectory Name = "list_directory"
	NameGlobFiles     Name = "glob_files"
	NameGrepSearch    Name = "grep_search"
	NameRunCommand    Name = "run_command"
)

// Names lists every built-in tool kind.
var Names = []Name{
	NameReadFile,
	NameWriteFile,
	NameEditFile,
	NameListDirectory,
	NameGlobFiles,
	NameGrepSearch,
	NameRunCommand,
}

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// Raw encodes the schema as compact JSON.
func (s *Schema) Raw() json.RawMessage {
	data, err := json.Marshal(s)
	if err != nil {
		// Schema contains only strings, maps and slices.
		panic(err)
	}
	return data
}

// Declaration declares a tool's function signature for the LLM.
// Parameters holds the JSON Schema verbatim so client-supplied schemas pass through untouched.
type Declaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// CompactJSON returns data with insignificant whitespace removed, or data unchanged if it is not valid JSON.
func CompactJSON(data []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return data
	}
	return buf.Bytes()
}

// Result is returned by tools after execution.
type Result interface {
	// LLMContent returns the text sent back to the model as the tool result.
	LLMContent() string
}
