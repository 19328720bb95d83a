package toolmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
	"github.com/Cyclone1070/toolproxy/internal/workflow"
	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

type entry struct {
	impl   toolImpl
	schema *jsonschema.Schema
}

// ToolManager is an immutable registry of tools keyed by name.
// It is built once at startup and safe for concurrent use.
type ToolManager struct {
	registry map[string]entry
	decls    []tool.Declaration
}

// NewToolManager registers tools and compiles each declaration's parameter schema.
func NewToolManager(tools ...toolImpl) (*ToolManager, error) {
	tm := &ToolManager{registry: make(map[string]entry, len(tools))}
	for _, t := range tools {
		name := string(t.Name())
		if _, exists := tm.registry[name]; exists {
			return nil, &DuplicateToolError{Name: name}
		}
		decl := t.Declaration()
		schema, err := compileSchema(name, decl.Parameters)
		if err != nil {
			return nil, err
		}
		tm.registry[name] = entry{impl: t, schema: schema}
		tm.decls = append(tm.decls, decl)
	}
	sort.Slice(tm.decls, func(i, j int) bool {
		return tm.decls[i].Name < tm.decls[j].Name
	})
	return tm, nil
}

func compileSchema(name string, params json.RawMessage) (*jsonschema.Schema, error) {
	if len(params) == 0 {
		params = json.RawMessage(`{"type":"object"}`)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(params))
	if err != nil {
		return nil, &SchemaError{Tool: name, Cause: err}
	}
	url := "tool://" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, &SchemaError{Tool: name, Cause: err}
	}
	schema, err := c.Compile(url)
	if err != nil {
		return nil, &SchemaError{Tool: name, Cause: err}
	}
	return schema, nil
}

// Declarations returns all tool schemas for the LLM, sorted by name.
func (m *ToolManager) Declarations() []tool.Declaration {
	return append([]tool.Declaration(nil), m.decls...)
}

// Has reports whether a tool with the given name is registered.
func (m *ToolManager) Has(name string) bool {
	_, ok := m.registry[name]
	return ok
}

// Names returns the registered tool names, sorted.
func (m *ToolManager) Names() []string {
	names := make([]string, 0, len(m.decls))
	for _, d := range m.decls {
		names = append(names, d.Name)
	}
	return names
}

// Execute runs one tool call and returns its result.
//
// Tool failures (unknown tool, malformed arguments, or any domain error) become an error-flagged
// result whose content is "Error: <message>" so the model can correct itself.
// Only context cancellation is returned as an error.
func (m *ToolManager) Execute(ctx context.Context, tc provider.ToolCall, events chan<- workflow.Event) (provider.ToolResult, error) {
	start := time.Now()
	name := tc.Function.Name

	var display string
	input, err := m.prepare(tc)
	if s, ok := input.(fmt.Stringer); ok && err == nil {
		display = s.String()
	}
	workflow.Emit(ctx, events, workflow.ToolStartEvent{ToolName: name, CallID: tc.ID, RequestDisplay: display})

	var res tool.Result
	if err == nil {
		res, err = m.registry[name].impl.Execute(ctx, input)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return provider.ToolResult{}, ctxErr
	}

	result := provider.ToolResult{ToolCallID: tc.ID}
	end := workflow.ToolEndEvent{ToolName: name, CallID: tc.ID}
	if err != nil {
		result.IsError = true
		result.Content = "Error: " + err.Error()
		end.IsError = true
		end.ErrorKind = errutil.KindOf(err)
	} else {
		result.Content = res.LLMContent()
	}
	end.Duration = time.Since(start)
	workflow.Emit(ctx, events, end)

	return result, nil
}

// prepare looks up the tool, validates the raw arguments against its schema and decodes them
// into the tool's typed request.
func (m *ToolManager) prepare(tc provider.ToolCall) (any, error) {
	name := tc.Function.Name
	e, ok := m.registry[name]
	if !ok {
		return nil, &UnknownToolError{Name: name, Available: m.Names()}
	}

	raw := strings.TrimSpace(tc.Function.Arguments)
	if raw == "" {
		raw = "{}"
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, m.malformed(e, fmt.Sprintf("arguments are not valid JSON: %v", err))
	}
	args, isObject := decoded.(map[string]any)
	if !isObject {
		return nil, m.malformed(e, "arguments must be a JSON object")
	}
	// Models often send explicit nulls for omitted optional parameters.
	for k, v := range args {
		if v == nil {
			delete(args, k)
		}
	}
	if err := e.schema.Validate(args); err != nil {
		return nil, m.malformed(e, err.Error())
	}

	input := e.impl.Input()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  input,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(args); err != nil {
		return nil, m.malformed(e, err.Error())
	}
	return input, nil
}

func (m *ToolManager) malformed(e entry, reason string) error {
	return &MalformedArgumentsError{
		Tool:   string(e.impl.Name()),
		Reason: reason,
		Schema: string(e.impl.Declaration().Parameters),
	}
}
