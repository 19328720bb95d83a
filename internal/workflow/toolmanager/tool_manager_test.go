package toolmanager

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
	"github.com/Cyclone1070/toolproxy/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResult struct {
	llmContent string
}

func (m *mockResult) LLMContent() string { return m.llmContent }

type mockInput struct {
	Value  string `json:"value"`
	Count  int    `json:"count"`
	Offset *int   `json:"offset"`
	Force  bool   `json:"force"`
}

func (m *mockInput) String() string { return "Doing " + m.Value }

var mockSchema = json.RawMessage(`{"type":"object","properties":{"value":{"type":"string"},"count":{"type":"integer"},"offset":{"type":"integer"},"force":{"type":"boolean"}},"required":["value"]}`)

type mockTool struct {
	name        string
	description string
	params      json.RawMessage
	executeFunc func(ctx context.Context, input any) (tool.Result, error)
}

func (m *mockTool) Name() tool.Name { return tool.Name(m.name) }
func (m *mockTool) Declaration() tool.Declaration {
	return tool.Declaration{Name: m.name, Description: m.description, Parameters: m.params}
}
func (m *mockTool) Input() any { return &mockInput{} }
func (m *mockTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, input)
	}
	return &mockResult{llmContent: "ok"}, nil
}

func newManager(t *testing.T, tools ...toolImpl) *ToolManager {
	t.Helper()
	tm, err := NewToolManager(tools...)
	require.NoError(t, err)
	return tm
}

func call(id, name, args string) provider.ToolCall {
	return provider.ToolCall{ID: id, Function: provider.FunctionCall{Name: name, Arguments: args}}
}

func TestNewToolManager_DuplicateName(t *testing.T) {
	_, err := NewToolManager(
		&mockTool{name: "test-tool", description: "v1"},
		&mockTool{name: "test-tool", description: "v2"},
	)

	var dup *DuplicateToolError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, "test-tool", dup.Name)
}

func TestNewToolManager_InvalidSchema(t *testing.T) {
	_, err := NewToolManager(&mockTool{name: "bad", params: json.RawMessage(`{"type":`)})

	var schemaErr *SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestDeclarations_SortedByName(t *testing.T) {
	tm := newManager(t,
		&mockTool{name: "z"},
		&mockTool{name: "a"},
		&mockTool{name: "m"},
	)

	decls := tm.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "a", decls[0].Name)
	assert.Equal(t, "m", decls[1].Name)
	assert.Equal(t, "z", decls[2].Name)
	assert.Equal(t, []string{"a", "m", "z"}, tm.Names())
	assert.True(t, tm.Has("m"))
	assert.False(t, tm.Has("q"))

	decls[0].Name = "mutated"
	assert.Equal(t, "a", tm.Declarations()[0].Name)
}

func TestExecute_UnknownTool_ReturnsErrorResult(t *testing.T) {
	tm := newManager(t, &mockTool{name: "read_file"}, &mockTool{name: "glob_files"})
	events := make(chan workflow.Event, 10)

	res, err := tm.Execute(context.Background(), call("tc-123", "unknown", `{}`), events)

	require.NoError(t, err)
	assert.Equal(t, "tc-123", res.ToolCallID)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, `Error: tool "unknown" does not exist`)
	assert.Contains(t, res.Content, "glob_files, read_file")

	<-events
	end := (<-events).(workflow.ToolEndEvent)
	assert.Equal(t, errutil.KindUnknownTool, end.ErrorKind)
}

func TestExecute_DecodesArguments(t *testing.T) {
	var captured *mockInput
	tm := newManager(t, &mockTool{
		name:   "test",
		params: mockSchema,
		executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
			captured = input.(*mockInput)
			return &mockResult{llmContent: "done"}, nil
		},
	})

	res, err := tm.Execute(context.Background(), call("tc-456", "test", `{"value":"hello","count":3,"offset":7,"force":true}`), nil)

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "done", res.Content)
	assert.Equal(t, "tc-456", res.ToolCallID)
	require.NotNil(t, captured)
	assert.Equal(t, "hello", captured.Value)
	assert.Equal(t, 3, captured.Count)
	require.NotNil(t, captured.Offset)
	assert.Equal(t, 7, *captured.Offset)
	assert.True(t, captured.Force)
}

func TestExecute_NullOptionalArgumentsAreOmitted(t *testing.T) {
	var captured *mockInput
	tm := newManager(t, &mockTool{
		name:   "test",
		params: mockSchema,
		executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
			captured = input.(*mockInput)
			return &mockResult{llmContent: "ok"}, nil
		},
	})

	res, err := tm.Execute(context.Background(), call("1", "test", `{"value":"x","offset":null}`), nil)

	require.NoError(t, err)
	assert.False(t, res.IsError, res.Content)
	assert.Nil(t, captured.Offset)
}

func TestExecute_MalformedArguments(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		contains string
	}{
		{"invalid JSON", `{invalid}`, "not valid JSON"},
		{"not an object", `["value"]`, "must be a JSON object"},
		{"missing required", `{"count":1}`, "value"},
		{"wrong type", `{"value":"x","count":"three"}`, "count"},
		{"fractional integer", `{"value":"x","count":1.5}`, "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executed := false
			tm := newManager(t, &mockTool{
				name:   "test",
				params: mockSchema,
				executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
					executed = true
					return &mockResult{}, nil
				},
			})
			events := make(chan workflow.Event, 10)

			res, err := tm.Execute(context.Background(), call("tc-789", "test", tt.args), events)

			require.NoError(t, err)
			assert.False(t, executed)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Content, `Error: invalid arguments for tool "test"`)
			assert.Contains(t, res.Content, tt.contains)
			assert.Contains(t, res.Content, "Expected schema:")

			<-events
			end := (<-events).(workflow.ToolEndEvent)
			assert.True(t, end.IsError)
			assert.Equal(t, errutil.KindMalformedToolArguments, end.ErrorKind)
		})
	}
}

func TestExecute_EmptyArgumentsAreAnEmptyObject(t *testing.T) {
	tm := newManager(t, &mockTool{name: "test"})

	res, err := tm.Execute(context.Background(), call("1", "test", "  "), nil)

	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestExecute_ToolErrorBecomesResult(t *testing.T) {
	tm := newManager(t, &mockTool{
		name: "test",
		executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
			return nil, errutil.New(errutil.KindFileNotFound, "file not found: a.txt")
		},
	})
	events := make(chan workflow.Event, 10)

	res, err := tm.Execute(context.Background(), call("c1", "test", `{}`), events)

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: file not found: a.txt", res.Content)

	<-events
	end := (<-events).(workflow.ToolEndEvent)
	assert.Equal(t, errutil.KindFileNotFound, end.ErrorKind)
	assert.Equal(t, "c1", end.CallID)
}

func TestExecute_EmitsToolEvents(t *testing.T) {
	tm := newManager(t, &mockTool{name: "test", params: mockSchema})
	events := make(chan workflow.Event, 10)

	_, err := tm.Execute(context.Background(), call("id-1", "test", `{"value": "hello"}`), events)
	require.NoError(t, err)

	start, ok := (<-events).(workflow.ToolStartEvent)
	require.True(t, ok)
	assert.Equal(t, "test", start.ToolName)
	assert.Equal(t, "id-1", start.CallID)
	assert.Equal(t, "Doing hello", start.RequestDisplay)

	end, ok := (<-events).(workflow.ToolEndEvent)
	require.True(t, ok)
	assert.Equal(t, "test", end.ToolName)
	assert.False(t, end.IsError)
	assert.Empty(t, end.ErrorKind)
}

func TestExecute_ContextCancelled_ReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tm := newManager(t, &mockTool{
		name: "shell",
		executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
			cancel()
			return nil, ctx.Err()
		},
	})

	_, err := tm.Execute(ctx, call("1", "shell", `{}`), make(chan workflow.Event, 10))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_ConcurrentCalls_NoRace(t *testing.T) {
	tm := newManager(t, &mockTool{name: "tool"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tm.Execute(context.Background(), call("x", "tool", `{}`), nil)
		}()
	}
	wg.Wait()
}
