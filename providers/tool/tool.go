package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/clarolabs/claro/internal/jsonschema"
	"github.com/clarolabs/claro/internal/utils"
	"github.com/clarolabs/claro/providers/ai"
	"github.com/clarolabs/claro/providers/observability"
)

// Tool represents a typed, callable tool that can be advertised to an AI
// provider. It binds a name and description to a strongly-typed Go function,
// and automatically derives JSON schemas for both input (I) and output (O)
// via reflection. Use [NewTool] to construct a Tool; implement [GenericTool]
// for provider-agnostic usage.
type Tool[I, O any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Output      *jsonschema.Schema
	Function    func(ctx context.Context, input I) (O, error)
}

// GenericTool is the provider-agnostic interface for all tools.
// It abstracts over the concrete generic type parameters of [Tool] so that
// tools can be stored, dispatched, and introspected without knowing their
// exact input/output types.
type GenericTool interface {
	// ToolInfo returns the metadata (name, description, parameter schema)
	// used to advertise this tool to an AI provider.
	ToolInfo() ai.ToolDescription

	// Call invokes the tool with the decoded argument object and returns a
	// JSON-encoded output string. Returns an error if argument binding or
	// execution fails.
	Call(ctx context.Context, arguments map[string]any) (string, error)
}

// funcToolOptions holds optional configuration for a tool created via [NewTool].
type funcToolOptions struct {
	Description string
}

// WithDescription sets a human-readable description for the tool.
// Providers surface this description to the language model to help it decide
// when and how to invoke the tool.
func WithDescription(description string) func(tool *funcToolOptions) {
	return func(s *funcToolOptions) {
		s.Description = description
	}
}

// NewTool constructs a new [Tool] with the given name and handler function.
// JSON schemas for the input type I and output type O are derived
// automatically via reflection.
//
// Example:
//
//	myTool := tool.NewTool("search", searchFunc,
//	    tool.WithDescription("Searches the web for a query."),
//	)
func NewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...func(tool *funcToolOptions)) *Tool[I, O] {
	toolOptions := &funcToolOptions{}
	for _, option := range options {
		option(toolOptions)
	}

	return &Tool[I, O]{
		Name:        name,
		Description: toolOptions.Description,
		Parameters:  jsonschema.GenerateJSONSchema[I](),
		Output:      jsonschema.GenerateJSONSchema[O](),
		Function:    function,
	}
}

// ToolInfo returns the [ai.ToolDescription] used to advertise this tool to an
// AI provider.
func (t *Tool[I, O]) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Call invokes the tool's underlying function with the given argument object.
// The arguments are bound onto the tool's input type I, the function is
// executed, and the result is returned serialized as JSON. Observability span
// events are emitted at the start and end of execution when a span is present
// in ctx. Returns an error if argument binding, function execution, or output
// marshaling fails.
func (t *Tool[I, O]) Call(ctx context.Context, arguments map[string]any) (string, error) {
	span := observability.SpanFromContext(ctx)

	inputJson, err := json.Marshal(arguments)
	if err != nil {
		return "", err
	}

	if span != nil {
		span.AddEvent(observability.EventToolExecutionStart,
			observability.String(observability.AttrToolName, t.Name),
			observability.String(observability.AttrToolInput, string(inputJson)),
		)
		defer span.AddEvent(observability.EventToolExecutionEnd)
	}

	start := time.Now()

	// Bind the LLM-supplied arguments onto the strongly-typed input type.
	parsedInput, err := utils.ParseStringAs[I](string(inputJson))
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetAttributes(
				observability.String(observability.AttrToolError, err.Error()),
			)
		}
		return "", err
	}

	output, err := t.Function(ctx, parsedInput)
	duration := time.Since(start)

	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetAttributes(
				observability.String(observability.AttrToolError, err.Error()),
				observability.Duration(observability.AttrToolDuration, duration),
			)
		}
		return "", err
	}

	outputBytes, err := json.Marshal(output)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		return "", err
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrToolOutput, string(outputBytes)),
			observability.Duration(observability.AttrToolDuration, duration),
		)
	}

	return string(outputBytes), nil
}
