package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/leofalp/parliament/core/parse"
	"github.com/leofalp/parliament/providers/ai"
)

// Tool represents a typed, callable tool. It binds a name and description to
// a strongly-typed Go function and derives a JSON schema for the input type I
// via reflection. Use [NewTool] to construct one; store and dispatch through
// the [GenericTool] interface when the concrete types are not needed.
type Tool[I, O any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Function    func(ctx context.Context, input I) (O, error)
}

// GenericTool is the provider-agnostic interface for all tools. It abstracts
// over the concrete generic type parameters of [Tool] so tools can be stored,
// dispatched, and introspected without knowing their input/output types.
type GenericTool interface {
	// ToolInfo returns the metadata (name, description, parameter schema)
	// used to advertise this tool to an AI provider.
	ToolInfo() ai.ToolDescription

	// Call invokes the tool with a JSON-encoded input string and returns a
	// JSON-encoded output string. Returns an error if parsing or execution fails.
	Call(ctx context.Context, inputJSON string) (string, error)
}

// funcToolOptions holds optional configuration for a tool created via [NewTool].
type funcToolOptions struct {
	Description string
}

// WithDescription sets a human-readable description for the tool. Providers
// surface this description to the language model to help it decide when and
// how to invoke the tool.
func WithDescription(description string) func(tool *funcToolOptions) {
	return func(o *funcToolOptions) {
		o.Description = description
	}
}

// NewTool constructs a new [Tool] with the given name and handler function.
// The JSON schema for the input type I is derived via reflection; struct
// fields may carry `jsonschema:` tags for descriptions.
func NewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...func(tool *funcToolOptions)) *Tool[I, O] {
	toolOptions := &funcToolOptions{}
	for _, option := range options {
		option(toolOptions)
	}

	var input I
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}

	return &Tool[I, O]{
		Name:        name,
		Description: toolOptions.Description,
		Parameters:  reflector.Reflect(&input),
		Function:    function,
	}
}

// ToolInfo returns the [ai.ToolDescription] used to advertise this tool to a provider.
func (t *Tool[I, O]) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Call invokes the tool's underlying function with the given JSON-encoded
// input. The input is parsed tolerantly (see [parse.StringAs]), the function
// is executed, and the result is serialized back to JSON. Returns an error if
// parsing, execution, or output marshaling fails.
func (t *Tool[I, O]) Call(ctx context.Context, inputJSON string) (string, error) {
	parsedInput, err := parse.StringAs[I](inputJSON)
	if err != nil {
		return "", fmt.Errorf("tool %s: invalid input: %w", t.Name, err)
	}

	output, err := t.Function(ctx, parsedInput)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", t.Name, err)
	}

	outputBytes, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("tool %s: failed to marshal output: %w", t.Name, err)
	}

	return string(outputBytes), nil
}
