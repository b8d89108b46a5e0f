package core

import (
	"context"
	"time"
)

// BackendResponse is what a model backend hands back: plain text,
// requested function calls, or both.
type BackendResponse struct {
	Text          string         `json:"text,omitempty"`
	FunctionCalls []FunctionCall `json:"function_calls,omitempty"`
}

// InvokeOptions carry per-call parameters to a backend.
type InvokeOptions struct {
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Backend abstracts one reasoning-model provider. Implementations must
// respect context cancellation and return typed backend errors.
type Backend interface {
	Invoke(ctx context.Context, prompt string, tools []ToolDeclaration, history []Turn, opts InvokeOptions) (*BackendResponse, error)
}

// ToolHandler executes a named action with validated arguments.
type ToolHandler interface {
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// ToolHandlerFunc adapts a plain function to the ToolHandler interface.
type ToolHandlerFunc func(ctx context.Context, args map[string]any) (string, error)

func (f ToolHandlerFunc) Execute(ctx context.Context, args map[string]any) (string, error) {
	return f(ctx, args)
}

// Retriever answers knowledge-base queries used during context assembly.
// Absence of results is normal and returns an empty slice.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]string, error)
}
