package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/conductor/internal/core"
)

const navigateSchema = `
{
  "type": "object",
  "properties": {
    "target": { "type": "string", "description": "Screen or route to open" }
  },
  "required": ["target"]
}
`

// NavigationSink is implemented by the embedding UI; the engine only
// forwards the request.
type NavigationSink interface {
	Navigate(ctx context.Context, target string) error
}

// NavigationSinkFunc adapts a function to the NavigationSink interface.
type NavigationSinkFunc func(ctx context.Context, target string) error

func (f NavigationSinkFunc) Navigate(ctx context.Context, target string) error {
	return f(ctx, target)
}

// Navigator exposes UI navigation as a tool. It carries the "ui" tag so
// the orchestrator returns its result directly without a follow-up
// summarization call.
type Navigator struct {
	sink NavigationSink
}

func NewNavigator(sink NavigationSink) *Navigator {
	return &Navigator{sink: sink}
}

func (n *Navigator) navigate(ctx context.Context, args map[string]any) (string, error) {
	target, _ := args["target"].(string)
	if target == "" {
		return "", fmt.Errorf("target is required")
	}

	if n.sink != nil {
		if err := n.sink.Navigate(ctx, target); err != nil {
			return "", fmt.Errorf("navigation failed: %w", err)
		}
	}
	return fmt.Sprintf("Navigating to %s", target), nil
}

func (n *Navigator) Tools() []core.Tool {
	return []core.Tool{
		{
			Name:        "navigate",
			Description: "Open a screen or route in the embedding application",
			Parameters:  json.RawMessage(navigateSchema),
			Handler:     core.ToolHandlerFunc(n.navigate),
			Tags:        []string{"ui"},
			Service:     "ui",
		},
	}
}
