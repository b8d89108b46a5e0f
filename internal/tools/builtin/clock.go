// Package builtin ships the engine's native tools: a clock, an HTTP
// fetcher and a navigation command for embedding UIs.
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sandevgo/conductor/internal/core"
)

const getTimeSchema = `
{
  "type": "object",
  "properties": {
    "timezone": { "type": "string", "description": "IANA timezone name, e.g. Europe/Warsaw. Defaults to local time." },
    "format": { "type": "string", "description": "Go reference time layout. Defaults to 15:04." }
  }
}
`

type Clock struct {
	now func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockAt pins the clock for tests.
func NewClockAt(now func() time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) getTime(ctx context.Context, args map[string]any) (string, error) {
	t := c.now()

	if tz, ok := args["timezone"].(string); ok && tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return "", fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
		t = t.In(loc)
	}

	layout := "15:04"
	if f, ok := args["format"].(string); ok && f != "" {
		layout = f
	}
	return t.Format(layout), nil
}

func (c *Clock) Tools() []core.Tool {
	return []core.Tool{
		{
			Name:        "get_time",
			Description: "Get the current time, optionally in a given timezone and format",
			Parameters:  json.RawMessage(getTimeSchema),
			Handler:     core.ToolHandlerFunc(c.getTime),
			Tags:        []string{"time", "readonly"},
			Service:     "system",
		},
	}
}
