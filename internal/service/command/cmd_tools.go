package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/internal/tools"
)

type ToolsCommand struct {
	tools     *tools.Registry
	formatter *ResponseFormatter
}

func NewToolsCommand(tools *tools.Registry) *ToolsCommand {
	return &ToolsCommand{
		tools:     tools,
		formatter: NewResponseFormatter(),
	}
}

func (c *ToolsCommand) Name() string {
	return "tools"
}

func (c *ToolsCommand) Description() string {
	return "List registered tools, optionally filtered by tag or service"
}

func (c *ToolsCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	var catalog []core.Tool
	title := "Registered Tools"

	switch {
	case len(args) == 0:
		catalog = c.tools.List()
	case strings.HasPrefix(args[0], "@"):
		service := strings.TrimPrefix(args[0], "@")
		catalog = c.tools.ByService(service)
		title = fmt.Sprintf("Tools from %s", service)
	default:
		catalog = c.tools.ByTag(args[0])
		title = fmt.Sprintf("Tools tagged %q", args[0])
	}

	if len(catalog) == 0 {
		return c.formatter.Combine(
			c.formatter.Info(title),
			c.formatter.Label("Status", "no tools matched"),
			c.formatter.Usage("/tools [tag] | /tools @[service]"),
		), nil
	}

	items := make([]string, len(catalog))
	for i, tool := range catalog {
		items[i] = fmt.Sprintf("**%s**: %s", tool.Name, oneLine(tool.Description, 120))
	}

	return c.formatter.Combine(
		c.formatter.Info(title),
		c.formatter.Label("Count", fmt.Sprintf("%d", len(catalog))),
		"\n",
		c.formatter.List(items),
	), nil
}

// oneLine collapses whitespace and bounds the description length so the
// listing stays one row per tool.
func oneLine(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > limit {
		text = text[:limit-3] + "..."
	}
	return text
}
