package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/sandevgo/conductor/internal/core"
)

type HelpCommand struct {
	list      func() []core.Command
	formatter *ResponseFormatter
}

// NewHelpCommand takes a listing func instead of the router itself so
// the router can register help among the commands it routes.
func NewHelpCommand(list func() []core.Command) *HelpCommand {
	return &HelpCommand{
		list:      list,
		formatter: NewResponseFormatter(),
	}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "List available commands"
}

func (c *HelpCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	commands := c.list()
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name() < commands[j].Name()
	})

	items := make([]string, len(commands))
	for i, cmd := range commands {
		items[i] = fmt.Sprintf("**/%s**: %s", cmd.Name(), cmd.Description())
	}

	return c.formatter.Combine(
		c.formatter.Info("Commands"),
		c.formatter.List(items),
		c.formatter.Tip("Anything without a leading / goes to the model"),
	), nil
}
