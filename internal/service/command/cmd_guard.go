package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/conductor/internal/guard"
)

type GuardCommand struct {
	guard     *guard.Pipeline
	formatter *ResponseFormatter
}

func NewGuardCommand(guard *guard.Pipeline) *GuardCommand {
	return &GuardCommand{
		guard:     guard,
		formatter: NewResponseFormatter(),
	}
}

func (c *GuardCommand) Name() string {
	return "guard"
}

func (c *GuardCommand) Description() string {
	return "Show or toggle guardrail policies"
}

func (c *GuardCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.listPolicies(), nil
	}

	if len(args) != 2 || (args[0] != "on" && args[0] != "off") {
		return c.formatter.Combine(
			c.formatter.Usage("/guard [on|off] [policy]"),
			c.formatter.Examples([]string{
				"/guard off redaction",
				"/guard on blocklist",
			}),
		), nil
	}

	enabled := args[0] == "on"
	if err := c.guard.SetPolicy(args[1], enabled); err != nil {
		return "", fmt.Errorf("failed to toggle policy: %w", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return c.formatter.Success(fmt.Sprintf("Policy `%s` %s", args[1], state)), nil
}

func (c *GuardCommand) listPolicies() string {
	policies := c.guard.Policies()
	if len(policies) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Guardrail Policies"),
			c.formatter.Label("Status", "no policies registered"),
		)
	}

	items := make([]string, len(policies))
	for i, p := range policies {
		state := "off"
		if p.Enabled {
			state = "on"
		}
		items[i] = fmt.Sprintf("**%s** [%s] (%s)", p.Name, state, stageName(p.Stage))
	}

	return c.formatter.Combine(
		c.formatter.Info("Guardrail Policies"),
		c.formatter.List(items),
		c.formatter.Tip("Toggle with /guard [on|off] [policy]"),
	)
}

func stageName(s guard.Stage) string {
	switch s {
	case guard.StageInput:
		return "input"
	case guard.StageOutput:
		return "output"
	case guard.StageBoth:
		return "input+output"
	default:
		return "unknown"
	}
}
