package command

import (
	"context"
)

// SessionClearer is the slice of the engine the clear command needs.
type SessionClearer interface {
	ClearSession(id string)
}

type ClearCommand struct {
	sessions  SessionClearer
	formatter *ResponseFormatter
}

func NewClearCommand(sessions SessionClearer) *ClearCommand {
	return &ClearCommand{
		sessions:  sessions,
		formatter: NewResponseFormatter(),
	}
}

func (c *ClearCommand) Name() string {
	return "clear"
}

func (c *ClearCommand) Description() string {
	return "Forget this session's conversation history"
}

func (c *ClearCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	c.sessions.ClearSession(sessionID)
	return c.formatter.Success("Conversation history cleared"), nil
}
