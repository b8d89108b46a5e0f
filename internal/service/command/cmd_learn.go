package command

import (
	"context"
	"fmt"
	"strings"
)

// FactWriter is the slice of the knowledge store the learn command needs.
type FactWriter interface {
	SaveFact(ctx context.Context, topic, fact string) error
}

type LearnCommand struct {
	knowledge FactWriter
	formatter *ResponseFormatter
}

func NewLearnCommand(knowledge FactWriter) *LearnCommand {
	return &LearnCommand{
		knowledge: knowledge,
		formatter: NewResponseFormatter(),
	}
}

func (c *LearnCommand) Name() string {
	return "learn"
}

func (c *LearnCommand) Description() string {
	return "Save a fact to the knowledge base for context retrieval"
}

func (c *LearnCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) < 2 {
		return c.formatter.Combine(
			c.formatter.Usage("/learn [topic] [fact...]"),
			c.formatter.Examples([]string{
				"/learn deploys production deploys happen from the release branch",
				"/learn oncall the pager handle is #ops-pager",
			}),
		), nil
	}

	topic := args[0]
	fact := strings.Join(args[1:], " ")
	if err := c.knowledge.SaveFact(ctx, topic, fact); err != nil {
		return "", fmt.Errorf("failed to save fact: %w", err)
	}

	return c.formatter.Success(fmt.Sprintf("Learned fact under `%s`", topic)), nil
}
