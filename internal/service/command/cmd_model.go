package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/internal/models"
)

type ModelCommand struct {
	models    *models.Registry
	formatter *ResponseFormatter
}

func NewModelCommand(models *models.Registry) *ModelCommand {
	return &ModelCommand{
		models:    models,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show or change the active model"
}

func (c *ModelCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		active := c.models.Active()
		return c.formatter.Combine(
			c.formatter.Info("Active Model"),
			c.formatter.Label("Provider", active.Provider),
			c.formatter.Label("Model", active.ID),
			c.formatter.Label("Tools", fmt.Sprintf("%t", active.SupportsTools)),
			c.formatter.Usage("/model [model-id]"),
			c.formatter.Tip("Use /models to list registered models"),
		), nil
	}

	if ok := c.models.SetActive(args[0]); !ok {
		return "", fmt.Errorf("%w: %s", core.ErrUnknownModel, args[0])
	}

	active := c.models.Active()
	return c.formatter.Success(fmt.Sprintf("Model changed to: `%s/%s`", active.Provider, active.ID)), nil
}

type ModelsCommand struct {
	models    *models.Registry
	formatter *ResponseFormatter
}

func NewModelsCommand(models *models.Registry) *ModelsCommand {
	return &ModelsCommand{
		models:    models,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelsCommand) Name() string {
	return "models"
}

func (c *ModelsCommand) Description() string {
	return "List registered models"
}

func (c *ModelsCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	configs := c.models.List()
	active := c.models.Active()

	items := make([]string, len(configs))
	for i, cfg := range configs {
		marker := ""
		if cfg.ID == active.ID {
			marker = "  ← active"
		}
		items[i] = fmt.Sprintf("**%s** (%s)%s", cfg.ID, cfg.Provider, marker)
	}

	return c.formatter.Combine(
		c.formatter.Info("Registered Models"),
		c.formatter.List(items),
		c.formatter.Tip("Switch with /model [model-id]"),
	), nil
}
