package command

import (
	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/internal/guard"
	"github.com/sandevgo/conductor/internal/models"
	"github.com/sandevgo/conductor/internal/tools"
)

func NewRouter(
	modelReg *models.Registry,
	toolReg *tools.Registry,
	guardrails *guard.Pipeline,
	sessions SessionClearer,
	knowledge FactWriter,
) *Router {
	router := New([]core.Command{
		NewModelCommand(modelReg),
		NewModelsCommand(modelReg),
		NewToolsCommand(toolReg),
		NewGuardCommand(guardrails),
		NewClearCommand(sessions),
		NewLearnCommand(knowledge),
	})
	router.commands["help"] = NewHelpCommand(router.ListCommands)
	return router
}
