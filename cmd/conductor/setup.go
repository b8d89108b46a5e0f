package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/conductor/internal/config"
	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/internal/engine"
	"github.com/sandevgo/conductor/internal/guard"
	"github.com/sandevgo/conductor/internal/memory"
	"github.com/sandevgo/conductor/internal/models"
	"github.com/sandevgo/conductor/internal/providers/llm"
	"github.com/sandevgo/conductor/internal/service/command"
	"github.com/sandevgo/conductor/internal/storage/sqlite"
	"github.com/sandevgo/conductor/internal/tools"
	"github.com/sandevgo/conductor/internal/tools/builtin"
	"github.com/sandevgo/conductor/internal/transport/cli"
	"github.com/sandevgo/conductor/internal/transport/telegram"
	"github.com/sandevgo/conductor/pkg/log"
	"github.com/sandevgo/conductor/pkg/srv"
)

const maxResponseRunes = 8000

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	providerCfg := config.NewProviderConfig(ctx)

	if err := os.MkdirAll(appCfg.RuntimePath, 0755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create runtime directory")
	}

	// 2. Knowledge storage
	db, err := sqlite.NewDB(ctx, appCfg.GetKnowledgeDBPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize knowledge db")
	}
	services = append(services, srv.NewCleanup(db.Close))
	knowledgeRepo := sqlite.NewKnowledgeRepo(db)

	// 3. Model registry and backends
	modelReg, err := initModels(ctx, providerCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize model registry")
	}

	// 4. Tool catalog
	toolReg, mcpCleanups := initTools(ctx, appCfg)
	services = append(services, mcpCleanups...)

	// 5. Guardrails
	guardrails := initGuardrails(appCfg)

	// 6. Context assembly
	assembler := memory.NewContextBuilder(ctx, staticCapabilities(toolReg), knowledgeRepo, appCfg.ContextTokenBudget)

	// 7. Orchestration engine
	eng := engine.New(modelReg, toolReg, guardrails, assembler, engine.Options{
		ModelTimeout: appCfg.ModelTimeout,
		ToolTimeout:  appCfg.ToolTimeout,
		HistoryLimit: appCfg.HistoryLimit,
	})

	// 8. Admin commands
	router := command.NewRouter(modelReg, toolReg, guardrails, eng, knowledgeRepo)

	// 9. Transports
	transports, err := initTransports(ctx, appCfg, eng, router)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		logger.Warn().Msg("no transport enabled, set ENABLE_CLI or ENABLE_TELEGRAM")
	}
	services = append(services, transports...)

	return services
}

func initModels(ctx context.Context, cfg *config.ProviderConfig) (*models.Registry, error) {
	defaultCfg, ok := knownModel(cfg.Model)
	if !ok {
		// Unknown IDs get conservative defaults rather than a refusal.
		defaultCfg = core.ModelConfig{
			ID:            cfg.Model,
			Provider:      cfg.Provider,
			SupportsTools: true,
		}
	}
	reg := models.NewRegistry(defaultCfg)

	for _, mc := range modelCatalog() {
		if mc.ID != defaultCfg.ID {
			reg.Register(mc)
		}
	}

	// One backend per provider label referenced by a registered config.
	providers := map[string]bool{defaultCfg.Provider: true}
	for _, mc := range reg.List() {
		providers[mc.Provider] = true
	}
	for provider := range providers {
		backend, err := llm.NewBackend(ctx, provider, cfg)
		if err != nil {
			return nil, fmt.Errorf("backend for provider %s: %w", provider, err)
		}
		reg.RegisterBackend(provider, backend)
	}
	return reg, nil
}

// modelCatalog lists the configurations selectable at runtime via /model.
func modelCatalog() []core.ModelConfig {
	return []core.ModelConfig{
		{
			ID: "gpt-4o-mini", Provider: "openai",
			SupportsTools: true, SupportsVision: true,
			MaxContextTokens: 128000,
			InputCostPer1K:   0.00015, OutputCostPer1K: 0.0006,
		},
		{
			ID: "gpt-4o", Provider: "openai",
			SupportsTools: true, SupportsVision: true,
			MaxContextTokens: 128000,
			InputCostPer1K:   0.0025, OutputCostPer1K: 0.01,
		},
		{
			ID: "llama3.1", Provider: "ollama",
			SupportsTools:    true,
			MaxContextTokens: 128000,
		},
		{
			ID: "qwen2.5-coder", Provider: "ollama",
			MaxContextTokens: 32768,
		},
	}
}

func knownModel(id string) (core.ModelConfig, bool) {
	for _, mc := range modelCatalog() {
		if mc.ID == id {
			return mc, true
		}
	}
	return core.ModelConfig{}, false
}

func initTools(ctx context.Context, cfg *config.AppConfig) (*tools.Registry, []srv.Service) {
	logger := log.FromCtx(ctx)
	reg := tools.NewRegistry()

	builtins := builtin.NewClock().Tools()
	builtins = append(builtins, builtin.NewFetch().Tools()...)
	builtins = append(builtins, builtin.NewNavigator(logSink()).Tools()...)
	if err := reg.RegisterAll(builtins...); err != nil {
		logger.Fatal().Err(err).Msg("failed to register builtin tools")
	}

	// External MCP servers extend the catalog; a down server is not fatal.
	var cleanups []srv.Service
	mcpCfg, err := tools.LoadMCPConfig(cfg.GetMCPConfigPath())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load mcp config, skipping external tools")
		return reg, nil
	}

	for name, serverCfg := range mcpCfg.MCPServers {
		source, err := tools.ConnectMCP(ctx, name, serverCfg)
		if err != nil {
			logger.Warn().Err(err).Str("server", name).Msg("failed to connect mcp server")
			continue
		}
		count, err := source.RegisterTools(ctx, reg)
		if err != nil {
			logger.Warn().Err(err).Str("server", name).Msg("failed to list mcp tools")
			_ = source.Close()
			continue
		}
		logger.Info().Str("server", name).Int("tools", count).Msg("mcp server connected")
		cleanups = append(cleanups, srv.NewCleanup(source.Close))
	}
	return reg, cleanups
}

// logSink records navigation requests; headless transports have no
// screen to move.
func logSink() builtin.NavigationSinkFunc {
	return func(ctx context.Context, target string) error {
		log.FromCtx(ctx).Info().Str("target", target).Msg("navigation requested")
		return nil
	}
}

func initGuardrails(cfg *config.AppConfig) *guard.Pipeline {
	policies := []guard.Policy{
		guard.NewRedaction(),
		guard.NewHTMLSanitizer(),
		guard.NewMaxLength(maxResponseRunes),
	}
	if len(cfg.BlockedPhrases) > 0 {
		policies = append([]guard.Policy{guard.NewBlocklist(cfg.BlockedPhrases)}, policies...)
	}
	return guard.NewPipeline(policies...)
}

func staticCapabilities(reg *tools.Registry) []string {
	caps := []string{
		"You are Conductor, an assistant that can call registered tools to act on the user's behalf.",
		"Prefer calling a tool over guessing when one matches the request.",
	}
	for _, tool := range reg.List() {
		caps = append(caps, fmt.Sprintf("Tool %s: %s", tool.Name, tool.Description))
	}
	return caps
}

func initTransports(ctx context.Context, cfg *config.AppConfig, eng *engine.Engine, router core.CmdRouter) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, eng, router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableCLI {
		repl, err := cli.NewReadLine(eng, router, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, repl)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
