package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/conductor/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"CONDUCTOR_RUNTIME_PATH" envDefault:".conductor"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"true"`

	// Context Management
	HistoryLimit       int `env:"HISTORY_LIMIT" envDefault:"30"`
	ContextTokenBudget int `env:"CONTEXT_TOKEN_BUDGET" envDefault:"1500"`

	// Step timeouts
	ModelTimeout time.Duration `env:"MODEL_TIMEOUT" envDefault:"90s"`
	ToolTimeout  time.Duration `env:"TOOL_TIMEOUT" envDefault:"2m"`

	// Input guardrail phrase blocklist
	BlockedPhrases []string `env:"BLOCKED_PHRASES" envSeparator:"," envDefault:""`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	// Same anchor as GetRuntimePath, so .env, knowledge.db and
	// mcp_config.json all live in one directory.
	c.RuntimePath = GetRuntimePath()
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetKnowledgeDBPath() string {
	return filepath.Join(c.RuntimePath, "knowledge.db")
}

func (c AppConfig) GetMCPConfigPath() string {
	return filepath.Join(c.RuntimePath, "mcp_config.json")
}
