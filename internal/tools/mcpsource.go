package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"

	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/pkg/log"
)

// ServerConfig is one entry in mcp_config.json.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// MCPConfig mirrors the conventional mcpServers config file layout.
type MCPConfig struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

// LoadMCPConfig reads mcp_config.json; a missing file yields an empty config.
func LoadMCPConfig(path string) (*MCPConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &MCPConfig{MCPServers: map[string]ServerConfig{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mcp config: %w", err)
	}

	var cfg MCPConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mcp config: %w", err)
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = map[string]ServerConfig{}
	}
	return &cfg, nil
}

// MCPSource bridges one MCP server's tools into the registry. Discovered
// tools get a proxy handler that forwards calls over the MCP connection.
type MCPSource struct {
	name     string
	cli      *client.Client
	callTime time.Duration
}

func ConnectMCP(ctx context.Context, name string, cfg ServerConfig) (*MCPSource, error) {
	var env []string
	for k, v := range cfg.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	cli, err := client.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp client: %w", err)
	}

	if err = cli.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start mcp client: %w", err)
	}

	req := mcpproto.InitializeRequest{}
	req.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	req.Params.Capabilities = mcpproto.ClientCapabilities{}
	req.Params.ClientInfo = mcpproto.Implementation{
		Name:    core.AppName,
		Version: core.AppVersion,
	}

	if _, err := cli.Initialize(ctx, req); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to initialize mcp client: %w", err)
	}

	return &MCPSource{
		name:     name,
		cli:      cli,
		callTime: 2 * time.Minute,
	}, nil
}

// RegisterTools discovers the server's tools and registers each one.
// Name conflicts with already-registered tools are logged and skipped.
func (s *MCPSource) RegisterTools(ctx context.Context, reg *Registry) (int, error) {
	listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := s.cli.ListTools(listCtx, mcpproto.ListToolsRequest{})
	if err != nil {
		return 0, fmt.Errorf("list tools from %s: %w", s.name, err)
	}

	registered := 0
	for _, t := range resp.Tools {
		schemaBytes, err := json.Marshal(t.InputSchema)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("tool", t.Name).Msg("skipping tool with unusable schema")
			continue
		}

		err = reg.Register(core.Tool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaBytes,
			Handler:     s.handler(t.Name),
			Tags:        []string{"mcp"},
			Service:     s.name,
		})
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("tool", t.Name).Str("server", s.name).
				Msg("skipping mcp tool")
			continue
		}
		registered++
	}
	return registered, nil
}

func (s *MCPSource) handler(toolName string) core.ToolHandler {
	return core.ToolHandlerFunc(func(ctx context.Context, args map[string]any) (string, error) {
		req := mcpproto.CallToolRequest{}
		req.Params.Name = toolName
		req.Params.Arguments = args

		callCtx, cancel := context.WithTimeout(ctx, s.callTime)
		defer cancel()

		res, err := s.cli.CallTool(callCtx, req)
		if err != nil {
			return "", err
		}
		if res.IsError {
			return "", fmt.Errorf("mcp tool %s reported an error", toolName)
		}

		var output string
		for _, content := range res.Content {
			if text, ok := content.(mcpproto.TextContent); ok {
				output += text.Text + "\n"
			} else if textPtr, ok := content.(*mcpproto.TextContent); ok {
				output += textPtr.Text + "\n"
			}
		}
		return output, nil
	})
}

func (s *MCPSource) Close() error {
	return s.cli.Close()
}
