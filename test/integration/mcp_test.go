//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sandevgo/conductor/internal/tools"
	"github.com/sandevgo/conductor/pkg/log"
)

// Exercises a real MCP server over stdio. Point MCP_TEST_CONFIG at an
// mcp_config.json with at least one server before running.
func TestMCPServerRoundTrip(t *testing.T) {
	path := os.Getenv("MCP_TEST_CONFIG")
	if path == "" {
		t.Skip("MCP_TEST_CONFIG not set")
	}

	ctx, flush := log.NewContextWithLogger(context.Background(), true)
	defer flush()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cfg, err := tools.LoadMCPConfig(path)
	if err != nil {
		t.Fatalf("failed to load mcp config: %v", err)
	}
	if len(cfg.MCPServers) == 0 {
		t.Fatal("mcp config has no servers")
	}

	reg := tools.NewRegistry()
	for name, serverCfg := range cfg.MCPServers {
		source, err := tools.ConnectMCP(ctx, name, serverCfg)
		if err != nil {
			t.Fatalf("failed to connect %s: %v", name, err)
		}
		defer source.Close()

		count, err := source.RegisterTools(ctx, reg)
		if err != nil {
			t.Fatalf("failed to register tools from %s: %v", name, err)
		}
		t.Logf("server %s registered %d tools", name, count)
	}

	if len(reg.List()) == 0 {
		t.Fatal("no tools registered from any server")
	}
	for _, tool := range reg.List() {
		if tool.Service == "" {
			t.Errorf("tool %s has no originating service", tool.Name)
		}
	}
}
