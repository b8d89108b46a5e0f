package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/conductor/internal/core"
)

func echoHandler(reply string) core.ToolHandler {
	return core.ToolHandlerFunc(func(ctx context.Context, args map[string]any) (string, error) {
		return reply, nil
	})
}

func testTool(name, service string, tags ...string) core.Tool {
	return core.Tool{
		Name:        name,
		Description: "test tool " + name,
		Parameters:  json.RawMessage(`{"type":"object"}`),
		Handler:     echoHandler("ok"),
		Tags:        tags,
		Service:     service,
	}
}

func TestRegistry_DuplicateNameRejected(t *testing.T) {
	r := NewRegistry()

	first := testTool("get_time", "system", "time")
	require.NoError(t, r.Register(first))

	err := r.Register(testTool("get_time", "other"))
	assert.ErrorIs(t, err, core.ErrToolConflict)

	// First registration stays retrievable unchanged.
	got, ok := r.Get("get_time")
	require.True(t, ok)
	assert.Equal(t, "system", got.Service)
	assert.Equal(t, []string{"time"}, got.Tags)
}

func TestRegistry_GetAbsentIsNormal(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_DeclarationsReflectCatalog(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterAll(
		testTool("a", "svc1"),
		testTool("b", "svc1"),
		testTool("c", "svc2"),
	))

	decls := r.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "a", decls[0].Name)
	assert.Equal(t, "b", decls[1].Name)
	assert.Equal(t, "c", decls[2].Name)

	r.Unregister("b")
	decls = r.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, "a", decls[0].Name)
	assert.Equal(t, "c", decls[1].Name)
}

func TestRegistry_FilteredViews(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterAll(
		testTool("nav", "ui", "ui"),
		testTool("fetch_url", "web", "web", "network"),
		testTool("get_time", "system", "time"),
	))

	byTag := r.ByTag("network")
	require.Len(t, byTag, 1)
	assert.Equal(t, "fetch_url", byTag[0].Name)

	bySvc := r.ByService("ui")
	require.Len(t, bySvc, 1)
	assert.Equal(t, "nav", bySvc[0].Name)

	assert.Empty(t, r.ByTag("nope"))
	assert.Empty(t, r.ByService("nope"))
}

func TestRegistry_ValidateArgs(t *testing.T) {
	r := NewRegistry()
	tool := core.Tool{
		Name: "fetch_url",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"url": { "type": "string" }
			},
			"required": ["url"]
		}`),
		Handler: echoHandler("ok"),
	}
	require.NoError(t, r.Register(tool))

	assert.NoError(t, r.ValidateArgs("fetch_url", map[string]any{"url": "https://example.com"}))
	assert.Error(t, r.ValidateArgs("fetch_url", map[string]any{}))
	assert.Error(t, r.ValidateArgs("fetch_url", map[string]any{"url": 42}))
	assert.ErrorIs(t, r.ValidateArgs("missing", nil), core.ErrUnknownTool)
}

func TestRegistry_BadSchemaRejectedAtRegistration(t *testing.T) {
	r := NewRegistry()
	err := r.Register(core.Tool{
		Name:       "broken",
		Parameters: json.RawMessage(`{"type": "object", "properties": 42}`),
		Handler:    echoHandler("ok"),
	})
	assert.Error(t, err)

	_, ok := r.Get("broken")
	assert.False(t, ok)
}
