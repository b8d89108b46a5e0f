package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/internal/guard"
	"github.com/sandevgo/conductor/internal/models"
	"github.com/sandevgo/conductor/internal/tools"
)

type fakeClearer struct {
	cleared []string
}

func (f *fakeClearer) ClearSession(id string) {
	f.cleared = append(f.cleared, id)
}

type fakeFactWriter struct {
	topics []string
	facts  []string
	err    error
}

func (f *fakeFactWriter) SaveFact(ctx context.Context, topic, fact string) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.facts = append(f.facts, fact)
	return nil
}

func newTestRouter(t *testing.T) (*Router, *models.Registry, *guard.Pipeline, *fakeClearer) {
	t.Helper()

	modelReg := models.NewRegistry(core.ModelConfig{ID: "gpt-4o-mini", Provider: "openai", SupportsTools: true})
	modelReg.Register(core.ModelConfig{ID: "llama3", Provider: "ollama"})

	toolReg := tools.NewRegistry()
	require.NoError(t, toolReg.Register(core.Tool{
		Name:        "get_time",
		Description: "Returns the current time.",
		Tags:        []string{"time"},
		Service:     "system",
	}))

	guardrails := guard.NewPipeline(guard.NewRedaction())
	clearer := &fakeClearer{}

	return NewRouter(modelReg, toolReg, guardrails, clearer, &fakeFactWriter{}), modelReg, guardrails, clearer
}

func TestRouter_IgnoresPlainText(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	_, handled := router.Execute(context.Background(), "s1", "what time is it?")
	assert.False(t, handled)
}

func TestRouter_UnknownCommand(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	msg, handled := router.Execute(context.Background(), "s1", "/bogus")
	assert.True(t, handled)
	assert.Contains(t, msg, "/bogus")
}

func TestRouter_ModelSwitch(t *testing.T) {
	router, modelReg, _, _ := newTestRouter(t)

	msg, handled := router.Execute(context.Background(), "s1", "/model llama3")
	require.True(t, handled)
	assert.Contains(t, msg, "llama3")
	assert.Equal(t, "llama3", modelReg.Active().ID)

	// Switching to an unknown model reports an error and keeps the
	// previous selection.
	msg, handled = router.Execute(context.Background(), "s1", "/model nonexistent")
	require.True(t, handled)
	assert.Contains(t, msg, "Error")
	assert.Equal(t, "llama3", modelReg.Active().ID)
}

func TestRouter_ModelsListMarksActive(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	msg, handled := router.Execute(context.Background(), "s1", "/models")
	require.True(t, handled)
	assert.Contains(t, msg, "gpt-4o-mini")
	assert.Contains(t, msg, "llama3")
	assert.Contains(t, msg, "active")
}

func TestRouter_ToolsFilters(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	msg, handled := router.Execute(context.Background(), "s1", "/tools")
	require.True(t, handled)
	assert.Contains(t, msg, "get_time")

	msg, _ = router.Execute(context.Background(), "s1", "/tools time")
	assert.Contains(t, msg, "get_time")

	msg, _ = router.Execute(context.Background(), "s1", "/tools @system")
	assert.Contains(t, msg, "get_time")

	msg, _ = router.Execute(context.Background(), "s1", "/tools nosuchtag")
	assert.Contains(t, msg, "no tools matched")
}

func TestRouter_GuardToggle(t *testing.T) {
	router, _, guardrails, _ := newTestRouter(t)

	msg, handled := router.Execute(context.Background(), "s1", "/guard off redaction")
	require.True(t, handled)
	assert.Contains(t, msg, "disabled")

	enabled, err := guardrails.PolicyState("redaction")
	require.NoError(t, err)
	assert.False(t, enabled)

	msg, _ = router.Execute(context.Background(), "s1", "/guard on nosuchpolicy")
	assert.Contains(t, msg, "Error")
}

func TestRouter_ClearUsesSessionID(t *testing.T) {
	router, _, _, clearer := newTestRouter(t)

	_, handled := router.Execute(context.Background(), "chat-42", "/clear")
	require.True(t, handled)
	assert.Equal(t, []string{"chat-42"}, clearer.cleared)
}

func TestRouter_HelpListsEverything(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	msg, handled := router.Execute(context.Background(), "s1", "/help")
	require.True(t, handled)
	for _, name := range []string{"/model", "/models", "/tools", "/guard", "/clear", "/learn", "/help"} {
		assert.Contains(t, msg, name)
	}
}

func TestLearnCommand_SavesFact(t *testing.T) {
	writer := &fakeFactWriter{}
	cmd := NewLearnCommand(writer)

	msg, err := cmd.Execute(context.Background(), "s1", []string{"deploys", "releases", "ship", "on", "fridays"})
	require.NoError(t, err)
	assert.Contains(t, msg, "deploys")
	require.Equal(t, []string{"deploys"}, writer.topics)
	require.Equal(t, []string{"releases ship on fridays"}, writer.facts)

	// Too few arguments shows usage instead of writing.
	msg, err = cmd.Execute(context.Background(), "s1", []string{"deploys"})
	require.NoError(t, err)
	assert.Contains(t, msg, "Usage")
	assert.Len(t, writer.topics, 1)
}

func TestLearnCommand_WriteFailureReported(t *testing.T) {
	writer := &fakeFactWriter{err: errors.New("disk full")}
	router := New([]core.Command{NewLearnCommand(writer)})

	msg, handled := router.Execute(context.Background(), "s1", "/learn oncall pager is #ops")
	require.True(t, handled)
	assert.Contains(t, msg, "Error")
	assert.Contains(t, msg, "disk full")
}
