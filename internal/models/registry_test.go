package models

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/conductor/internal/core"
)

type stubBackend struct {
	resp  *core.BackendResponse
	err   error
	calls int
	opts  core.InvokeOptions
}

func (s *stubBackend) Invoke(ctx context.Context, prompt string, tools []core.ToolDeclaration, history []core.Turn, opts core.InvokeOptions) (*core.BackendResponse, error) {
	s.calls++
	s.opts = opts
	return s.resp, s.err
}

func defaultConfig() core.ModelConfig {
	return core.ModelConfig{ID: "gpt-4o-mini", Provider: "openai", SupportsTools: true, MaxContextTokens: 128000}
}

func TestRegistry_SetActiveUnknownKeepsPrevious(t *testing.T) {
	r := NewRegistry(defaultConfig())
	r.Register(core.ModelConfig{ID: "llama3", Provider: "ollama"})

	require.True(t, r.SetActive("llama3"))
	require.False(t, r.SetActive("nonexistent"))

	assert.Equal(t, "llama3", r.Active().ID)
}

func TestRegistry_ActiveFallsBackToDefault(t *testing.T) {
	r := NewRegistry(defaultConfig())

	// Force a stale active pointer.
	r.mu.Lock()
	r.activeID = "deleted-model"
	r.mu.Unlock()

	assert.Equal(t, defaultConfig().ID, r.Active().ID)
}

func TestRegistry_CallBackendRoutesByProvider(t *testing.T) {
	r := NewRegistry(defaultConfig())
	openai := &stubBackend{resp: &core.BackendResponse{Text: "from openai"}}
	ollama := &stubBackend{resp: &core.BackendResponse{Text: "from ollama"}}
	r.RegisterBackend("openai", openai)
	r.RegisterBackend("ollama", ollama)
	r.Register(core.ModelConfig{ID: "llama3", Provider: "ollama"})

	resp, err := r.CallBackend(context.Background(), "hi", nil, nil, core.InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from openai", resp.Text)
	assert.Equal(t, "gpt-4o-mini", openai.opts.Model)

	require.True(t, r.SetActive("llama3"))
	resp, err = r.CallBackend(context.Background(), "hi", nil, nil, core.InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from ollama", resp.Text)
	assert.Equal(t, 1, openai.calls)
	assert.Equal(t, 1, ollama.calls)
}

func TestRegistry_CallBackendNoBackendRegistered(t *testing.T) {
	r := NewRegistry(defaultConfig())

	_, err := r.CallBackend(context.Background(), "hi", nil, nil, core.InvokeOptions{})
	require.Error(t, err)

	var be *core.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, core.BackendUnavailable, be.Kind)
	assert.ErrorIs(t, err, core.ErrNoBackend)
}

func TestRegistry_CallBackendClassifiesErrors(t *testing.T) {
	tests := []struct {
		name     string
		backend  *stubBackend
		wantKind core.BackendErrorKind
	}{
		{
			name:     "timeout",
			backend:  &stubBackend{err: context.DeadlineExceeded},
			wantKind: core.BackendTimeout,
		},
		{
			name:     "transport failure",
			backend:  &stubBackend{err: errors.New("connection refused")},
			wantKind: core.BackendUnavailable,
		},
		{
			name:     "nil response",
			backend:  &stubBackend{},
			wantKind: core.BackendMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(defaultConfig())
			r.RegisterBackend("openai", tt.backend)

			_, err := r.CallBackend(context.Background(), "hi", nil, nil, core.InvokeOptions{})
			require.Error(t, err)

			var be *core.BackendError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.wantKind, be.Kind)
		})
	}
}

func TestRegistry_CallBackendPreservesTypedErrors(t *testing.T) {
	typed := &core.BackendError{Kind: core.BackendMalformed, Provider: "openai", Model: "gpt-4o-mini"}
	r := NewRegistry(defaultConfig())
	r.RegisterBackend("openai", &stubBackend{err: typed})

	_, err := r.CallBackend(context.Background(), "hi", nil, nil, core.InvokeOptions{})

	var be *core.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, core.BackendMalformed, be.Kind)
}
