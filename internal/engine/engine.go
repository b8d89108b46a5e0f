// Package engine drives one command through input filtering, context
// assembly, model inference, tool dispatch and output filtering.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/internal/guard"
	"github.com/sandevgo/conductor/internal/memory"
	"github.com/sandevgo/conductor/internal/models"
	"github.com/sandevgo/conductor/internal/tools"
)

// Options tune per-command behavior. Zero values fall back to defaults.
type Options struct {
	// ModelTimeout bounds each backend call; ToolTimeout bounds each
	// handler invocation. Both surface as ordinary backend/tool failures.
	ModelTimeout time.Duration
	ToolTimeout  time.Duration
	// HistoryLimit bounds each session's memory window.
	HistoryLimit int
	// UITags marks tools whose raw result goes straight back to the
	// caller with no follow-up summarization.
	UITags []string
}

func (o Options) withDefaults() Options {
	if o.ModelTimeout <= 0 {
		o.ModelTimeout = 90 * time.Second
	}
	if o.ToolTimeout <= 0 {
		o.ToolTimeout = 2 * time.Minute
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = memory.DefaultLimit
	}
	if o.UITags == nil {
		o.UITags = []string{"ui"}
	}
	return o
}

// Engine composes the four registries into one request/response cycle.
// Registries are shared, read-mostly state; each session owns its memory.
type Engine struct {
	models    *models.Registry
	tools     *tools.Registry
	guard     *guard.Pipeline
	assembler *memory.ContextBuilder
	opts      Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// Session is one independent conversation. Sessions never share memory.
type Session struct {
	ID     string
	window *memory.Window

	// One command at a time per session; concurrent commands on the
	// same session would interleave turns.
	mu sync.Mutex
}

func New(modelReg *models.Registry, toolReg *tools.Registry, guardrails *guard.Pipeline, assembler *memory.ContextBuilder, opts Options) *Engine {
	return &Engine{
		models:    modelReg,
		tools:     toolReg,
		guard:     guardrails,
		assembler: assembler,
		opts:      opts.withDefaults(),
		sessions:  make(map[string]*Session),
	}
}

// Session returns the session for id, creating it on first use.
func (e *Engine) Session(id string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.sessions[id]; ok {
		return s
	}
	s := &Session{
		ID:     id,
		window: memory.NewWindow(e.opts.HistoryLimit),
	}
	e.sessions[id] = s
	return s
}

// ClearSession empties a session's memory for a fresh conversation.
func (e *Engine) ClearSession(id string) {
	e.Session(id).window.Clear()
}

// History exposes a snapshot of a session's turns.
func (e *Engine) History(id string) []core.Turn {
	return e.Session(id).window.History()
}

// Models exposes the shared model registry for admin surfaces.
func (e *Engine) Models() *models.Registry {
	return e.models
}

// Tools exposes the shared tool catalog for admin surfaces.
func (e *Engine) Tools() *tools.Registry {
	return e.tools
}

// Guard exposes the guardrail pipeline for admin surfaces.
func (e *Engine) Guard() *guard.Pipeline {
	return e.guard
}

// Handle processes one command for the session and always produces a
// user-facing message; recoverable failures become messages, not errors.
func (e *Engine) Handle(ctx context.Context, sessionID, input string) (string, error) {
	sess := e.Session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cmd := &command{engine: e, session: sess, input: input}
	return cmd.run(ctx)
}
