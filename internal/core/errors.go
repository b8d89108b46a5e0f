package core

import (
	"errors"
	"fmt"
)

var (
	// ErrToolConflict is returned when registering a tool whose name is taken.
	ErrToolConflict = errors.New("tool name already registered")
	// ErrUnknownTool is returned when a requested tool is not in the catalog.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrUnknownModel is returned when a model identifier has no config.
	ErrUnknownModel = errors.New("unknown model identifier")
	// ErrUnknownPolicy is returned when toggling a guardrail that does not exist.
	ErrUnknownPolicy = errors.New("unknown guardrail policy")
	// ErrNoBackend is returned when the active config's provider has no backend.
	ErrNoBackend = errors.New("no backend registered for provider")
)

// BackendErrorKind classifies backend failures.
type BackendErrorKind string

const (
	BackendUnavailable BackendErrorKind = "unavailable"
	BackendTimeout     BackendErrorKind = "timeout"
	BackendMalformed   BackendErrorKind = "malformed_response"
)

// BackendError wraps a failure from a model backend with enough context
// to diagnose it (provider, model, kind) without leaking request contents.
type BackendError struct {
	Kind     BackendErrorKind
	Provider string
	Model    string
	Err      error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("backend %s (%s/%s)", e.Kind, e.Provider, e.Model)
	}
	return fmt.Sprintf("backend %s (%s/%s): %v", e.Kind, e.Provider, e.Model, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ToolExecutionError records a handler failure. Arguments are deliberately
// not included; they may contain sensitive values.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}
