// Package models holds the catalog of backend model configurations and
// routes inference calls to the backend serving the active one.
package models

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sandevgo/conductor/internal/core"
)

type Registry struct {
	mu        sync.RWMutex
	configs   map[string]core.ModelConfig
	backends  map[string]core.Backend // keyed by provider label
	activeID  string
	defaultID string
}

// NewRegistry creates a registry whose fallback is defaultCfg. The default
// is also the initial active model.
func NewRegistry(defaultCfg core.ModelConfig) *Registry {
	r := &Registry{
		configs:   make(map[string]core.ModelConfig),
		backends:  make(map[string]core.Backend),
		defaultID: defaultCfg.ID,
		activeID:  defaultCfg.ID,
	}
	r.configs[defaultCfg.ID] = defaultCfg
	return r
}

// Register adds or overwrites a config under its identifier.
func (r *Registry) Register(cfg core.ModelConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.ID] = cfg
}

// RegisterBackend binds a backend implementation to a provider label.
func (r *Registry) RegisterBackend(provider string, backend core.Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[provider] = backend
}

// SetActive switches the active model. Unknown identifiers leave the
// active pointer untouched and report failure to the caller.
func (r *Registry) SetActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[id]; !ok {
		return false
	}
	r.activeID = id
	return true
}

// Active always resolves to a valid config. If the active identifier has
// gone stale it falls back to the default and logs the anomaly.
func (r *Registry) Active() core.ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeLocked()
}

func (r *Registry) activeLocked() core.ModelConfig {
	if cfg, ok := r.configs[r.activeID]; ok {
		return cfg
	}
	log.Warn().
		Str("model", r.activeID).
		Str("fallback", r.defaultID).
		Msg("active model has no config, using default")
	return r.configs[r.defaultID]
}

// Get looks up a config by identifier.
func (r *Registry) Get(id string) (core.ModelConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[id]
	return cfg, ok
}

// List returns a copy of every registered config.
func (r *Registry) List() []core.ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ModelConfig, 0, len(r.configs))
	for _, cfg := range r.configs {
		out = append(out, cfg)
	}
	return out
}

// CallBackend sends the prompt to the backend serving the active config.
//
// Precondition: when the active config does not advertise SupportsTools
// the caller must pass an empty tool list. The registry stays
// provider-agnostic and does not enforce this.
func (r *Registry) CallBackend(ctx context.Context, prompt string, tools []core.ToolDeclaration, history []core.Turn, opts core.InvokeOptions) (*core.BackendResponse, error) {
	r.mu.RLock()
	cfg := r.activeLocked()
	backend, ok := r.backends[cfg.Provider]
	r.mu.RUnlock()

	if !ok {
		return nil, &core.BackendError{
			Kind:     core.BackendUnavailable,
			Provider: cfg.Provider,
			Model:    cfg.ID,
			Err:      core.ErrNoBackend,
		}
	}

	opts.Model = cfg.ID
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	resp, err := backend.Invoke(ctx, prompt, tools, history, opts)
	if err != nil {
		return nil, classify(err, cfg)
	}
	if resp == nil {
		return nil, &core.BackendError{
			Kind:     core.BackendMalformed,
			Provider: cfg.Provider,
			Model:    cfg.ID,
			Err:      errors.New("empty response"),
		}
	}
	return resp, nil
}

// classify folds transport-level failures into the typed taxonomy.
// Backends that already return *core.BackendError pass through as-is.
func classify(err error, cfg core.ModelConfig) error {
	var be *core.BackendError
	if errors.As(err, &be) {
		return err
	}

	kind := core.BackendUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = core.BackendTimeout
	}
	return &core.BackendError{
		Kind:     kind,
		Provider: cfg.Provider,
		Model:    cfg.ID,
		Err:      err,
	}
}
