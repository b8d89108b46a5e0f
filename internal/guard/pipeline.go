// Package guard applies ordered, individually toggleable content policies
// to text entering and leaving the model.
package guard

import (
	"context"
	"sync"

	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/pkg/log"
)

// Stage tells which side of the model call a policy applies to.
type Stage int

const (
	StageInput Stage = 1 << iota
	StageOutput
	StageBoth = StageInput | StageOutput
)

// Result is the outcome of one policy check or a whole pipeline pass.
// Non-blocking policies may rewrite Text; the first block wins.
type Result struct {
	Text    string
	Blocked bool
	Reason  string
}

// CheckFunc must be pure: same text in, same result out.
type CheckFunc func(text string) Result

type Policy struct {
	Name  string
	Stage Stage
	Check CheckFunc
}

type policyState struct {
	Policy
	enabled bool
}

// PolicyInfo is the introspection view of one registered policy.
type PolicyInfo struct {
	Name    string
	Stage   Stage
	Enabled bool
}

// Pipeline runs policies in registration order. Toggles are safe for
// concurrent use with in-flight filtering.
type Pipeline struct {
	mu       sync.RWMutex
	policies []*policyState
}

// NewPipeline registers the given policies, all enabled.
func NewPipeline(policies ...Policy) *Pipeline {
	p := &Pipeline{}
	for _, pol := range policies {
		p.policies = append(p.policies, &policyState{Policy: pol, enabled: true})
	}
	return p
}

// FilterInput runs all enabled input policies. The first block
// short-circuits the rest and must prevent any model call.
func (p *Pipeline) FilterInput(ctx context.Context, text string) Result {
	return p.run(ctx, StageInput, text)
}

// FilterOutput runs all enabled output policies on model-generated text
// before it reaches the caller or memory.
func (p *Pipeline) FilterOutput(ctx context.Context, text string) Result {
	return p.run(ctx, StageOutput, text)
}

func (p *Pipeline) run(ctx context.Context, stage Stage, text string) Result {
	// Snapshot by value: enabled flags are mutated by SetPolicy under the
	// write lock, so the shared structs must not be read after RUnlock.
	p.mu.RLock()
	snapshot := make([]policyState, 0, len(p.policies))
	for _, pol := range p.policies {
		snapshot = append(snapshot, *pol)
	}
	p.mu.RUnlock()

	current := text
	for _, pol := range snapshot {
		if !pol.enabled || pol.Stage&stage == 0 {
			continue
		}

		res := pol.Check(current)
		if res.Blocked {
			log.FromCtx(ctx).Info().
				Str("policy", pol.Name).
				Str("reason", res.Reason).
				Msg("guardrail blocked text")
			return Result{Text: current, Blocked: true, Reason: res.Reason}
		}
		current = res.Text
	}
	return Result{Text: current}
}

// SetPolicy toggles a policy at runtime. Unknown names are an error,
// not a crash.
func (p *Pipeline) SetPolicy(name string, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pol := range p.policies {
		if pol.Name == name {
			pol.enabled = enabled
			return nil
		}
	}
	return core.ErrUnknownPolicy
}

// PolicyState reports whether a policy is enabled.
func (p *Pipeline) PolicyState(name string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, pol := range p.policies {
		if pol.Name == name {
			return pol.enabled, nil
		}
	}
	return false, core.ErrUnknownPolicy
}

// Policies lists every registered policy in order.
func (p *Pipeline) Policies() []PolicyInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]PolicyInfo, 0, len(p.policies))
	for _, pol := range p.policies {
		out = append(out, PolicyInfo{Name: pol.Name, Stage: pol.Stage, Enabled: pol.enabled})
	}
	return out
}
