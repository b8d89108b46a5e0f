package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/pkg/log"
)

// state names one stop in the command-processing machine. Modeling the
// follow-up call as a state (instead of recursion) makes "at most one
// follow-up per command" a visible invariant: stateFollowUp issues its
// backend call with an empty tool list, so it can only produce text.
type state int

const (
	stateInputFiltering state = iota
	stateContextAssembly
	stateModelInference
	stateToolDispatch
	stateFollowUp
	stateOutputFiltering
	stateDone
)

func (s state) String() string {
	switch s {
	case stateInputFiltering:
		return "input_filtering"
	case stateContextAssembly:
		return "context_assembly"
	case stateModelInference:
		return "model_inference"
	case stateToolDispatch:
		return "tool_dispatch"
	case stateFollowUp:
		return "follow_up_inference"
	case stateOutputFiltering:
		return "output_filtering"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// command carries the mutable state of one request/response cycle.
type command struct {
	engine  *Engine
	session *Session
	input   string

	clean    string      // input after guardrails
	enriched string      // assembled context + clean input
	history  []core.Turn // snapshot taken before this command's turns
	modelID  string

	call       *core.FunctionCall
	callText   string // assistant text accompanying the call, if any
	toolResult string

	pendingText string // text awaiting output filtering
	result      string // final user-facing message
}

func (c *command) run(ctx context.Context) (string, error) {
	logger := log.FromCtx(ctx)

	st := stateInputFiltering
	for st != stateDone {
		logger.Debug().
			Str("session", c.session.ID).
			Stringer("state", st).
			Msg("orchestrator step")

		var err error
		switch st {
		case stateInputFiltering:
			st = c.filterInput(ctx)
		case stateContextAssembly:
			st = c.assembleContext(ctx)
		case stateModelInference:
			st, err = c.modelInference(ctx)
		case stateToolDispatch:
			st = c.toolDispatch(ctx)
		case stateFollowUp:
			st = c.followUp(ctx)
		case stateOutputFiltering:
			st = c.filterOutput(ctx)
		}
		if err != nil {
			return "", err
		}
	}
	return c.result, nil
}

// filterInput gates the raw command. A block ends the cycle before any
// token is spent; memory only gets a note that the attempt happened.
func (c *command) filterInput(ctx context.Context) state {
	res := c.engine.guard.FilterInput(ctx, c.input)
	if res.Blocked {
		c.session.window.Add(core.Turn{
			Role:      core.RoleSystem,
			Content:   "request blocked by guardrail: " + res.Reason,
			Timestamp: time.Now(),
		})
		c.result = "Request blocked: " + res.Reason
		return stateDone
	}
	c.clean = res.Text
	return stateContextAssembly
}

// assembleContext snapshots history and prepends enrichment context to
// the prompt. History itself still travels to the backend unmodified.
func (c *command) assembleContext(ctx context.Context) state {
	c.history = c.session.window.History()
	c.enriched = c.clean
	if c.engine.assembler != nil {
		if block := c.engine.assembler.Assemble(ctx, c.history, c.clean); block != "" {
			c.enriched = block + "\n\n" + c.clean
		}
	}
	return stateModelInference
}

func (c *command) modelInference(ctx context.Context) (state, error) {
	logger := log.FromCtx(ctx)
	cfg := c.engine.models.Active()
	c.modelID = cfg.ID

	// Tool catalog only goes to backends that advertise support.
	var decls []core.ToolDeclaration
	if cfg.SupportsTools {
		decls = c.engine.tools.Declarations()
	}

	// Intent is recorded before the call so it survives inference failure.
	c.session.window.Add(core.Turn{
		Role:      core.RoleUser,
		Content:   c.clean,
		Timestamp: time.Now(),
	})

	resp, err := c.engine.models.CallBackend(ctx, c.enriched, decls, c.history, core.InvokeOptions{
		Timeout: c.engine.opts.ModelTimeout,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return stateDone, err
		}
		if errors.Is(err, core.ErrNoBackend) {
			// Nothing sensible to tell the user; this is a wiring bug.
			return stateDone, err
		}

		var be *core.BackendError
		kind := core.BackendUnavailable
		if errors.As(err, &be) {
			kind = be.Kind
		}
		logger.Error().Err(err).
			Str("model", cfg.ID).
			Str("kind", string(kind)).
			Msg("model inference failed")

		c.result = backendFailureMessage(kind)
		return stateDone, nil
	}

	if len(resp.FunctionCalls) > 0 {
		// Only the first call is honored; execution stays deterministic
		// and single-threaded per command.
		c.call = &resp.FunctionCalls[0]
		c.callText = resp.Text
		return stateToolDispatch, nil
	}

	c.pendingText = resp.Text
	return stateOutputFiltering, nil
}

func (c *command) toolDispatch(ctx context.Context) state {
	logger := log.FromCtx(ctx)
	name := c.call.Name

	tool, ok := c.engine.tools.Get(name)
	if !ok {
		logger.Warn().Str("tool", name).Str("model", c.modelID).Msg("model requested unknown tool")
		c.session.window.Add(core.Turn{
			Role:         core.RoleAssistant,
			Content:      fmt.Sprintf("Requested unknown tool %q.", name),
			FunctionCall: c.call,
			Timestamp:    time.Now(),
			Model:        c.modelID,
		})
		c.result = fmt.Sprintf("The model asked for tool %q, which is not available.", name)
		return stateDone
	}

	c.session.window.Add(core.Turn{
		Role:         core.RoleAssistant,
		Content:      c.callText,
		FunctionCall: c.call,
		Timestamp:    time.Now(),
		Model:        c.modelID,
	})

	if err := c.engine.tools.ValidateArgs(name, c.call.Args); err != nil {
		return c.toolFailed(ctx, name, err)
	}

	toolCtx, cancel := context.WithTimeout(ctx, c.engine.opts.ToolTimeout)
	defer cancel()

	logger.Info().Str("tool", name).Str("service", tool.Service).Msg("executing tool")
	result, err := tool.Handler.Execute(toolCtx, c.call.Args)
	if err != nil {
		return c.toolFailed(ctx, name, err)
	}

	c.toolResult = truncateToolResult(result)
	c.session.window.Add(core.Turn{
		Role:         core.RoleTool,
		ToolResponse: &core.ToolResponse{ToolName: name, Result: c.toolResult},
		Timestamp:    time.Now(),
	})

	// UI/state-mutating tools need no synthesis; the raw result is the answer.
	if c.isUITool(tool) {
		c.result = result
		return stateDone
	}

	// A cancelled caller keeps the handler's side effects but gets no
	// follow-up call.
	if ctx.Err() != nil {
		c.result = c.toolResult
		return stateDone
	}
	return stateFollowUp
}

// toolFailed records the failure as a tool turn and completes the
// command with a message that never includes the arguments.
func (c *command) toolFailed(ctx context.Context, name string, err error) state {
	execErr := &core.ToolExecutionError{Tool: name, Err: err}
	log.FromCtx(ctx).Error().Err(execErr).Str("tool", name).Msg("tool execution failed")

	c.session.window.Add(core.Turn{
		Role:         core.RoleTool,
		ToolResponse: &core.ToolResponse{ToolName: name, Result: "error: " + err.Error()},
		Timestamp:    time.Now(),
	})
	c.result = fmt.Sprintf("Tool %q failed to execute. The session is still active.", name)
	return stateDone
}

// followUp asks the model to act on the tool result. The call carries no
// tool catalog, so a command can never chain more than one follow-up.
func (c *command) followUp(ctx context.Context) state {
	prompt := fmt.Sprintf(
		"The tool %q returned:\n%s\n\nUse this result to answer the user's original request.",
		c.call.Name, c.toolResult,
	)

	history := c.session.window.History()
	resp, err := c.engine.models.CallBackend(ctx, prompt, nil, history, core.InvokeOptions{
		Timeout: c.engine.opts.ModelTimeout,
	})
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).
			Str("tool", c.call.Name).
			Str("model", c.modelID).
			Msg("follow-up inference failed, returning raw tool result")
		c.result = c.toolResult
		return stateDone
	}

	c.pendingText = resp.Text
	return stateOutputFiltering
}

// filterOutput gates generated text. Blocked output is never stored
// verbatim; a placeholder with the reason takes its place.
func (c *command) filterOutput(ctx context.Context) state {
	res := c.engine.guard.FilterOutput(ctx, c.pendingText)
	if res.Blocked {
		placeholder := "[response withheld: " + res.Reason + "]"
		c.session.window.Add(core.Turn{
			Role:      core.RoleAssistant,
			Content:   placeholder,
			Timestamp: time.Now(),
			Model:     c.modelID,
		})
		c.result = placeholder
		return stateDone
	}

	c.session.window.Add(core.Turn{
		Role:      core.RoleAssistant,
		Content:   res.Text,
		Timestamp: time.Now(),
		Model:     c.modelID,
	})
	c.result = res.Text
	return stateDone
}

func (c *command) isUITool(tool core.Tool) bool {
	for _, tag := range c.engine.opts.UITags {
		if tool.HasTag(tag) {
			return true
		}
	}
	return false
}

func backendFailureMessage(kind core.BackendErrorKind) string {
	switch kind {
	case core.BackendTimeout:
		return "The model took too long to respond. Please try again."
	case core.BackendMalformed:
		return "The model returned an unusable response. Please try again."
	default:
		return "The model backend is unavailable right now. Please try again."
	}
}

func truncateToolResult(input string) string {
	const maxLen = 2000
	if len(input) <= maxLen {
		return input
	}

	head := input[:500]
	tail := input[len(input)-(maxLen-500):]
	return fmt.Sprintf("%s\n\n... [TRUNCATED %d bytes] ...\n\n%s", head, len(input)-maxLen, tail)
}
