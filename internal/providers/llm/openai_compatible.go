package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/conductor/internal/core"
)

// OpenAICompatible speaks the /v1/chat/completions dialect shared by
// OpenAI, OpenRouter, Ollama and most self-hosted gateways.
type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	Provider     string
	BaseURL      string
	APIKey       string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.Provider, cfg.BaseURL, cfg.APIKey),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

func (o *OpenAICompatible) Invoke(ctx context.Context, prompt string, tools []core.ToolDeclaration, history []core.Turn, opts core.InvokeOptions) (*core.BackendResponse, error) {
	payload := map[string]any{
		"model":    opts.Model,
		"messages": buildMessages(history, prompt),
	}
	if len(tools) > 0 {
		wired := make([]map[string]any, 0, len(tools))
		for _, t := range tools {
			wired = append(wired, map[string]any{
				"type": "function",
				"function": map[string]any{
					"name":        t.Name,
					"description": t.Description,
					"parameters":  t.Parameters,
				},
			})
		}
		payload["tools"] = wired
	}
	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		payload["temperature"] = opts.Temperature
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	headers["User-Agent"] = core.AppUserAgent
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	var data []byte
	err := o.retrier.Do(ctx, func() error {
		resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("http %d: %s", resp.StatusCode, truncateBody(data))
		}
		return nil
	})
	if err != nil {
		return nil, o.wrapErr(ctx, opts.Model, core.BackendUnavailable, err)
	}

	return o.decode(data, opts.Model)
}

func (o *OpenAICompatible) decode(data []byte, model string) (*core.BackendResponse, error) {
	var apiResp struct {
		Choices []struct {
			Message wireMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, o.malformed(model, fmt.Errorf("decode response: %w", err))
	}
	if len(apiResp.Choices) == 0 {
		return nil, o.malformed(model, fmt.Errorf("no choices in response"))
	}

	msg := apiResp.Choices[0].Message
	out := &core.BackendResponse{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		args := make(map[string]any)
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, o.malformed(model, fmt.Errorf("tool call %q has invalid arguments: %w", tc.Function.Name, err))
			}
		}
		out.FunctionCalls = append(out.FunctionCalls, core.FunctionCall{
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return out, nil
}

func (o *OpenAICompatible) wrapErr(ctx context.Context, model string, kind core.BackendErrorKind, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		kind = core.BackendTimeout
	}
	return &core.BackendError{
		Kind:     kind,
		Provider: o.provider,
		Model:    model,
		Err:      err,
	}
}

func (o *OpenAICompatible) malformed(model string, err error) error {
	return &core.BackendError{
		Kind:     core.BackendMalformed,
		Provider: o.provider,
		Model:    model,
		Err:      err,
	}
}

// buildMessages flattens turn history plus the current prompt into the
// wire format. Tool-call ids are not tracked in turns, so deterministic
// ids are synthesized to pair each tool turn with its assistant turn.
func buildMessages(history []core.Turn, prompt string) []wireMessage {
	messages := make([]wireMessage, 0, len(history)+1)
	lastCallID := ""

	for i, turn := range history {
		msg := wireMessage{Role: turn.Role, Content: turn.Content}

		switch {
		case turn.Role == core.RoleAssistant && turn.FunctionCall != nil:
			argsJSON, _ := json.Marshal(turn.FunctionCall.Args)
			call := wireToolCall{ID: fmt.Sprintf("call_%d", i), Type: "function"}
			call.Function.Name = turn.FunctionCall.Name
			call.Function.Arguments = string(argsJSON)
			msg.ToolCalls = []wireToolCall{call}
			lastCallID = call.ID
		case turn.Role == core.RoleTool && turn.ToolResponse != nil:
			msg.Content = turn.ToolResponse.Result
			msg.ToolCallID = lastCallID
		}

		messages = append(messages, msg)
	}

	return append(messages, wireMessage{Role: core.RoleUser, Content: prompt})
}

func truncateBody(data []byte) string {
	const maxLen = 512
	if len(data) <= maxLen {
		return string(data)
	}
	return string(data[:maxLen]) + "..."
}
