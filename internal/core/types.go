package core

import (
	"encoding/json"
	"time"
)

const (
	AppName      = "Conductor"
	AppUserAgent = "Conductor-Engine/0.1"
	AppVersion   = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// FunctionCall is a model's request to invoke a named tool.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResponse records what a tool returned for the call that preceded it.
type ToolResponse struct {
	ToolName string `json:"tool_name"`
	Result   string `json:"result"`
}

// Turn is one recorded unit of conversation. A tool turn always follows
// the assistant turn whose function call it answers.
type Turn struct {
	Role         string        `json:"role"`
	Content      string        `json:"content"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
	ToolResponse *ToolResponse `json:"tool_response,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	// Model identifies which backend config produced an assistant turn.
	Model string `json:"model,omitempty"`
}

// ToolDeclaration is the model-facing view of a tool: name, description
// and a JSON Schema describing accepted arguments.
type ToolDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Tool is a registered callable action. Names are unique per registry.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema
	Handler     ToolHandler
	Tags        []string
	Service     string
}

func (t Tool) Declaration() ToolDeclaration {
	return ToolDeclaration{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

func (t Tool) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// ModelConfig describes one backend model. Immutable once registered.
type ModelConfig struct {
	ID               string  `json:"id"`
	Provider         string  `json:"provider"`
	SupportsTools    bool    `json:"supports_tools"`
	SupportsVision   bool    `json:"supports_vision"`
	MaxContextTokens int     `json:"max_context_tokens"`
	InputCostPer1K   float64 `json:"input_cost_per_1k,omitempty"`
	OutputCostPer1K  float64 `json:"output_cost_per_1k,omitempty"`
}
