package core

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// Role identifies the author of a turn in the context window
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one message unit of the conversation as sent to the hosted model.
// ToolCalls is only set on the assistant turn that carries the model's tool
// requests; ToolCallID and Name are only set on tool turns.
type Turn struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	Name       string            `json:"name,omitempty"`
	ToolCalls  []ToolCallRequest `json:"tool_calls,omitempty"`
}

// IsReply reports whether the turn is assistant text shown to the user.
func (t Turn) IsReply() bool {
	return t.Role == RoleAssistant && len(t.ToolCalls) == 0
}

// ToolCallRequest is a function call the model asked us to perform
type ToolCallRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult answers exactly one ToolCallRequest
type ToolResult struct {
	ToolCallID string
	Name       string
	Content    string
}

// Turn converts the result into the tool-role turn appended to a session.
func (r ToolResult) Turn() Turn {
	return Turn{
		Role:       RoleTool,
		Content:    r.Content,
		ToolCallID: r.ToolCallID,
		Name:       r.Name,
	}
}

// ToolDefinition is a manifest entry offered to the model
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}
