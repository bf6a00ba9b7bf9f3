package core

import "context"

// ToolChoiceAuto lets the model decide whether to call a tool
const ToolChoiceAuto = "auto"

// CompletionRequest is a single call to the hosted completion service.
type CompletionRequest struct {
	Turns      []Turn
	Tools      []ToolDefinition
	ToolChoice string

	// Stream selects incremental delivery; OnDelta receives content as it
	// arrives. The returned Completion is the same in both modes.
	Stream  bool
	OnDelta func(string)
}

// Completion is the assembled response of a completion call
type Completion struct {
	Content      string
	ToolCalls    []ToolCallRequest
	FinishReason string
}

// Completer is the hosted chat-completion service
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}
