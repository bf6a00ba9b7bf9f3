package llm

import (
	ai "github.com/sashabaranov/go-openai"

	"pkdindustries/codi/internal/core"
)

func toMessages(turns []core.Turn) []ai.ChatCompletionMessage {
	msgs := make([]ai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		msg := ai.ChatCompletionMessage{
			Role:       string(t.Role),
			Content:    t.Content,
			Name:       t.Name,
			ToolCallID: t.ToolCallID,
		}
		for _, call := range t.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ai.ToolCall{
				ID:   call.ID,
				Type: ai.ToolTypeFunction,
				Function: ai.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func toTools(defs []core.ToolDefinition) []ai.Tool {
	out := make([]ai.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, ai.Tool{
			Type: ai.ToolTypeFunction,
			Function: &ai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}

func fromToolCalls(calls []ai.ToolCall) []core.ToolCallRequest {
	if len(calls) == 0 {
		return nil
	}
	out := make([]core.ToolCallRequest, 0, len(calls))
	for _, c := range calls {
		out = append(out, core.ToolCallRequest{
			ID:        c.ID,
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		})
	}
	return out
}
