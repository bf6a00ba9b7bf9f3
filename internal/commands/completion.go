package commands

import (
	"fmt"
	"strings"

	"pkdindustries/codi/internal/conversation"
	"pkdindustries/codi/internal/core"
	"pkdindustries/codi/internal/irc"
	"pkdindustries/codi/internal/tools"
)

// CompletionCommand sends the message to the assistant. It is registered as
// the default command.
type CompletionCommand struct {
	Driver *conversation.Driver
}

func (c *CompletionCommand) Name() string  { return "" }
func (c *CompletionCommand) Usage() string { return "ask the assistant" }

func (c *CompletionCommand) Execute(ctx irc.ChatContextInterface) {
	cfg := ctx.GetConfig()
	msg := strings.Join(ctx.GetArgs(), " ")

	out := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for line := range out {
			ctx.Reply(line)
		}
	}()
	chunker := irc.NewChunker(out, cfg.IRC.ChunkMax)

	streamed := false
	hooks := conversation.Hooks{
		Delta: func(s string) {
			streamed = true
			chunker.Write(s)
		},
		ToolStart: func(call core.ToolCallRequest) {
			if cfg.Bot.ShowToolActions {
				ctx.Action(toolAction(call))
			}
		},
	}

	reply, err := c.Driver.HandleUserMessage(ctx, ctx.GetSession(), msg, hooks)
	if err == nil && !streamed {
		chunker.Write(reply)
	}
	chunker.Flush()
	close(out)
	<-done

	if err != nil {
		ctx.GetLogger().Errorw("Completion failed", "error", err)
		ctx.Reply(core.UserMessage(err))
	}
}

// toolAction describes a tool call for the channel
func toolAction(call core.ToolCallRequest) string {
	if kind, ok := tools.ParseKind(call.Name); ok && kind == tools.KindSearchInternet {
		if q, err := tools.ParseArguments(call.Arguments); err == nil && q != "" {
			return fmt.Sprintf("[searching: %s]", q)
		}
		return "[searching ...]"
	}
	return fmt.Sprintf("[calling %s]", call.Name)
}
