package commands

import (
	"pkdindustries/codi/internal/irc"
)

// ResetCommand discards the conversation for this channel or sender
type ResetCommand struct{}

func (c *ResetCommand) Name() string  { return "/reset" }
func (c *ResetCommand) Usage() string { return "start a new conversation" }

func (c *ResetCommand) Execute(ctx irc.ChatContextInterface) {
	ctx.ResetSession()
	ctx.GetLogger().Info("Session reset")
	ctx.Reply("Conversation reset. How can I help you today?")
}
