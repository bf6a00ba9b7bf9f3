package commands

import (
	"strings"

	"pkdindustries/codi/internal/irc"
)

// HelpCommand handles the /help command
type HelpCommand struct {
	registry *Registry
}

// NewHelpCommand creates a help command that can list registered commands
func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{registry: registry}
}

func (c *HelpCommand) Name() string  { return "/help" }
func (c *HelpCommand) Usage() string { return "list commands" }

func (c *HelpCommand) Execute(ctx irc.ChatContextInterface) {
	parts := make([]string, 0, len(c.registry.commands))
	for _, cmd := range c.registry.All() {
		parts = append(parts, cmd.Name()+" ("+cmd.Usage()+")")
	}
	ctx.Reply("Ask me about dividends, earnings and other finance topics. Commands: " + strings.Join(parts, ", "))
}
