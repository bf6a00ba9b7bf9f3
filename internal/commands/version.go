package commands

import (
	"pkdindustries/codi/internal/irc"
)

// VersionCommand handles the /version command
type VersionCommand struct {
	Version string
}

func (c *VersionCommand) Name() string  { return "/version" }
func (c *VersionCommand) Usage() string { return "show version" }

func (c *VersionCommand) Execute(ctx irc.ChatContextInterface) {
	cfg := ctx.GetConfig()
	ctx.Reply(cfg.IRC.Nick + " " + c.Version + " (" + cfg.Model.Model + ")")
}
