// Package commands dispatches IRC messages to slash commands or the assistant.
package commands

import (
	"sort"
	"strings"

	"pkdindustries/codi/internal/irc"
)

// Command defines the interface for bot commands
type Command interface {
	Name() string
	Usage() string
	Execute(ctx irc.ChatContextInterface)
}

// Registry manages command registration and dispatch
type Registry struct {
	commands       map[string]Command
	defaultCommand Command
}

// NewRegistry creates a new command registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds a command to the registry.
// Commands with empty name are registered as the default fallback.
func (r *Registry) Register(cmd Command) {
	name := cmd.Name()
	if name == "" {
		r.defaultCommand = cmd
		return
	}
	r.commands[name] = cmd
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Dispatch executes the command named by the first word, or the default
// command for anything that is not a slash command.
// Returns true if a command was executed.
func (r *Registry) Dispatch(ctx irc.ChatContextInterface) bool {
	name := ctx.GetCommand()

	if cmd, ok := r.commands[name]; ok {
		cmd.Execute(ctx)
		return true
	}

	if strings.HasPrefix(name, "/") {
		ctx.Reply("Unknown command " + name + ", try /help")
		return true
	}

	if r.defaultCommand != nil {
		r.defaultCommand.Execute(ctx)
		return true
	}
	return false
}

// All returns all named commands sorted by name
func (r *Registry) All() []Command {
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}
