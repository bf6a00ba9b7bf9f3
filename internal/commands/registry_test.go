package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pkdindustries/codi/internal/irc"
	mocktest "pkdindustries/codi/internal/testing"
)

// mockCommand is a simple test command
type mockCommand struct {
	name     string
	executed bool
}

func (c *mockCommand) Name() string  { return c.name }
func (c *mockCommand) Usage() string { return "test " + c.name }
func (c *mockCommand) Execute(ctx irc.ChatContextInterface) {
	c.executed = true
}

func TestRegistryRouting(t *testing.T) {
	registry := NewRegistry()
	reset := &mockCommand{name: "/reset"}
	version := &mockCommand{name: "/version"}
	fallback := &mockCommand{}
	registry.Register(reset)
	registry.Register(version)
	registry.Register(fallback)

	assert.True(t, registry.Dispatch(mocktest.NewMockContext().WithArgs("/RESET")))
	assert.True(t, reset.executed)
	assert.False(t, version.executed)
	assert.False(t, fallback.executed)

	assert.True(t, registry.Dispatch(mocktest.NewMockContext().WithArgs("what", "is", "EPS?")))
	assert.True(t, fallback.executed)
}

func TestRegistryUnknownSlashCommand(t *testing.T) {
	registry := NewRegistry()
	fallback := &mockCommand{}
	registry.Register(fallback)

	ctx := mocktest.NewMockContext().WithArgs("/frobnicate")
	assert.True(t, registry.Dispatch(ctx))
	assert.False(t, fallback.executed)
	assert.Equal(t, 1, ctx.ReplyCount())
	assert.Contains(t, ctx.LastReply(), "/help")
}

func TestRegistryWithoutDefault(t *testing.T) {
	registry := NewRegistry()
	assert.False(t, registry.Dispatch(mocktest.NewMockContext().WithArgs("hello")))
}

func TestRegistryAllSorted(t *testing.T) {
	registry := NewRegistry()
	for _, n := range []string{"/version", "/help", "/reset", ""} {
		registry.Register(&mockCommand{name: n})
	}

	var names []string
	for _, cmd := range registry.All() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"/help", "/reset", "/version"}, names)

	_, ok := registry.Get("/reset")
	assert.True(t, ok)
	_, ok = registry.Get("/nonexistent")
	assert.False(t, ok)
}

func TestHelpCommand(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewHelpCommand(registry))
	registry.Register(&ResetCommand{})
	registry.Register(&VersionCommand{Version: "v1.2.3"})

	ctx := mocktest.NewMockContext().WithArgs("/help")
	registry.Dispatch(ctx)

	assert.Equal(t, 1, ctx.ReplyCount())
	assert.Contains(t, ctx.LastReply(), "/help (list commands), /reset (start a new conversation), /version (show version)")
}

func TestVersionCommand(t *testing.T) {
	ctx := mocktest.NewMockContext().WithArgs("/version")
	(&VersionCommand{Version: "v1.2.3"}).Execute(ctx)
	assert.Equal(t, "testbot v1.2.3 (test/model)", ctx.LastReply())
}

func TestResetCommand(t *testing.T) {
	ctx := mocktest.NewMockContext().WithArgs("/reset")
	ctx.GetSession().Append(mocktest.UserTurn("hello"))
	assert.Equal(t, 1, ctx.Store().Len())

	(&ResetCommand{}).Execute(ctx)

	assert.Equal(t, 1, ctx.Resets)
	assert.Equal(t, 0, ctx.Store().Len())
	assert.Contains(t, ctx.LastReply(), "Conversation reset")
}
