package irc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/lrstanley/girc"
	"go.uber.org/zap"

	"pkdindustries/codi/internal/config"
	"pkdindustries/codi/internal/core"
	"pkdindustries/codi/internal/session"
)

// ChatContextInterface provides all context needed for handling IRC messages
type ChatContextInterface interface {
	context.Context

	// Event methods
	IsAddressed() bool
	IsPrivate() bool
	Valid() bool
	GetCommand() string
	GetSource() string
	GetArgs() []string

	// Responder methods
	Reply(string)
	Action(string)

	// Runtime methods
	GetSession() *session.Session
	ResetSession()
	GetConfig() *config.Configuration
	GetLogger() *zap.SugaredLogger
}

type ChatContext struct {
	context.Context
	Config    *config.Configuration
	store     *session.Store
	key       string
	client    *girc.Client
	event     *girc.Event
	addressed bool
	args      []string
	logger    *zap.SugaredLogger
}

var _ ChatContextInterface = (*ChatContext)(nil)

func NewChatContext(parentctx context.Context, cfg *config.Configuration, store *session.Store, client *girc.Client, e *girc.Event) (*ChatContext, context.CancelFunc) {
	timedctx, cancel := context.WithTimeout(parentctx, cfg.API.Timeout)

	if e.Source == nil {
		e.Source = &girc.Source{Name: cfg.IRC.Channel}
	}

	target := e.Params[0]
	key := SessionKey(target, e.Source.Name)
	addressed := CheckAddressed(e.Last(), client.GetNick())

	ctx := &ChatContext{
		Context:   timedctx,
		Config:    cfg,
		store:     store,
		key:       key,
		client:    client,
		event:     e,
		addressed: addressed,
		args:      ParseArgs(e.Last(), client.GetNick(), addressed),
		logger: core.WithRequest(zap.S(), generateRequestID(), key).With(
			"channel", target,
			"source", e.Source.Name,
		),
	}
	return ctx, cancel
}

func (c *ChatContext) GetConfig() *config.Configuration {
	return c.Config
}

func (c *ChatContext) GetLogger() *zap.SugaredLogger {
	return c.logger
}

func (c *ChatContext) IsAddressed() bool {
	return c.addressed
}

func (c *ChatContext) GetArgs() []string {
	return c.args
}

// GetSession returns the conversation for this channel or private sender.
func (c *ChatContext) GetSession() *session.Session {
	return c.store.GetOrCreate(c.key)
}

func (c *ChatContext) ResetSession() {
	c.store.Delete(c.key)
}

func (c *ChatContext) GetSource() string {
	return c.event.Source.Name
}

func (c *ChatContext) Reply(message string) {
	c.client.Cmd.Reply(*c.event, message)
}

func (c *ChatContext) Action(message string) {
	target := c.event.Params[0]
	if !girc.IsValidChannel(target) {
		// private messages get a plain notice line
		c.client.Cmd.Message(c.event.Source.Name, message)
		return
	}
	c.client.Cmd.Action(target, message)
}

// Valid reports whether the message is for the bot.
func (c *ChatContext) Valid() bool {
	return CheckValid(c.addressed, c.Config.IRC.Addressed, c.IsPrivate(), len(c.args))
}

func (c *ChatContext) IsPrivate() bool {
	return CheckPrivate(c.event.Params[0])
}

func (c *ChatContext) GetCommand() string {
	if len(c.args) == 0 {
		return ""
	}
	return strings.ToLower(c.args[0])
}

// generateRequestID creates a unique 8-character request ID for correlation
func generateRequestID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}
