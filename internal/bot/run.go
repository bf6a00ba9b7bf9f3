// Package bot runs the IRC front-end.
package bot

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/girc"
	"go.uber.org/zap"

	"pkdindustries/codi/internal/commands"
	"pkdindustries/codi/internal/config"
	"pkdindustries/codi/internal/conversation"
	"pkdindustries/codi/internal/irc"
	"pkdindustries/codi/internal/session"
)

// NewCommands builds the command set served on IRC
func NewCommands(driver *conversation.Driver) *commands.Registry {
	registry := commands.NewRegistry()
	registry.Register(commands.NewHelpCommand(registry))
	registry.Register(&commands.ResetCommand{})
	registry.Register(&commands.VersionCommand{Version: "v" + Version})
	registry.Register(&commands.CompletionCommand{Driver: driver})
	return registry
}

// Run connects to the IRC server and serves messages until ctx is done
func Run(ctx context.Context, cfg *config.Configuration, driver *conversation.Driver, store *session.Store) error {
	cmdRegistry := NewCommands(driver)

	ircClient := girc.New(girc.Config{
		Server:    cfg.IRC.Server,
		Port:      cfg.IRC.Port,
		Nick:      cfg.IRC.Nick,
		User:      "codi",
		Name:      "codi",
		SSL:       cfg.IRC.SSL,
		TLSConfig: &tls.Config{InsecureSkipVerify: cfg.IRC.TLSInsecure},
	})

	if cfg.IRC.SASLNick != "" && cfg.IRC.SASLPass != "" {
		ircClient.Config.SASL = &girc.SASLPlain{
			User: cfg.IRC.SASLNick,
			Pass: cfg.IRC.SASLPass,
		}
	}

	go func() {
		<-ctx.Done()
		ircClient.Quit("Shutting down...")
		zap.S().Info("IRC client closed")
	}()

	ircClient.Handlers.AddBg(girc.CONNECTED, func(client *girc.Client, e girc.Event) {
		zap.S().Infof("Joining channel: %s", cfg.IRC.Channel)
		client.Cmd.Join(cfg.IRC.Channel)
	})

	ircClient.Handlers.AddBg(girc.PRIVMSG, func(client *girc.Client, e girc.Event) {
		chatCtx, cancel := irc.NewChatContext(ctx, cfg, store, client, &e)
		defer cancel()

		if !chatCtx.Valid() {
			return
		}

		sess := chatCtx.GetSession()
		log := chatCtx.GetLogger()
		log.Debug("Acquiring session lock")
		if !sess.Acquire(chatCtx) {
			log.Warn("Timed out waiting for session lock")
			chatCtx.Reply("Request timed out waiting for previous operation to complete")
			return
		}
		defer sess.Release()

		log.Infof(">> %s", strings.Join(chatCtx.GetArgs(), " "))
		cmdRegistry.Dispatch(chatCtx)
	})

	const maxRetries = 5
	for i := range maxRetries {
		if ctx.Err() != nil {
			return nil
		}

		zap.S().Infow("Connecting to server",
			"server", ircClient.Config.Server,
			"port", ircClient.Config.Port,
			"tls", ircClient.Config.SSL,
			"sasl", ircClient.Config.SASL != nil,
		)

		if err := ircClient.Connect(); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			zap.S().Errorw("Connection failed", "error", err)
			zap.S().Infof("Reconnecting in 5 seconds (attempt %d/%d)", i+1, maxRetries)

			select {
			case <-time.After(5 * time.Second):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	}

	return fmt.Errorf("failed to connect after %d attempts", maxRetries)
}
