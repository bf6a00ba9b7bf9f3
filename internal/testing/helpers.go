package testing

import (
	"time"

	"pkdindustries/codi/internal/config"
	"pkdindustries/codi/internal/core"
)

// DefaultTestConfig returns a minimal configuration for testing
func DefaultTestConfig() *config.Configuration {
	return &config.Configuration{
		Web: &config.WebConfig{
			Listen: "127.0.0.1:0",
		},
		IRC: &config.IRCConfig{
			Nick:      "testbot",
			Server:    "irc.test.local",
			Port:      6667,
			Channel:   "#test",
			Addressed: true,
			ChunkMax:  350,
		},
		Bot: &config.BotConfig{
			Prompt:          "You are a test bot.",
			Stream:          false,
			ShowToolActions: true,
		},
		Model: &config.ModelConfig{
			Model:       "test/model",
			MaxTokens:   100,
			Temperature: 0.7,
			TopP:        1.0,
		},
		Session: &config.SessionConfig{
			TTL: time.Minute * 10,
		},
		API: &config.APIConfig{
			Timeout:   time.Second * 30,
			OpenAIKey: "test-key",
		},
		Search: &config.SearchConfig{
			APIKey:  "test-serp",
			Engine:  "google",
			Results: 3,
			Timeout: time.Second * 5,
		},
	}
}

// UserTurn builds a user turn
func UserTurn(text string) core.Turn {
	return core.Turn{Role: core.RoleUser, Content: text}
}
