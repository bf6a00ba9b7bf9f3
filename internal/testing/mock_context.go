package testing

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"pkdindustries/codi/internal/config"
	"pkdindustries/codi/internal/irc"
	"pkdindustries/codi/internal/session"
)

// MockChatContext implements irc.ChatContextInterface for testing
type MockChatContext struct {
	context.Context

	// Configurable return values
	Addressed bool
	Private   bool
	ValidFlag bool
	Command   string
	Source    string
	Args      []string

	// Recorded calls (for assertions)
	mu      sync.Mutex
	Replies []string
	Actions []string
	Resets  int

	// Injected dependencies
	store  *session.Store
	key    string
	cfg    *config.Configuration
	logger *zap.SugaredLogger
}

var _ irc.ChatContextInterface = (*MockChatContext)(nil)

// NewMockContext creates a new MockChatContext with sensible defaults
func NewMockContext() *MockChatContext {
	cfg := DefaultTestConfig()
	return &MockChatContext{
		Context:   context.Background(),
		ValidFlag: true,
		Addressed: true,
		Source:    "testuser",
		Args:      []string{},
		store:     session.NewStore(cfg.Bot.Prompt, cfg.Session.TTL),
		key:       "#test",
		cfg:       cfg,
		logger:    zap.NewNop().Sugar(),
	}
}

// WithContext sets a custom context (for timeout/cancellation testing)
func (m *MockChatContext) WithContext(ctx context.Context) *MockChatContext {
	m.Context = ctx
	return m
}

// WithPrivate sets whether this is a private message
func (m *MockChatContext) WithPrivate(private bool) *MockChatContext {
	m.Private = private
	return m
}

// WithArgs sets the parsed arguments
func (m *MockChatContext) WithArgs(args ...string) *MockChatContext {
	m.Args = args
	if len(args) > 0 {
		m.Command = strings.ToLower(args[0])
	}
	return m
}

// WithSource sets the source nick
func (m *MockChatContext) WithSource(source string) *MockChatContext {
	m.Source = source
	return m
}

// WithConfig sets the configuration
func (m *MockChatContext) WithConfig(cfg *config.Configuration) *MockChatContext {
	m.cfg = cfg
	return m
}

// WithStore sets the session store and the key of this conversation
func (m *MockChatContext) WithStore(store *session.Store, key string) *MockChatContext {
	m.store = store
	m.key = key
	return m
}

func (m *MockChatContext) IsAddressed() bool  { return m.Addressed }
func (m *MockChatContext) Valid() bool        { return m.ValidFlag }
func (m *MockChatContext) IsPrivate() bool    { return m.Private }
func (m *MockChatContext) GetCommand() string { return m.Command }
func (m *MockChatContext) GetSource() string  { return m.Source }
func (m *MockChatContext) GetArgs() []string  { return m.Args }

func (m *MockChatContext) Reply(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Replies = append(m.Replies, msg)
}

func (m *MockChatContext) Action(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Actions = append(m.Actions, msg)
}

func (m *MockChatContext) GetSession() *session.Session {
	return m.store.GetOrCreate(m.key)
}

func (m *MockChatContext) ResetSession() {
	m.mu.Lock()
	m.Resets++
	m.mu.Unlock()
	m.store.Delete(m.key)
}

func (m *MockChatContext) GetConfig() *config.Configuration { return m.cfg }
func (m *MockChatContext) GetLogger() *zap.SugaredLogger    { return m.logger }

// Store returns the session store behind GetSession
func (m *MockChatContext) Store() *session.Store {
	return m.store
}

// ReplyCount returns the number of replies sent
func (m *MockChatContext) ReplyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Replies)
}

// LastReply returns the most recent reply, or "" if none
func (m *MockChatContext) LastReply() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Replies) == 0 {
		return ""
	}
	return m.Replies[len(m.Replies)-1]
}

// HasReply reports whether any reply contains substr
func (m *MockChatContext) HasReply(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Replies {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}
