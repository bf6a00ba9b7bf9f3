package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTurnIsReply(t *testing.T) {
	assert.True(t, Turn{Role: RoleAssistant, Content: "hi"}.IsReply())
	assert.True(t, Turn{Role: RoleAssistant}.IsReply())
	assert.False(t, Turn{Role: RoleAssistant, ToolCalls: []ToolCallRequest{{ID: "call_1"}}}.IsReply())
	assert.False(t, Turn{Role: RoleUser, Content: "hi"}.IsReply())
	assert.False(t, Turn{Role: RoleTool, Content: "[]"}.IsReply())
}

func TestToolResultTurn(t *testing.T) {
	got := ToolResult{ToolCallID: "call_1", Name: "search_internet", Content: "[]"}.Turn()
	assert.Equal(t, Turn{Role: RoleTool, ToolCallID: "call_1", Name: "search_internet", Content: "[]"}, got)
}
