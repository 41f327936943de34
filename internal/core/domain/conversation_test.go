package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationState(t *testing.T) {
	c := NewConversationState("session-1")
	assert.Equal(t, "session-1", c.ID())
	assert.Equal(t, 0, c.Len())

	c.Append(RoleUser, "question")
	c.Append(RoleAssistant, "answer")

	turns := c.Turns()
	assert.Equal(t, []ConversationTurn{
		{Role: RoleUser, Text: "question"},
		{Role: RoleAssistant, Text: "answer"},
	}, turns)

	// Turns returns a copy.
	turns[0].Text = "mutated"
	assert.Equal(t, "question", c.Turns()[0].Text)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "session-1", c.ID())
}
