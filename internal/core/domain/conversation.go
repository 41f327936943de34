package domain

import "sync"

// Role identifies who produced a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message in the transcript.
type ConversationTurn struct {
	Role Role
	Text string
}

// ConversationState is an ordered, append-only transcript scoped to one session.
// It is owned by the presentation layer and never persisted.
type ConversationState struct {
	mu    sync.RWMutex
	id    string
	turns []ConversationTurn
}

// NewConversationState creates an empty transcript with the given session ID.
func NewConversationState(id string) *ConversationState {
	return &ConversationState{id: id}
}

// ID returns the session identifier.
func (c *ConversationState) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// Append adds a turn to the end of the transcript.
func (c *ConversationState) Append(role Role, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, ConversationTurn{Role: role, Text: text})
}

// Turns returns a copy of the transcript.
func (c *ConversationState) Turns() []ConversationTurn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ConversationTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *ConversationState) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Clear empties the transcript. Only called on explicit user action.
func (c *ConversationState) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}
