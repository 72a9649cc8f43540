// Package chat implements the conversation core: one canonical conversation
// per user, an append-only message log, and the turn orchestration that feeds
// bounded history to the reasoning agent and persists its reply.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Conversation is a user's single canonical chat thread. At most one exists
// per user; a unique index on user_id enforces this in the store.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one turn half in a conversation. Messages are immutable once
// written; Seq is the per-conversation order of record and CreatedAt is kept
// strictly increasing alongside it.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Seq            int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// View is the read model exposed to callers: the conversation identity plus
// the same bounded, chronological message window the agent sees.
type View struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Messages       []Message `json:"messages"`
	UpdatedAt      time.Time `json:"updated_at"`
}
