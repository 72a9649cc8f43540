package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConversationNotFound is returned by Append when the conversation id does
// not exist.
var ErrConversationNotFound = errors.New("conversation not found")

// Store is the persistence boundary of the conversation core.
type Store interface {
	// ResolveOrCreate returns the user's conversation, creating it if this is
	// the user's first message. Creation is durable before return.
	ResolveOrCreate(ctx context.Context, userID uuid.UUID) (Conversation, error)

	// Append stores a new message and bumps the conversation's updated_at in
	// the same transaction. The assigned creation time is strictly greater
	// than that of every previously stored message in the conversation.
	Append(ctx context.Context, conversationID uuid.UUID, role Role, content string) (Message, error)

	// Recent returns up to limit of the newest messages, oldest first. With
	// more than limit messages stored, the window slides: the oldest overall
	// are not returned.
	Recent(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
}

// PGStore implements Store on postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a new postgres-backed conversation store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// ResolveOrCreate inserts with ON CONFLICT DO NOTHING so that two concurrent
// first messages from the same user cannot create duplicate conversations:
// the loser of the race treats the conflict as a lookup.
func (s *PGStore) ResolveOrCreate(ctx context.Context, userID uuid.UUID) (Conversation, error) {
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversations (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID, now)
	if err != nil {
		return Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}

	// updated_at ordering keeps the read deterministic even if duplicates
	// ever appear through operator error.
	var conv Conversation
	err = s.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, userID).Scan(&conv.ID, &conv.UserID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return Conversation{}, fmt.Errorf("failed to load conversation: %w", err)
	}

	return conv, nil
}

// Append locks the conversation row for the duration of the transaction,
// which serializes appends per conversation without any in-process lock.
func (s *PGStore) Append(ctx context.Context, conversationID uuid.UUID, role Role, content string) (Message, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var convID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id FROM conversations WHERE id = $1 FOR UPDATE
	`, conversationID).Scan(&convID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrConversationNotFound
	}
	if err != nil {
		return Message{}, fmt.Errorf("failed to lock conversation: %w", err)
	}

	var lastSeq int64
	var lastAt time.Time
	err = tx.QueryRow(ctx, `
		SELECT seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`, conversationID).Scan(&lastSeq, &lastAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Message{}, fmt.Errorf("failed to read last message: %w", err)
	}

	// Wall-clock collisions must not reorder messages: nudge past the
	// previous message when the clock has not advanced.
	// Truncate to postgres timestamp precision so the value round-trips.
	createdAt := time.Now().UTC().Truncate(time.Microsecond)
	if !createdAt.After(lastAt) {
		createdAt = lastAt.Add(time.Microsecond)
	}

	msg := Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Seq:            lastSeq + 1,
		CreatedAt:      createdAt,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, seq, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, msg.ConversationID, string(msg.Role), msg.Content, msg.Seq, msg.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET updated_at = $2 WHERE id = $1
	`, conversationID, msg.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("failed to update conversation timestamp: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Message{}, fmt.Errorf("failed to commit message append: %w", err)
	}

	return msg, nil
}

// Recent fetches newest-first bounded by limit, then reverses to
// chronological order.
func (s *PGStore) Recent(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, conversation_id, role, content, seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq DESC
		LIMIT $2
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var msg Message
		var role string
		err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &msg.Seq, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = Role(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	// Reverse into chronological order (oldest of the window first).
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
