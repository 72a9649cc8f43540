package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskai/internal/agent"
)

// buildContext projects the conversation's recent window into the
// role/content pairs the agent consumes. Always re-read from the store so
// the window includes the just-stored user turn; nothing is cached between
// turns.
func (s *Service) buildContext(ctx context.Context, conversationID uuid.UUID) ([]agent.Exchange, error) {
	messages, err := s.store.Recent(ctx, conversationID, s.historyLimit)
	if err != nil {
		return nil, err
	}

	history := make([]agent.Exchange, len(messages))
	for i, msg := range messages {
		history[i] = agent.Exchange{Role: string(msg.Role), Content: msg.Content}
	}
	return history, nil
}
