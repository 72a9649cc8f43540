package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskai/internal/agent"
)

// DefaultHistoryLimit bounds the context window fed to the agent. The window
// slides: with more messages stored, only the most recent limit are used.
const DefaultHistoryLimit = 50

// DefaultAgentTimeout bounds the only externally-latent step of a turn.
const DefaultAgentTimeout = 60 * time.Second

// Options tunes a Service. Zero values fall back to the defaults above.
type Options struct {
	HistoryLimit int
	AgentTimeout time.Duration
	Hooks        Hooks
}

// Service orchestrates chat turns: persist the user message, feed bounded
// history to the agent, persist the reply. It holds no mutable state across
// requests; the store is the single source of truth.
type Service struct {
	store        Store
	agents       agent.Factory
	hooks        Hooks
	historyLimit int
	agentTimeout time.Duration
}

// NewService creates a chat service.
func NewService(store Store, agents agent.Factory, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.AgentTimeout <= 0 {
		opts.AgentTimeout = DefaultAgentTimeout
	}
	if opts.Hooks == nil {
		opts.Hooks = NopHooks{}
	}
	return &Service{
		store:        store,
		agents:       agents,
		hooks:        opts.Hooks,
		historyLimit: opts.HistoryLimit,
		agentTimeout: opts.AgentTimeout,
	}
}

// SubmitTurn executes one user-message-in, assistant-message-out cycle and
// returns the stored assistant message.
//
// The agent is invoked at most once per stored user message; no retry
// happens here. A gateway failure deliberately leaves the user message in
// place — a failed reply does not retract what the user said.
func (s *Service) SubmitTurn(ctx context.Context, userID uuid.UUID, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.hooks.TurnStarted(userID)

	conv, err := s.store.ResolveOrCreate(ctx, userID)
	if err != nil {
		perr := &PersistenceError{Op: "resolve conversation", Err: err}
		s.hooks.TurnFailed(userID, perr)
		return Message{}, perr
	}

	if _, err := s.store.Append(ctx, conv.ID, RoleUser, text); err != nil {
		perr := &PersistenceError{Op: "store user message", Err: err}
		s.hooks.TurnFailed(userID, perr)
		return Message{}, perr
	}

	// Includes the user message stored above.
	history, err := s.buildContext(ctx, conv.ID)
	if err != nil {
		perr := &PersistenceError{Op: "load history", Err: err}
		s.hooks.TurnFailed(userID, perr)
		return Message{}, perr
	}

	gateway := s.agents.ForUser(userID)
	agentCtx, cancel := context.WithTimeout(ctx, s.agentTimeout)
	defer cancel()

	started := time.Now()
	reply, err := gateway.Process(agentCtx, history)
	s.hooks.AgentLatency(time.Since(started))
	if err != nil {
		aerr := &AgentError{Err: err}
		s.hooks.TurnFailed(userID, aerr)
		return Message{}, aerr
	}

	assistant, err := s.store.Append(ctx, conv.ID, RoleAssistant, reply)
	if err != nil {
		perr := &PostAgentPersistenceError{Err: err}
		s.hooks.TurnFailed(userID, perr)
		return Message{}, perr
	}

	s.hooks.TurnSucceeded(userID)
	return assistant, nil
}

// ConversationView returns the user's conversation with the same bounded
// chronological window the agent sees. A user without a conversation gets an
// empty one created, mirroring first-message resolution.
func (s *Service) ConversationView(ctx context.Context, userID uuid.UUID) (View, error) {
	conv, err := s.store.ResolveOrCreate(ctx, userID)
	if err != nil {
		return View{}, &PersistenceError{Op: "resolve conversation", Err: err}
	}

	messages, err := s.store.Recent(ctx, conv.ID, s.historyLimit)
	if err != nil {
		return View{}, &PersistenceError{Op: "load history", Err: err}
	}

	return View{
		ConversationID: conv.ID,
		Messages:       messages,
		UpdatedAt:      conv.UpdatedAt,
	}, nil
}
