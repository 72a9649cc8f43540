package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Hooks receives turn lifecycle events. Implementations must not block; the
// core calls them fire-and-forget and never depends on their outcome.
type Hooks interface {
	TurnStarted(userID uuid.UUID)
	TurnSucceeded(userID uuid.UUID)
	TurnFailed(userID uuid.UUID, err error)
	AgentLatency(d time.Duration)
}

// NopHooks discards all events.
type NopHooks struct{}

func (NopHooks) TurnStarted(uuid.UUID)       {}
func (NopHooks) TurnSucceeded(uuid.UUID)     {}
func (NopHooks) TurnFailed(uuid.UUID, error) {}
func (NopHooks) AgentLatency(time.Duration)  {}

// LogHooks emits turn events to the global logger.
type LogHooks struct{}

func (LogHooks) TurnStarted(userID uuid.UUID) {
	log.Info().Str("user_id", userID.String()).Msg("Chat turn started")
}

func (LogHooks) TurnSucceeded(userID uuid.UUID) {
	log.Info().Str("user_id", userID.String()).Msg("Chat turn completed")
}

func (LogHooks) TurnFailed(userID uuid.UUID, err error) {
	log.Error().Err(err).Str("user_id", userID.String()).Msg("Chat turn failed")
}

func (LogHooks) AgentLatency(d time.Duration) {
	log.Debug().Dur("latency", d).Msg("Agent call finished")
}
