package chat

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage is returned for empty or whitespace-only input. Nothing is
// persisted and the agent is never invoked.
var ErrEmptyMessage = errors.New("message cannot be empty")

// PersistenceError wraps a store failure that happened before the agent was
// invoked. Nothing from the failed operation is persisted; the turn is safe
// to resubmit.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AgentError wraps a gateway failure (timeout, upstream error, malformed
// reply). The user's message remains stored; no assistant message exists for
// the turn.
type AgentError struct {
	Err error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent failure: %v", e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

// PostAgentPersistenceError means the agent produced a reply but storing it
// failed. Distinct from AgentError so operators can tell "nothing happened"
// apart from "a model call was spent with no visible result".
type PostAgentPersistenceError struct {
	Err error
}

func (e *PostAgentPersistenceError) Error() string {
	return fmt.Sprintf("failed to store assistant reply: %v", e.Err)
}

func (e *PostAgentPersistenceError) Unwrap() error { return e.Err }
